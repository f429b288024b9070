package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

const (
	redisKeyPrefix = "quizboard:snapshot:"
	redisIndexKey  = "quizboard:snapshots"
)

// RedisOptions configures RedisRepository. A zero TTL keeps snapshots forever.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisRepository keeps live snapshots in Redis hashes, indexed by save time
// in a sorted set. Expired hashes are pruned from the index lazily.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRepository connects and pings the server.
func NewRedisRepository(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*RedisRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	logger.Info("redis snapshot store opened",
		zap.String("addr", opts.Addr),
		zap.Duration("ttl", opts.TTL),
	)
	return &RedisRepository{client: client, ttl: opts.TTL, logger: logger}, nil
}

func redisKey(gameID string) string {
	return redisKeyPrefix + gameID
}

func (r *RedisRepository) Save(ctx context.Context, gameID string, snap *state.Snapshot) error {
	enc, err := encode(gameID, snap)
	if err != nil {
		return err
	}
	key := redisKey(gameID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"data", enc.data,
			"checksum", enc.checksum,
			"saved_at", enc.savedAt.UnixMilli(),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{
			Score:  float64(enc.savedAt.UnixMilli()),
			Member: gameID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	r.logger.Debug("snapshot saved",
		zap.String("game_id", gameID),
		zap.String("checksum", enc.checksum),
	)
	return nil
}

func (r *RedisRepository) Load(ctx context.Context, gameID string) (*state.Snapshot, error) {
	fields, err := r.client.HMGet(ctx, redisKey(gameID), "data", "checksum").Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	data, ok1 := fields[0].(string)
	checksum, ok2 := fields[1].(string)
	if !ok1 || !ok2 {
		return nil, ErrSnapshotNotFound
	}
	return decode(gameID, []byte(data), checksum)
}

func (r *RedisRepository) Latest(ctx context.Context) (string, *state.Snapshot, error) {
	for {
		ids, err := r.client.ZRevRange(ctx, redisIndexKey, 0, 0).Result()
		if err != nil {
			return "", nil, fmt.Errorf("load latest snapshot: %w", err)
		}
		if len(ids) == 0 {
			return "", nil, ErrSnapshotNotFound
		}
		snap, err := r.Load(ctx, ids[0])
		if errors.Is(err, ErrSnapshotNotFound) {
			if err := r.prune(ctx, ids[0]); err != nil {
				return "", nil, err
			}
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return ids[0], snap, nil
	}
}

func (r *RedisRepository) List(ctx context.Context) ([]SnapshotInfo, error) {
	ids, err := r.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	var out []SnapshotInfo
	for _, id := range ids {
		fields, err := r.client.HMGet(ctx, redisKey(id), "checksum", "saved_at").Result()
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		checksum, ok1 := fields[0].(string)
		savedAt, ok2 := fields[1].(string)
		if !ok1 || !ok2 {
			if err := r.prune(ctx, id); err != nil {
				r.logger.Warn("failed to prune snapshot index",
					zap.String("game_id", id),
					zap.Error(err),
				)
			}
			continue
		}
		ms, err := strconv.ParseInt(savedAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad saved_at %q: %w", id, savedAt, err)
		}
		out = append(out, SnapshotInfo{
			GameID:   id,
			Checksum: checksum,
			SavedAt:  time.UnixMilli(ms).UTC(),
		})
	}
	return out, nil
}

func (r *RedisRepository) Delete(ctx context.Context, gameID string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisKey(gameID))
		pipe.ZRem(ctx, redisIndexKey, gameID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	if del.Val() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// prune drops an index entry whose hash has expired.
func (r *RedisRepository) prune(ctx context.Context, gameID string) error {
	if err := r.client.ZRem(ctx, redisIndexKey, gameID).Err(); err != nil {
		return fmt.Errorf("prune snapshot index %s: %w", gameID, err)
	}
	r.logger.Debug("pruned expired snapshot", zap.String("game_id", gameID))
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
