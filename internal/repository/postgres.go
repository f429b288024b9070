package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS quiz_snapshots (
	game_id  TEXT PRIMARY KEY,
	data     JSONB NOT NULL,
	checksum TEXT NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quiz_snapshots_saved_at ON quiz_snapshots (saved_at DESC);
`

// PostgresRepository stores snapshots in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository connects to dsn and creates the schema if needed.
// maxConns <= 0 keeps the pgx default.
func NewPostgresRepository(ctx context.Context, dsn string, maxConns int32, logger *zap.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRepository{pool: pool, logger: logger}
	if err := r.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	stats := pool.Stat()
	logger.Info("postgres snapshot store opened",
		zap.Int32("max_conns", stats.MaxConns()),
		zap.Int32("total_conns", stats.TotalConns()),
	)
	return r, nil
}

// CreateSchema creates the snapshot table if it does not exist.
func (r *PostgresRepository) CreateSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, gameID string, snap *state.Snapshot) error {
	enc, err := encode(gameID, snap)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_snapshots (game_id, data, checksum, saved_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (game_id) DO UPDATE SET
		   data = EXCLUDED.data,
		   checksum = EXCLUDED.checksum,
		   saved_at = EXCLUDED.saved_at`,
		gameID, string(enc.data), enc.checksum, enc.savedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	r.logger.Debug("snapshot saved",
		zap.String("game_id", gameID),
		zap.String("checksum", enc.checksum),
	)
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, gameID string) (*state.Snapshot, error) {
	var (
		data     []byte
		checksum string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT data, checksum FROM quiz_snapshots WHERE game_id = $1`, gameID,
	).Scan(&data, &checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return decode(gameID, data, checksum)
}

func (r *PostgresRepository) Latest(ctx context.Context) (string, *state.Snapshot, error) {
	var (
		gameID   string
		data     []byte
		checksum string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT game_id, data, checksum FROM quiz_snapshots ORDER BY saved_at DESC LIMIT 1`,
	).Scan(&gameID, &data, &checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, ErrSnapshotNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	snap, err := decode(gameID, data, checksum)
	if err != nil {
		return "", nil, err
	}
	return gameID, snap, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT game_id, checksum, saved_at FROM quiz_snapshots ORDER BY saved_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			savedAt time.Time
		)
		if err := rows.Scan(&info.GameID, &info.Checksum, &savedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.SavedAt = savedAt.UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, gameID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quiz_snapshots WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
