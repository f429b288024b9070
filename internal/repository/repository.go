// Package repository persists game snapshots. Every backend stores the
// encoded snapshot next to its checksum and refuses to return a snapshot whose
// content no longer matches.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/config"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot is stored under an id.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrChecksumMismatch is returned when stored data fails verification.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)

// SnapshotInfo describes one stored snapshot without decoding it.
type SnapshotInfo struct {
	GameID   string
	Checksum string
	SavedAt  time.Time
}

// SnapshotRepository stores one snapshot per game id. Saving again replaces
// the previous snapshot.
type SnapshotRepository interface {
	Save(ctx context.Context, gameID string, snap *state.Snapshot) error
	Load(ctx context.Context, gameID string) (*state.Snapshot, error)
	// Latest returns the most recently saved snapshot and its game id.
	Latest(ctx context.Context) (string, *state.Snapshot, error)
	// List returns stored snapshots, newest first.
	List(ctx context.Context) ([]SnapshotInfo, error)
	Delete(ctx context.Context, gameID string) error
	Close() error
}

// Open builds the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (SnapshotRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryRepository(), nil
	case config.DriverSQLite:
		return NewSQLiteRepository(ctx, cfg.DSN, logger)
	case config.DriverPostgres:
		return NewPostgresRepository(ctx, cfg.DSN, cfg.MaxConns, logger)
	case config.DriverRedis:
		return NewRedisRepository(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// encoded is a snapshot ready for storage.
type encoded struct {
	data     []byte
	checksum string
	savedAt  time.Time
}

func encode(gameID string, snap *state.Snapshot) (encoded, error) {
	if gameID == "" {
		return encoded{}, errors.New("game id is required")
	}
	if snap == nil {
		return encoded{}, errors.New("snapshot is required")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := snap.Encode()
	if err != nil {
		return encoded{}, err
	}
	return encoded{
		data:     data,
		checksum: snap.ComputeChecksum().Hash,
		savedAt:  snap.SavedAt.UTC(),
	}, nil
}

func decode(gameID string, data []byte, checksum string) (*state.Snapshot, error) {
	snap, err := state.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", gameID, err)
	}
	if !snap.VerifyChecksum(state.Checksum{Hash: checksum, Version: state.SnapshotVersion}) {
		return nil, fmt.Errorf("snapshot %s: %w", gameID, ErrChecksumMismatch)
	}
	return snap, nil
}
