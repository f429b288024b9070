package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	game_id  TEXT PRIMARY KEY,
	data     BLOB NOT NULL,
	checksum TEXT NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_saved_at ON snapshots(saved_at);
`

// SQLiteRepository stores snapshots in a SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens path, creating the schema if needed.
func NewSQLiteRepository(ctx context.Context, path string, logger *zap.Logger) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := path
	if !strings.Contains(path, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; SQLite serialises anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	logger.Info("sqlite snapshot store opened", zap.String("path", path))
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, gameID string, snap *state.Snapshot) error {
	enc, err := encode(gameID, snap)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (game_id, data, checksum, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
		   data = excluded.data,
		   checksum = excluded.checksum,
		   saved_at = excluded.saved_at`,
		gameID, enc.data, enc.checksum, enc.savedAt.UnixMilli(),
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

func (r *SQLiteRepository) Load(ctx context.Context, gameID string) (*state.Snapshot, error) {
	var (
		data     []byte
		checksum string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data, checksum FROM snapshots WHERE game_id = ?`, gameID,
	).Scan(&data, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return decode(gameID, data, checksum)
}

func (r *SQLiteRepository) Latest(ctx context.Context) (string, *state.Snapshot, error) {
	var (
		gameID   string
		data     []byte
		checksum string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT game_id, data, checksum FROM snapshots ORDER BY saved_at DESC, rowid DESC LIMIT 1`,
	).Scan(&gameID, &data, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
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

func (r *SQLiteRepository) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, checksum, saved_at FROM snapshots ORDER BY saved_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			savedAt int64
		)
		if err := rows.Scan(&info.GameID, &info.Checksum, &savedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.SavedAt = time.UnixMilli(savedAt).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, gameID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE game_id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
