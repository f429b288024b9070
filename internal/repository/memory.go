package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

type memoryEntry struct {
	encoded
	seq uint64
}

// MemoryRepository keeps encoded snapshots in a map.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	seq     uint64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]memoryEntry)}
}

func (r *MemoryRepository) Save(ctx context.Context, gameID string, snap *state.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc, err := encode(gameID, snap)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.entries[gameID] = memoryEntry{encoded: enc, seq: r.seq}
	return nil
}

func (r *MemoryRepository) Load(ctx context.Context, gameID string) (*state.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entry, ok := r.entries[gameID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return decode(gameID, entry.data, entry.checksum)
}

func (r *MemoryRepository) Latest(ctx context.Context) (string, *state.Snapshot, error) {
	infos, err := r.List(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(infos) == 0 {
		return "", nil, ErrSnapshotNotFound
	}
	snap, err := r.Load(ctx, infos[0].GameID)
	if err != nil {
		return "", nil, err
	}
	return infos[0].GameID, snap, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	type row struct {
		info SnapshotInfo
		seq  uint64
	}
	rows := make([]row, 0, len(r.entries))
	for id, entry := range r.entries {
		rows = append(rows, row{
			info: SnapshotInfo{GameID: id, Checksum: entry.checksum, SavedAt: entry.savedAt},
			seq:  entry.seq,
		})
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].info.SavedAt.Equal(rows[j].info.SavedAt) {
			return rows[i].info.SavedAt.After(rows[j].info.SavedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]SnapshotInfo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.info)
	}
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[gameID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(r.entries, gameID)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
