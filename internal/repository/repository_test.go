package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quizboard/quizboard-server-go/internal/config"
	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

// contractEpoch keeps contract saves newer than anything else a shared
// database may already hold.
var contractEpoch = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleSnapshot(score int, savedAt time.Time) *state.Snapshot {
	board := domain.NewBoard(2, 3)
	g := state.New(board.Clone())
	g.Teams = []domain.Team{
		{ID: 1, Name: "Owls", Score: score},
		{ID: 2, Name: "Foxes", Score: -100},
	}
	g.ActiveTeam = 2
	g.Phase = state.Steal{
		Clue:    domain.Coord{Category: 1, Row: 2},
		Queue:   []uint32{},
		Current: 2,
		Owner:   1,
	}
	g.Events.QuestionsAnswered = 5
	g.Events.Activate(events.DoublePoints)

	snap := state.NewSnapshot(board, g)
	snap.SavedAt = savedAt
	return snap
}

func indexOf(infos []SnapshotInfo, gameID string) int {
	for i, info := range infos {
		if info.GameID == gameID {
			return i
		}
	}
	return -1
}

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, repo SnapshotRepository) {
	ctx := context.Background()
	first := "contract-" + uuid.NewString()
	second := "contract-" + uuid.NewString()
	t.Cleanup(func() {
		_ = repo.Delete(ctx, first)
		_ = repo.Delete(ctx, second)
	})

	_, err := repo.Load(ctx, first)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first), ErrSnapshotNotFound)
	assert.Error(t, repo.Save(ctx, "", sampleSnapshot(0, contractEpoch)))

	a := sampleSnapshot(300, contractEpoch)
	b := sampleSnapshot(900, contractEpoch.Add(time.Minute))
	require.NoError(t, repo.Save(ctx, first, a))
	require.NoError(t, repo.Save(ctx, second, b))

	loaded, err := repo.Load(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, a.ComputeChecksum(), loaded.ComputeChecksum())
	require.NotNil(t, loaded.Game)
	assert.Equal(t, a.Game.Teams, loaded.Game.Teams)
	assert.Equal(t, a.Game.Phase, loaded.Game.Phase)
	assert.True(t, loaded.Game.Events.IsActive(events.DoublePoints))

	id, latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, id)
	assert.Equal(t, b.ComputeChecksum(), latest.ComputeChecksum())

	infos, err := repo.List(ctx)
	require.NoError(t, err)
	iFirst, iSecond := indexOf(infos, first), indexOf(infos, second)
	require.NotEqual(t, -1, iFirst)
	require.NotEqual(t, -1, iSecond)
	assert.Less(t, iSecond, iFirst, "newest first")
	assert.Equal(t, a.ComputeChecksum().Hash, infos[iFirst].Checksum)
	assert.True(t, infos[iFirst].SavedAt.Equal(contractEpoch))

	// Saving again replaces the row and bumps its position.
	a2 := sampleSnapshot(1200, contractEpoch.Add(2*time.Minute))
	require.NoError(t, repo.Save(ctx, first, a2))
	id, latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, id)
	assert.Equal(t, 1200, latest.Game.Teams[0].Score)

	require.NoError(t, repo.Delete(ctx, second))
	_, err = repo.Load(ctx, second)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryRepository(t *testing.T) {
	runContract(t, NewMemoryRepository())
}

func TestMemoryRepositoryEmptyLatest(t *testing.T) {
	_, _, err := NewMemoryRepository().Latest(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryRepositoryDetectsTampering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Save(ctx, "g", sampleSnapshot(100, contractEpoch)))

	entry := repo.entries["g"]
	entry.checksum = "0000"
	repo.entries["g"] = entry

	_, err := repo.Load(ctx, "g")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestMemoryRepositoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMemoryRepository().Save(ctx, "g", sampleSnapshot(0, contractEpoch))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveStampsMissingTime(t *testing.T) {
	snap := sampleSnapshot(0, time.Time{})
	require.NoError(t, NewMemoryRepository().Save(context.Background(), "g", snap))
	assert.False(t, snap.SavedAt.IsZero())
}

func TestSnapshotWithInvalidUTF8Loads(t *testing.T) {
	repos := map[string]SnapshotRepository{
		"memory": NewMemoryRepository(),
		"sqlite": newSQLite(t),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			snap := sampleSnapshot(100, contractEpoch)
			snap.Game.Teams[0].Name = "caf\xe9"
			snap.Game.Teams[1].Name = "bad\xff\xfebytes"
			snap.Board.Categories[0].Name = "Mus\xefc"
			snap.Game.Board.Categories[1].Clues[0].Question = "\xc3("

			require.NoError(t, repo.Save(ctx, "g", snap))
			loaded, err := repo.Load(ctx, "g")
			require.NoError(t, err)
			assert.Equal(t, "caf\uFFFD", loaded.Game.Teams[0].Name)
			assert.Equal(t, "bad\uFFFD\uFFFDbytes", loaded.Game.Teams[1].Name)
		})
	}
}

func newSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(),
		filepath.Join(t.TempDir(), "quiz.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	runContract(t, newSQLite(t))
}

func TestSQLiteRepositoryEmpty(t *testing.T) {
	repo := newSQLite(t)
	_, _, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	infos, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestSQLiteRepositoryDetectsTampering(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)
	require.NoError(t, repo.Save(ctx, "g", sampleSnapshot(100, contractEpoch)))

	other := sampleSnapshot(999, contractEpoch)
	data, err := other.Encode()
	require.NoError(t, err)
	_, err = repo.db.ExecContext(ctx, `UPDATE snapshots SET data = ? WHERE game_id = ?`, data, "g")
	require.NoError(t, err)

	_, err = repo.Load(ctx, "g")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quiz.db")

	repo, err := NewSQLiteRepository(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "persisted", sampleSnapshot(450, contractEpoch)))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer repo.Close()

	snap, err := repo.Load(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, 450, snap.Game.Teams[0].Score)
}

func TestNewSQLiteRepositoryRequiresPath(t *testing.T) {
	_, err := NewSQLiteRepository(context.Background(), "  ", nil)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	repo, err = Open(ctx, config.StorageConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "open.db"),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "mongo"}, nil)
	assert.Error(t, err)
}
