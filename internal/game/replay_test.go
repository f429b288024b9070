package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

func testSnapshot(teams int) *state.Snapshot {
	board := domain.NewBoard(2, 2)
	g := state.New(board)
	for i := 0; i < teams; i++ {
		g.Teams = append(g.Teams, domain.Team{ID: uint32(i + 1), Name: "T"})
	}
	return state.NewSnapshot(board, g)
}

func TestReplayNavigation(t *testing.T) {
	replay := NewReplay("game-123")
	for i := 0; i < 5; i++ {
		replay.Record("AddTeam", testSnapshot(i+1))
	}
	require.Equal(t, 5, replay.Size())

	replay.Start()
	frame := replay.Next()
	require.NotNil(t, frame)
	assert.Equal(t, 1, frame.Sequence)
	assert.Equal(t, 1, replay.CurrentIndex)

	frame = replay.Next()
	require.NotNil(t, frame)
	assert.Equal(t, 2, frame.Sequence)

	frame = replay.Previous()
	require.NotNil(t, frame)
	assert.Equal(t, 2, frame.Sequence)
	assert.Equal(t, 1, replay.CurrentIndex)

	frame = replay.Skip(10)
	require.NotNil(t, frame)
	assert.Equal(t, 5, frame.Sequence, "skip clamps to the last frame")

	frame = replay.Skip(-20)
	require.NotNil(t, frame)
	assert.Equal(t, 1, frame.Sequence)

	replay.Start()
	for i := 0; i < 5; i++ {
		require.NotNil(t, replay.Next())
	}
	assert.Nil(t, replay.Next())

	replay.Start()
	assert.Nil(t, replay.Previous())
	assert.Nil(t, replay.At(-1))
	assert.Nil(t, replay.At(5))
	assert.Len(t, replay.At(2).Snapshot.Game.Teams, 3)
}

func TestReplayEmptySkip(t *testing.T) {
	replay := NewReplay("empty")
	assert.Nil(t, replay.Skip(3))
	assert.Zero(t, replay.CurrentIndex)
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	replay := NewReplay("game-io")
	replay.Record("AddTeam", testSnapshot(1))
	replay.Record("StartGame", testSnapshot(2))

	require.NoError(t, replay.SaveToFile(dir))
	_, err := os.Stat(filepath.Join(dir, "game-io.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "game-io")
	require.NoError(t, err)
	assert.Equal(t, "game-io", loaded.GameID)
	require.Equal(t, 2, loaded.Size())

	for i := 0; i < 2; i++ {
		want := replay.At(i)
		got := loaded.At(i)
		assert.Equal(t, want.Sequence, got.Sequence)
		assert.Equal(t, want.Action, got.Action)
		assert.Equal(t, want.Snapshot.ComputeChecksum(), got.Snapshot.ComputeChecksum())
	}
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "nope")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)

	recorder.Record("game-1", "AddTeam", testSnapshot(1))
	_, ok := recorder.Replay("game-1")
	assert.False(t, ok, "nothing is recorded before StartRecording")

	recorder.StartRecording("game-1")
	assert.True(t, recorder.IsRecording("game-1"))
	recorder.Record("game-1", "AddTeam", testSnapshot(1))
	recorder.Record("game-1", "StartGame", testSnapshot(1))

	recorder.StopRecording("game-1")
	assert.False(t, recorder.IsRecording("game-1"))
	recorder.Record("game-1", "SelectClue", testSnapshot(1))

	replay, ok := recorder.Replay("game-1")
	require.True(t, ok)
	assert.Equal(t, 2, replay.Size())

	require.NoError(t, recorder.SaveReplay("game-1"))
	_, ok = recorder.Replay("game-1")
	assert.False(t, ok, "saved replays leave memory")
	assert.Error(t, recorder.SaveReplay("game-1"))

	loaded, err := recorder.LoadReplay("game-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())

	recorder.StartRecording("game-2")
	recorder.ClearReplay("game-2")
	assert.False(t, recorder.IsRecording("game-2"))
}
