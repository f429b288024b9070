package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/rules"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

func TestNewEngineRejectsBadEventConfig(t *testing.T) {
	cfg := events.DefaultConfig()
	cfg.Enabled = append(cfg.Enabled, events.Kind("confetti"))

	_, err := NewEngine(domain.DefaultBoard(), WithEventConfig(cfg), WithRand(&fakeSource{}))
	assert.ErrorIs(t, err, events.ErrUnknownKind)
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(domain.DefaultBoard())
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID())
	assert.Equal(t, state.Lobby{}, e.Phase())
	assert.Zero(t, e.TeamCount())
	_, ok := e.ActiveTeam()
	assert.False(t, ok)
	assert.Len(t, e.AvailableClues(), domain.DefaultCategories*domain.DefaultRows)
}

func TestNewEngineRejectsUnevenBoard(t *testing.T) {
	board := domain.NewBoard(2, 3)
	board.Categories[1].Clues = board.Categories[1].Clues[:2]

	_, err := NewEngine(board, WithRand(&fakeSource{}))
	assert.ErrorIs(t, err, domain.ErrUnevenRows)
}

func TestHandleNilAction(t *testing.T) {
	e := newTestEngine(t)

	var err error
	assert.NotPanics(t, func() { _, err = e.Handle(nil) })
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, state.Lobby{}, e.Phase())
}

func TestEngineCopiesBoard(t *testing.T) {
	board := domain.NewBoard(1, 1)
	e, err := NewEngine(board, WithRand(&fakeSource{}))
	require.NoError(t, err)

	board.Categories[0].Clues[0].Question = "mutated"
	clue, ok := e.Clue(domain.Coord{})
	require.True(t, ok)
	assert.Empty(t, clue.Question)

	b := e.Board()
	b.Categories[0].Clues[0].Solved = true
	assert.True(t, e.IsClueAvailable(domain.Coord{}))
}

func TestEngineQueries(t *testing.T) {
	e := startedGame(t, []string{"A", "B", "C"})
	assert.Equal(t, []rules.ActionKind{rules.ActionSelectClue, rules.ActionReturnToSetup}, e.AvailableActions())

	mustHandle(t, e, AdjustScore{Team: 2, Score: 500})
	mustHandle(t, e, AdjustScore{Team: 3, Score: -100})

	board := e.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, uint32(2), board[0].TeamID)
	assert.Equal(t, uint32(3), board[2].TeamID)

	stats := e.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 500, stats.Highest)
	assert.Equal(t, -100, stats.Lowest)
	assert.Equal(t, 400, stats.TotalPoints)

	_, ok := e.Clue(domain.Coord{Category: 9})
	assert.False(t, ok)
	_, ok = e.TeamScore(42)
	assert.False(t, ok)
	assert.False(t, e.BoardCleared())
}

func TestEngineBoardCleared(t *testing.T) {
	e, err := NewEngine(domain.NewBoard(1, 2),
		WithLogger(zaptest.NewLogger(t)),
		WithRand(&fakeSource{}),
	)
	require.NoError(t, err)
	mustHandle(t, e, AddTeam{Name: "solo"})
	mustHandle(t, e, StartGame{})

	playCorrect(t, e, domain.Coord{Row: 0})
	playCorrect(t, e, domain.Coord{Row: 1})

	assert.True(t, e.BoardCleared())
	assert.Equal(t, state.PhaseSelecting, e.Phase().Kind(), "a cleared board does not end the game")
	assert.Equal(t, []rules.ActionKind{rules.ActionReturnToSetup}, e.AvailableActions())
}

func TestEngineSnapshotRoundtrip(t *testing.T) {
	e := startedGame(t, []string{"A", "B"})
	mustHandle(t, e, TriggerEvent{Event: events.DoublePoints})
	mustHandle(t, e, SelectClue{Clue: clue500, Team: 1})
	mustHandle(t, e, AnswerIncorrect{Team: 1})

	snap := e.Snapshot()
	require.NoError(t, state.ValidateRoundtrip(snap))

	data, err := snap.Encode()
	require.NoError(t, err)
	decoded, err := state.DecodeSnapshot(data)
	require.NoError(t, err)

	resumed, err := FromSnapshot(decoded,
		WithLogger(zaptest.NewLogger(t)),
		WithRand(&fakeSource{}),
		WithGameID("resumed"),
	)
	require.NoError(t, err)

	assert.Equal(t, e.Phase(), resumed.Phase())
	assert.Equal(t, e.Teams(), resumed.Teams())
	assert.Equal(t, e.Events(), resumed.Events())

	res, err := resumed.Handle(StealAttempt{Team: 2, Correct: true})
	require.NoError(t, err)
	assert.Contains(t, res.Effects, Effect(ScoreChanged{Team: 2, Delta: 1000}))
}

func TestFromSnapshotWithoutGame(t *testing.T) {
	_, err := FromSnapshot(state.NewSnapshot(domain.DefaultBoard(), nil))
	assert.ErrorIs(t, err, ErrNoGameInSnapshot)

	_, err = FromSnapshot(nil)
	assert.ErrorIs(t, err, ErrNoGameInSnapshot)
}

func TestEngineSnapshotKeepsSetupBoard(t *testing.T) {
	e := startedGame(t, []string{"A"})
	playCorrect(t, e, clue200)

	snap := e.Snapshot()
	assert.False(t, snap.Board.Categories[0].Clues[1].Solved, "setup board is not played on")
	assert.True(t, snap.Game.Board.Categories[0].Clues[1].Solved)
}

func TestEnginePublishesEffects(t *testing.T) {
	bus := NewEffectBus()
	var published []Effect
	bus.Subscribe(func(eff Effect) { published = append(published, eff) })

	e := startedGame(t, []string{"A", "B"}, WithEffectBus(bus))
	mustHandle(t, e, SelectClue{Clue: clue200, Team: 1})
	res := mustHandle(t, e, AnswerCorrect{Team: 1})

	assert.Equal(t, res.Effects, published)

	_, err := e.Handle(AnswerCorrect{Team: 1})
	require.Error(t, err)
	assert.Equal(t, res.Effects, published, "rejected actions publish nothing")
}

func TestEngineRecordsFrames(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	e := startedGame(t, []string{"A", "B"}, WithRecorder(recorder))

	_, err := e.Handle(CloseClue{})
	require.Error(t, err)

	replay, ok := recorder.Replay(e.ID())
	require.True(t, ok)
	require.Equal(t, 3, replay.Size())

	last := replay.At(2)
	assert.Equal(t, "StartGame", last.Action)
	assert.Equal(t, state.PhaseSelecting, last.Snapshot.Game.Phase.Kind())
}
