package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quizboard/quizboard-server-go/internal/config"
	"github.com/quizboard/quizboard-server-go/internal/game"
	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/random"
	"github.com/quizboard/quizboard-server-go/internal/repository"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line   string
		action game.Action
		local  string
	}{
		{"team Night Owls", game.AddTeam{Name: "Night Owls"}, ""},
		{"START", game.StartGame{}, ""},
		{"select 2 3 1", game.SelectClue{Clue: domain.Coord{Category: 1, Row: 2}, Team: 1}, ""},
		{"right 2", game.AnswerCorrect{Team: 2}, ""},
		{"wrong 2", game.AnswerIncorrect{Team: 2}, ""},
		{"steal 3 yes", game.StealAttempt{Team: 3, Correct: true}, ""},
		{"steal 3 n", game.StealAttempt{Team: 3, Correct: false}, ""},
		{"close", game.CloseClue{}, ""},
		{"queue score_steal", game.QueueEvent{Event: events.ScoreSteal}, ""},
		{"trigger Double_Points", game.TriggerEvent{Event: events.DoublePoints}, ""},
		{"play", game.PlayEventAnimation{}, ""},
		{"done", game.FinishEventAnimation{}, ""},
		{"ack", game.AcknowledgeEvent{}, ""},
		{"resolve", game.ResolveEvent{}, ""},
		{"score 1 -250", game.AdjustScore{Team: 1, Score: -250}, ""},
		{"setup", game.ReturnToSetup{}, ""},
		{"board", nil, "board"},
		{"exit", nil, "quit"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.action, cmd.action)
			assert.Equal(t, tt.local, cmd.local)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{
		"team",
		"select 1 2",
		"select 0 1 1",
		"select a 1 1",
		"right x",
		"steal 1 maybe",
		"trigger confetti",
		"score 1 lots",
		"start now",
		"dance",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := parseCommand(line)
			assert.Error(t, err)
		})
	}

	_, err := parseCommand("   ")
	assert.ErrorIs(t, err, errEmptyLine)
}

func newTestConsole(t *testing.T, repo repository.SnapshotRepository) (*console, *bytes.Buffer) {
	t.Helper()
	bus := game.NewEffectBus()
	engine, err := game.NewEngine(domain.NewBoard(2, 3),
		game.WithLogger(zaptest.NewLogger(t)),
		game.WithRand(random.NewSeeded(7)),
		game.WithEffectBus(bus),
		game.WithGameID("console-game"),
	)
	require.NoError(t, err)

	var out bytes.Buffer
	c := newConsole(engine, repo, &out, zaptest.NewLogger(t))
	c.attach(bus)
	return c, &out
}

func TestConsoleSession(t *testing.T) {
	repo := repository.NewMemoryRepository()
	c, out := newTestConsole(t, repo)

	script := strings.Join([]string{
		"team Owls",
		"team Foxes",
		"start",
		"select 1 2 1",
		"right 1",
		"close",
		"select 1 1 2",
		"",
		"right 1",
		"wrong 2",
		"steal 1 no",
		"standings",
		"quit",
		"team ignored",
	}, "\n")
	require.NoError(t, c.Run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "Owls +200")
	assert.Contains(t, text, "Foxes -100")
	assert.Contains(t, text, "error: invalid action AnswerCorrect")
	assert.Contains(t, text, "[resolved 1/1: next team 1] > ")
	assert.NotContains(t, text, "ignored")

	id, snap, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "console-game", id)
	require.NotNil(t, snap.Game)
	assert.Equal(t, state.PhaseResolved, snap.Game.Phase.Kind())
	assert.Equal(t, 200, snap.Game.Teams[0].Score)
	assert.Equal(t, -100, snap.Game.Teams[1].Score)
}

func TestConsoleEvents(t *testing.T) {
	c, out := newTestConsole(t, nil)

	script := "team A\nteam B\nstart\nscore 2 1000\nqueue score_steal\nplay\ndone\nboard\nsetup\n"
	require.NoError(t, c.Run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "A stole 200 from B")
	assert.Contains(t, text, "Score Steal announcement")
	assert.Contains(t, text, "type done when finished")
	assert.Contains(t, text, "[finished] > ")
	assert.Equal(t, state.PhaseFinished, c.engine.Phase().Kind())
}

func TestBuildEngineResume(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	repo := repository.NewMemoryRepository()
	opts := []game.Option{game.WithLogger(logger), game.WithRand(random.NewSeeded(1))}

	fresh, err := buildEngine(ctx, cfg, repo, startOptions{resume: true}, logger, opts)
	require.NoError(t, err)
	assert.Equal(t, state.PhaseLobby, fresh.Phase().Kind())

	_, err = fresh.Handle(game.AddTeam{Name: "Owls"})
	require.NoError(t, err)
	_, err = fresh.Handle(game.StartGame{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh.ID(), fresh.Snapshot()))

	resumed, err := buildEngine(ctx, cfg, repo, startOptions{resume: true}, logger, opts)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID(), resumed.ID())
	assert.Equal(t, state.PhaseSelecting, resumed.Phase().Kind())

	boardOnly := state.NewSnapshot(domain.NewBoard(1, 1), nil)
	require.NoError(t, repo.Save(ctx, "setup-only", boardOnly))
	fromBoard, err := buildEngine(ctx, cfg, repo, startOptions{resume: true}, logger, opts)
	require.NoError(t, err)
	assert.Len(t, fromBoard.AvailableClues(), 1)
}

func TestBuildEngineStoredBoard(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	repo := repository.NewMemoryRepository()
	opts := []game.Option{game.WithLogger(logger), game.WithRand(random.NewSeeded(1))}

	board := domain.NewBoard(3, 2)
	board.Categories[0].Name = "Rivers"
	require.NoError(t, repo.Save(ctx, "board-rivers", state.NewSnapshot(board, nil)))

	engine, err := buildEngine(ctx, config.Default(), repo, startOptions{boardID: "board-rivers"}, logger, opts)
	require.NoError(t, err)
	assert.Equal(t, "Rivers", engine.Board().Categories[0].Name)
	assert.Len(t, engine.AvailableClues(), 6)

	_, err = buildEngine(ctx, config.Default(), repo, startOptions{boardID: "missing"}, logger, opts)
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}
