// Package game runs a quiz game: the action handler that drives the phase
// state machine and the Engine façade the presentation layer talks to.
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/rules"
	"github.com/quizboard/quizboard-server-go/internal/game/scoring"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/random"
)

// ErrNoGameInSnapshot is returned when restoring from a board-only snapshot.
var ErrNoGameInSnapshot = errors.New("snapshot has no game in progress")

type engineOptions struct {
	logger   *zap.Logger
	rng      random.Source
	events   events.Config
	recorder *ReplayRecorder
	bus      *EffectBus
	gameID   string
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) { o.logger = logger }
}

// WithRand injects the random source for steal shuffles and event draws.
func WithRand(rng random.Source) Option {
	return func(o *engineOptions) { o.rng = rng }
}

// WithEventConfig overrides the event trigger interval and weights.
func WithEventConfig(cfg events.Config) Option {
	return func(o *engineOptions) { o.events = cfg }
}

// WithRecorder records a replay frame after every accepted action.
func WithRecorder(recorder *ReplayRecorder) Option {
	return func(o *engineOptions) { o.recorder = recorder }
}

// WithEffectBus publishes every effect of accepted actions to bus.
func WithEffectBus(bus *EffectBus) Option {
	return func(o *engineOptions) { o.bus = bus }
}

// WithGameID fixes the game id instead of generating one.
func WithGameID(id string) Option {
	return func(o *engineOptions) { o.gameID = id }
}

// Engine owns one game and is its only mutation path. It is not safe for
// concurrent use; the owner serialises calls.
type Engine struct {
	id       string
	setup    domain.Board
	state    *state.GameState
	handler  *Handler
	logger   *zap.Logger
	recorder *ReplayRecorder
	bus      *EffectBus
}

// NewEngine starts a new game in the Lobby on a copy of board. Boards whose
// categories differ in row count are rejected with domain.ErrUnevenRows.
func NewEngine(board domain.Board, opts ...Option) (*Engine, error) {
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}
	return newEngine(board.Clone(), state.New(board.Clone()), opts)
}

// FromSnapshot resumes the game stored in snap.
func FromSnapshot(snap *state.Snapshot, opts ...Option) (*Engine, error) {
	if snap == nil || snap.Game == nil {
		return nil, ErrNoGameInSnapshot
	}
	return newEngine(snap.Board.Clone(), snap.Game.Clone(), opts)
}

func newEngine(setup domain.Board, g *state.GameState, opts []Option) (*Engine, error) {
	o := engineOptions{events: events.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.rng == nil {
		rng, err := random.New()
		if err != nil {
			return nil, fmt.Errorf("failed to seed random source: %w", err)
		}
		o.rng = rng
	}
	if err := o.events.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event config: %w", err)
	}
	if o.gameID == "" {
		o.gameID = uuid.New().String()
	}

	e := &Engine{
		id:       o.gameID,
		setup:    setup,
		state:    g,
		handler:  NewHandler(o.rng, o.events),
		logger:   o.logger.With(zap.String("game_id", o.gameID)),
		recorder: o.recorder,
		bus:      o.bus,
	}
	if e.recorder != nil {
		e.recorder.StartRecording(e.id)
	}
	e.logger.Info("game created",
		zap.String("phase", g.Phase.Kind().String()),
		zap.Int("teams", len(g.Teams)),
	)
	return e, nil
}

// ID returns the game id.
func (e *Engine) ID() string {
	return e.id
}

// Handle submits an action. On error the game is unchanged.
func (e *Engine) Handle(action Action) (Result, error) {
	from := e.state.Phase.Kind()

	res, err := e.handler.Handle(e.state, action)
	if err != nil {
		e.logger.Warn("action rejected",
			zap.String("action", nameOf(action)),
			zap.String("phase", from.String()),
			zap.Error(err),
		)
		return Result{}, err
	}

	e.logger.Debug("action applied",
		zap.String("action", nameOf(action)),
		zap.String("from", from.String()),
		zap.String("to", res.Phase.Kind().String()),
		zap.Int("effects", len(res.Effects)),
	)

	if e.bus != nil {
		e.bus.PublishBatch(res.Effects)
	}
	if e.recorder != nil {
		e.recorder.Record(e.id, action.ActionName(), e.Snapshot())
	}
	return res, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() state.Phase {
	return state.ClonePhase(e.state.Phase)
}

// TeamScore returns a team's score.
func (e *Engine) TeamScore(teamID uint32) (int, bool) {
	return scoring.Score(e.state.Teams, teamID)
}

// ActiveTeam returns the rotation pivot team, if any.
func (e *Engine) ActiveTeam() (domain.Team, bool) {
	t, ok := e.state.Team(e.state.ActiveTeam)
	if !ok {
		return domain.Team{}, false
	}
	return *t, true
}

// Teams returns a copy of the team list in rotation order.
func (e *Engine) Teams() []domain.Team {
	return append([]domain.Team(nil), e.state.Teams...)
}

// TeamCount returns the number of teams.
func (e *Engine) TeamCount() int {
	return len(e.state.Teams)
}

// AvailableClues lists the coordinates of unsolved clues.
func (e *Engine) AvailableClues() []domain.Coord {
	return e.state.AvailableClues()
}

// IsClueAvailable reports whether coord names an unsolved clue.
func (e *Engine) IsClueAvailable(coord domain.Coord) bool {
	return e.state.IsClueAvailable(coord)
}

// Clue returns a copy of the clue at coord.
func (e *Engine) Clue(coord domain.Coord) (domain.Clue, bool) {
	c := e.state.Clue(coord)
	if c == nil {
		return domain.Clue{}, false
	}
	return *c, true
}

// Board returns a copy of the live board.
func (e *Engine) Board() domain.Board {
	return e.state.Board.Clone()
}

// Leaderboard returns standings, highest score first.
func (e *Engine) Leaderboard() []scoring.Standing {
	return scoring.Leaderboard(e.state.Teams)
}

// Stats summarises team scores.
func (e *Engine) Stats() scoring.Stats {
	return scoring.Summarize(e.state.Teams)
}

// Events returns a copy of the event state.
func (e *Engine) Events() events.State {
	return e.state.Events.Clone()
}

// AvailableActions lists the team-facing actions the current phase accepts.
func (e *Engine) AvailableActions() []rules.ActionKind {
	return e.handler.Checker().AvailableActions(e.state)
}

// BoardCleared reports whether every clue is solved. The game does not end on
// its own; the host returns to setup.
func (e *Engine) BoardCleared() bool {
	return e.state.BoardCleared()
}

// State returns a deep copy of the whole game state.
func (e *Engine) State() *state.GameState {
	return e.state.Clone()
}

// Snapshot captures the setup board and the game for persistence.
func (e *Engine) Snapshot() *state.Snapshot {
	return state.NewSnapshot(e.setup, e.state)
}
