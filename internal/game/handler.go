package game

import (
	"fmt"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/rules"
	"github.com/quizboard/quizboard-server-go/internal/game/scoring"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/random"
)

// Handler is the phase transition function. Every branch decides legality
// before it mutates anything, so a returned error leaves the state untouched.
type Handler struct {
	checker  *rules.Checker
	selector *events.Selector
	interval uint32
}

// NewHandler builds a handler that draws steal orders and events from rng.
func NewHandler(rng random.Source, cfg events.Config) *Handler {
	interval := cfg.TriggerInterval
	if interval == 0 {
		interval = events.DefaultTriggerInterval
	}
	return &Handler{
		checker:  rules.NewChecker(rng),
		selector: events.NewSelector(cfg, rng),
		interval: interval,
	}
}

// Checker exposes the rule predicates used by the handler.
func (h *Handler) Checker() *rules.Checker {
	return h.checker
}

// Handle applies action to g.
func (h *Handler) Handle(g *state.GameState, action Action) (Result, error) {
	var (
		effects []Effect
		err     error
	)

	switch a := action.(type) {
	case AddTeam:
		err = h.addTeam(g, a)
	case StartGame:
		err = h.startGame(g, a)
	case SelectClue:
		effects, err = h.selectClue(g, a)
	case AnswerCorrect:
		effects, err = h.answerCorrect(g, a)
	case AnswerIncorrect:
		effects, err = h.answerIncorrect(g, a)
	case StealAttempt:
		effects, err = h.stealAttempt(g, a)
	case CloseClue:
		effects, err = h.closeClue(g, a)
	case QueueEvent:
		effects, err = h.queueEvent(g, a)
	case PlayEventAnimation:
		effects, err = h.playEventAnimation(g)
	case FinishEventAnimation:
		g.Events.SetAnimationPlaying(false)
	case TriggerEvent:
		effects, err = h.triggerEvent(g, a)
	case AcknowledgeEvent:
	case ResolveEvent:
		g.Events.Deactivate()
	case ReturnToSetup:
		g.Phase = state.Finished{}
	case AdjustScore:
		effects, err = h.adjustScore(g, a)
	default:
		return Result{}, &InvalidActionError{Action: fmt.Sprintf("%T", action), Reason: "Unknown action"}
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Phase: state.ClonePhase(g.Phase), Effects: effects}, nil
}

func (h *Handler) check(g *state.GameState, action Action, actor uint32, kind rules.ActionKind) error {
	if res := h.checker.ValidateTeamAction(g, actor, kind); !res.Legal {
		return invalid(action, res.Reason)
	}
	return nil
}

func (h *Handler) addTeam(g *state.GameState, a AddTeam) error {
	if err := h.check(g, a, 0, rules.ActionAddTeam); err != nil {
		return err
	}
	id := scoring.AddTeam(&g.Teams, a.Name)
	if g.ActiveTeam == 0 {
		g.ActiveTeam = id
	}
	return nil
}

func (h *Handler) startGame(g *state.GameState, a StartGame) error {
	if err := h.check(g, a, 0, rules.ActionStartGame); err != nil {
		return err
	}
	first := g.Teams[0].ID
	g.ActiveTeam = first
	g.Phase = state.Selecting{Team: first}
	return nil
}

func (h *Handler) selectClue(g *state.GameState, a SelectClue) ([]Effect, error) {
	if err := h.check(g, a, a.Team, rules.ActionSelectClue); err != nil {
		return nil, err
	}
	if !h.checker.CanSelectClue(g, a.Clue) {
		return nil, invalid(a, fmt.Sprintf("Clue %s is solved or does not exist", a.Clue))
	}

	clue := g.Clue(a.Clue)
	var effects []Effect
	reversed := g.Events.IsActive(events.ReverseQuestion)
	if reversed {
		clue.SwapText()
		effects = append(effects, ReverseQuestionActivated{})
	}

	g.Phase = state.Showing{
		Clue:        a.Clue,
		Owner:       a.Team,
		Attempt:     1,
		MaxAttempts: rules.MaxAttempts(clue.Points),
		Reversed:    reversed,
	}
	return effects, nil
}

func (h *Handler) answerCorrect(g *state.GameState, a AnswerCorrect) ([]Effect, error) {
	if err := h.check(g, a, a.Team, rules.ActionAnswer); err != nil {
		return nil, err
	}
	p := g.Phase.(state.Showing)
	clue := g.Clue(p.Clue)
	if clue == nil {
		return nil, invalid(a, fmt.Sprintf("Clue %s does not exist", p.Clue))
	}

	// Read the rotation pivot before any mutation in this call.
	pivot := g.ActiveTeam

	effects := h.award(g, p.Clue, clue, a.Team)
	h.finishClue(g, clue, p.Reversed)
	effects = append(effects, Flash{Flash: FlashCorrect})

	h.resolve(g, p.Clue, pivot)
	return effects, nil
}

func (h *Handler) answerIncorrect(g *state.GameState, a AnswerIncorrect) ([]Effect, error) {
	if err := h.check(g, a, a.Team, rules.ActionAnswer); err != nil {
		return nil, err
	}
	p := g.Phase.(state.Showing)
	clue := g.Clue(p.Clue)
	if clue == nil {
		return nil, invalid(a, fmt.Sprintf("Clue %s does not exist", p.Clue))
	}

	effects := []Effect{Flash{Flash: FlashIncorrect}}

	if p.Attempt < p.MaxAttempts {
		p.Attempt++
		g.Phase = p
		return effects, nil
	}

	penalty := clue.Points * g.Events.Multiplier()
	if scoring.Deduct(g.Teams, a.Team, penalty) {
		effects = append(effects, ScoreChanged{Team: a.Team, Delta: -penalty})
	}

	queue := h.checker.StealQueue(g, a.Team)
	current := a.Team
	if len(queue) > 0 {
		current = queue[0]
		queue = queue[1:]
	}
	g.Phase = state.Steal{
		Clue:     p.Clue,
		Queue:    queue,
		Current:  current,
		Owner:    a.Team,
		Reversed: p.Reversed,
	}
	return effects, nil
}

func (h *Handler) stealAttempt(g *state.GameState, a StealAttempt) ([]Effect, error) {
	if err := h.check(g, a, a.Team, rules.ActionSteal); err != nil {
		return nil, err
	}
	p := g.Phase.(state.Steal)
	clue := g.Clue(p.Clue)
	if clue == nil {
		return nil, invalid(a, fmt.Sprintf("Clue %s does not exist", p.Clue))
	}

	// Read the rotation pivot before any mutation in this call.
	pivot := g.ActiveTeam

	if a.Correct {
		effects := h.award(g, p.Clue, clue, a.Team)
		h.finishClue(g, clue, p.Reversed)
		effects = append(effects, Flash{Flash: FlashCorrect})
		h.resolve(g, p.Clue, pivot)
		return effects, nil
	}

	effects := []Effect{Flash{Flash: FlashIncorrect}}
	if len(p.Queue) > 0 {
		p.Current = p.Queue[0]
		p.Queue = append(make([]uint32, 0, len(p.Queue)-1), p.Queue[1:]...)
		g.Phase = p
		return effects, nil
	}

	// Nobody stole it: the clue is spent without an award.
	h.finishClue(g, clue, p.Reversed)
	clue.Solve()
	effects = append(effects, ClueSolved{Clue: p.Clue})
	h.resolve(g, p.Clue, pivot)
	return effects, nil
}

// award solves the clue and credits team, doubled while Double Points is active.
func (h *Handler) award(g *state.GameState, coord domain.Coord, clue *domain.Clue, team uint32) []Effect {
	clue.Solve()
	effects := []Effect{ClueRevealed{Clue: coord}, ClueSolved{Clue: coord}}

	points := clue.Points * g.Events.Multiplier()
	if scoring.Award(g.Teams, team, points) {
		effects = append(effects, ScoreChanged{Team: team, Delta: points})
	}
	return effects
}

// finishClue ends the one-clue events. Reverse Question only ends on the clue
// it actually swapped; that clue's text is restored here.
func (h *Handler) finishClue(g *state.GameState, clue *domain.Clue, reversed bool) {
	if reversed {
		clue.SwapText()
		if g.Events.IsActive(events.ReverseQuestion) {
			g.Events.Deactivate()
		}
	}
	if g.Events.IsActive(events.DoublePoints) {
		g.Events.Deactivate()
	}
}

// resolve advances the rotation one seat past pivot and shows the outcome.
func (h *Handler) resolve(g *state.GameState, coord domain.Coord, pivot uint32) {
	next := scoring.Rotate(g.Teams, pivot)
	g.ActiveTeam = next
	g.Phase = state.Resolved{Clue: coord, NextTeam: next}
}

func (h *Handler) closeClue(g *state.GameState, a CloseClue) ([]Effect, error) {
	if err := h.check(g, a, 0, rules.ActionCloseClue); err != nil {
		return nil, err
	}
	p := g.Phase.(state.Resolved)

	g.Events.IncrementQuestions()

	var effects []Effect
	if g.Events.ShouldTrigger(h.interval) {
		if kind, ok := h.selector.Pick(); ok {
			effects = h.enqueue(g, kind)
		}
	}

	g.Phase = state.Selecting{Team: p.NextTeam}
	return effects, nil
}

// enqueue places kind in the queued slot, applying immediate kinds right away.
func (h *Handler) enqueue(g *state.GameState, kind events.Kind) []Effect {
	g.Events.Queue(kind)
	effects := h.applyImmediate(g, kind)
	return append(effects, EventQueued{Event: kind})
}

func (h *Handler) applyImmediate(g *state.GameState, kind events.Kind) []Effect {
	switch kind {
	case events.HardReset:
		events.ResetScores(g.Teams)
		return []Effect{ScoreReset{}}
	case events.ScoreSteal:
		steal, ok := events.StealFromLeader(g.Teams)
		if !ok {
			return nil
		}
		g.Events.LastSteal = &steal
		return []Effect{
			ScoreChanged{Team: steal.VictimID, Delta: -steal.Amount},
			ScoreChanged{Team: steal.ThiefID, Delta: steal.Amount},
			ScoreStealApplied{Steal: steal},
		}
	}
	return nil
}

func (h *Handler) queueEvent(g *state.GameState, a QueueEvent) ([]Effect, error) {
	if !a.Event.Valid() {
		return nil, invalid(a, fmt.Sprintf("Unknown event %q", a.Event))
	}
	if g.Events.HasQueued() {
		return nil, invalid(a, "An event is already queued")
	}
	return h.enqueue(g, a.Event), nil
}

func (h *Handler) playEventAnimation(g *state.GameState) ([]Effect, error) {
	if !g.Events.HasQueued() {
		return nil, &EventError{Err: events.ErrNoEventQueued}
	}
	kind := *g.Events.Queued
	if !kind.Immediate() && g.Events.HasActive() {
		return nil, &EventError{Event: kind, Err: events.ErrEventAlreadyActive}
	}

	g.Events.TakeQueued()
	g.Events.SetAnimationPlaying(true)
	if !kind.Immediate() {
		g.Events.Activate(kind)
	}
	return []Effect{EventAnimation{Event: kind, Animation: events.AnimationFor(kind)}}, nil
}

func (h *Handler) triggerEvent(g *state.GameState, a TriggerEvent) ([]Effect, error) {
	if !a.Event.Valid() {
		return nil, invalid(a, fmt.Sprintf("Unknown event %q", a.Event))
	}
	if g.Events.HasActive() {
		return nil, &EventError{Event: a.Event, Err: events.ErrEventAlreadyActive}
	}

	g.Events.Activate(a.Event)
	effects := []Effect{
		EventTriggered{Event: a.Event},
		EventAnimation{Event: a.Event, Animation: events.AnimationFor(a.Event)},
	}
	switch a.Event {
	case events.DoublePoints:
		effects = append(effects, DoublePointsActivated{})
	case events.ReverseQuestion:
		effects = append(effects, ReverseQuestionActivated{})
	default:
		effects = append(effects, h.applyImmediate(g, a.Event)...)
	}
	return effects, nil
}

func (h *Handler) adjustScore(g *state.GameState, a AdjustScore) ([]Effect, error) {
	team, ok := g.Team(a.Team)
	if !ok {
		return nil, invalid(a, fmt.Sprintf("Team with ID %d not found", a.Team))
	}
	old := team.Score
	team.Score = a.Score
	return []Effect{ScoreAdjusted{Team: a.Team, Old: old, New: a.Score}}, nil
}
