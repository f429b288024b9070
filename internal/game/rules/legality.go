package rules

import (
	"fmt"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
	"github.com/quizboard/quizboard-server-go/internal/random"
)

// HighValueThreshold is the points value above which the owner gets a second attempt.
const HighValueThreshold = 500

// ActionKind names the team-facing actions the checker validates.
type ActionKind int

const (
	ActionAddTeam ActionKind = iota
	ActionStartGame
	ActionSelectClue
	ActionAnswer
	ActionSteal
	ActionCloseClue
	ActionReturnToSetup
)

var actionKindNames = map[ActionKind]string{
	ActionAddTeam:       "AddTeam",
	ActionStartGame:     "StartGame",
	ActionSelectClue:    "SelectClue",
	ActionAnswer:        "Answer",
	ActionSteal:         "StealAttempt",
	ActionCloseClue:     "CloseClue",
	ActionReturnToSetup: "ReturnToSetup",
}

func (a ActionKind) String() string {
	if name, ok := actionKindNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action_%d", int(a))
}

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
}

func legal() LegalityResult {
	return LegalityResult{Legal: true}
}

func illegal(reason string, details map[string]string) LegalityResult {
	return LegalityResult{Legal: false, Reason: reason, Details: details}
}

// Checker evaluates rule predicates against a game state. Predicates never
// mutate the state; the random source is used only to build steal queues.
type Checker struct {
	rng random.Source
}

// NewChecker creates a checker drawing steal orders from rng.
func NewChecker(rng random.Source) *Checker {
	return &Checker{rng: rng}
}

// MaxAttempts is 2 for clues worth more than 500 points, otherwise 1.
func MaxAttempts(points int) int {
	if points > HighValueThreshold {
		return 2
	}
	return 1
}

// CanAddTeam is true only in the Lobby.
func (c *Checker) CanAddTeam(g *state.GameState) bool {
	_, ok := g.Phase.(state.Lobby)
	return ok
}

// CanStartGame is true in the Lobby once at least one team exists.
func (c *Checker) CanStartGame(g *state.GameState) bool {
	return c.CanAddTeam(g) && len(g.Teams) > 0
}

// CanSelectClue is true while Selecting and coord names an unsolved clue.
func (c *Checker) CanSelectClue(g *state.GameState, coord domain.Coord) bool {
	if _, ok := g.Phase.(state.Selecting); !ok {
		return false
	}
	return g.IsClueAvailable(coord)
}

// ValidateTeamAction checks the phase and actor for a team-facing action.
// Closing a clue and returning to setup do not depend on the actor.
func (c *Checker) ValidateTeamAction(g *state.GameState, actor uint32, action ActionKind) LegalityResult {
	details := map[string]string{
		"action": action.String(),
		"phase":  g.Phase.Kind().String(),
		"actor":  fmt.Sprintf("%d", actor),
	}

	switch action {
	case ActionAddTeam:
		if !c.CanAddTeam(g) {
			return illegal("Teams can only be added in the lobby", details)
		}
	case ActionStartGame:
		if _, ok := g.Phase.(state.Lobby); !ok {
			return illegal("Game can only be started from the lobby", details)
		}
		if len(g.Teams) == 0 {
			return illegal("At least one team is required", details)
		}
	case ActionSelectClue:
		p, ok := g.Phase.(state.Selecting)
		if !ok {
			return illegal("Clues can only be selected while a team is selecting", details)
		}
		if p.Team != actor {
			details["expected"] = fmt.Sprintf("%d", p.Team)
			return illegal("It is not this team's turn to select", details)
		}
	case ActionAnswer:
		p, ok := g.Phase.(state.Showing)
		if !ok {
			return illegal("Answers are only accepted while a clue is showing", details)
		}
		if p.Owner != actor {
			details["expected"] = fmt.Sprintf("%d", p.Owner)
			return illegal("Only the owning team may answer", details)
		}
	case ActionSteal:
		p, ok := g.Phase.(state.Steal)
		if !ok {
			return illegal("Steal attempts are only accepted during a steal", details)
		}
		if p.Current != actor {
			details["expected"] = fmt.Sprintf("%d", p.Current)
			return illegal("Only the current contender may attempt the steal", details)
		}
	case ActionCloseClue:
		if _, ok := g.Phase.(state.Resolved); !ok {
			return illegal("Can only close clue in resolved phase", details)
		}
	case ActionReturnToSetup:
		// Always allowed.
	default:
		return illegal("Unknown action", details)
	}
	return legal()
}

// StealQueue returns every team id except excluding, in uniformly random order.
// Steal order is independent of turn rotation.
func (c *Checker) StealQueue(g *state.GameState, excluding uint32) []uint32 {
	queue := make([]uint32, 0, len(g.Teams))
	for _, t := range g.Teams {
		if t.ID != excluding {
			queue = append(queue, t.ID)
		}
	}
	if c.rng != nil {
		c.rng.Shuffle(len(queue), func(i, j int) {
			queue[i], queue[j] = queue[j], queue[i]
		})
	}
	return queue
}

// BoardCleared reports whether no clue is left to select.
func (c *Checker) BoardCleared(g *state.GameState) bool {
	return g.BoardCleared()
}

// AvailableActions lists the team-facing actions the current phase accepts.
func (c *Checker) AvailableActions(g *state.GameState) []ActionKind {
	actions := make([]ActionKind, 0, 3)
	switch g.Phase.(type) {
	case state.Lobby:
		actions = append(actions, ActionAddTeam)
		if c.CanStartGame(g) {
			actions = append(actions, ActionStartGame)
		}
	case state.Selecting:
		if len(g.AvailableClues()) > 0 {
			actions = append(actions, ActionSelectClue)
		}
	case state.Showing:
		actions = append(actions, ActionAnswer)
	case state.Steal:
		actions = append(actions, ActionSteal)
	case state.Resolved:
		actions = append(actions, ActionCloseClue)
	case state.Intermission, state.Finished:
	}
	return append(actions, ActionReturnToSetup)
}
