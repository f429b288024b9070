// Package state holds the mutable state of one running quiz game and its
// serialized forms.
package state

import (
	"encoding/json"
	"fmt"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
)

// GameState owns the board, the ordered team list, the current phase, the
// rotation pivot and the event state.
//
// ActiveTeam is the team whose turn it conceptually is. It may lag the team
// named in the phase payload; rotation always reads it, never the phase.
type GameState struct {
	Board      domain.Board
	Teams      []domain.Team
	Phase      Phase
	ActiveTeam uint32
	Events     events.State
}

// New returns a game in the Lobby phase with no teams.
func New(board domain.Board) *GameState {
	return &GameState{
		Board: board,
		Teams: make([]domain.Team, 0),
		Phase: Lobby{},
	}
}

// Team returns a pointer to the team with id.
func (g *GameState) Team(id uint32) (*domain.Team, bool) {
	for i := range g.Teams {
		if g.Teams[i].ID == id {
			return &g.Teams[i], true
		}
	}
	return nil, false
}

// Clue returns a pointer to the clue at coord, or nil.
func (g *GameState) Clue(coord domain.Coord) *domain.Clue {
	return g.Board.Clue(coord)
}

// IsClueAvailable reports whether coord names an existing, unsolved clue.
func (g *GameState) IsClueAvailable(coord domain.Coord) bool {
	clue := g.Board.Clue(coord)
	return clue != nil && !clue.Solved
}

// AvailableClues lists the coordinates of every unsolved clue, column by column.
func (g *GameState) AvailableClues() []domain.Coord {
	out := make([]domain.Coord, 0)
	for ci, cat := range g.Board.Categories {
		for ri, clue := range cat.Clues {
			if !clue.Solved {
				out = append(out, domain.Coord{Category: ci, Row: ri})
			}
		}
	}
	return out
}

// BoardCleared reports whether every clue has been solved.
func (g *GameState) BoardCleared() bool {
	for _, cat := range g.Board.Categories {
		for _, clue := range cat.Clues {
			if !clue.Solved {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (g *GameState) Clone() *GameState {
	return &GameState{
		Board:      g.Board.Clone(),
		Teams:      append(make([]domain.Team, 0, len(g.Teams)), g.Teams...),
		Phase:      ClonePhase(g.Phase),
		ActiveTeam: g.ActiveTeam,
		Events:     g.Events.Clone(),
	}
}

type gameStateJSON struct {
	Board      domain.Board    `json:"board"`
	Teams      []domain.Team   `json:"teams"`
	Phase      json.RawMessage `json:"phase"`
	ActiveTeam uint32          `json:"active_team_id"`
	Events     *events.State   `json:"event_state,omitempty"`
}

func (g *GameState) MarshalJSON() ([]byte, error) {
	phase, err := MarshalPhase(g.Phase)
	if err != nil {
		return nil, err
	}
	ev := g.Events
	return json.Marshal(gameStateJSON{
		Board:      g.Board,
		Teams:      g.Teams,
		Phase:      phase,
		ActiveTeam: g.ActiveTeam,
		Events:     &ev,
	})
}

// UnmarshalJSON decodes a game. A missing event_state, as written before events
// existed, decodes to the zero events.State.
func (g *GameState) UnmarshalJSON(data []byte) error {
	var raw gameStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode game state: %w", err)
	}

	var phase Phase = Lobby{}
	if len(raw.Phase) > 0 && string(raw.Phase) != "null" {
		p, err := UnmarshalPhase(raw.Phase)
		if err != nil {
			return err
		}
		phase = p
	}

	g.Board = raw.Board
	g.Teams = raw.Teams
	if g.Teams == nil {
		g.Teams = make([]domain.Team, 0)
	}
	g.Phase = phase
	g.ActiveTeam = raw.ActiveTeam
	g.Events = events.State{}
	if raw.Events != nil {
		g.Events = *raw.Events
	}
	return nil
}
