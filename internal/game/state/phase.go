package state

import (
	"encoding/json"
	"fmt"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
)

// PhaseKind enumerates the phase variants.
type PhaseKind int

const (
	PhaseLobby PhaseKind = iota
	PhaseSelecting
	PhaseShowing
	PhaseSteal
	PhaseResolved
	PhaseIntermission
	PhaseFinished
)

var phaseKindNames = map[PhaseKind]string{
	PhaseLobby:        "lobby",
	PhaseSelecting:    "selecting",
	PhaseShowing:      "showing",
	PhaseSteal:        "steal",
	PhaseResolved:     "resolved",
	PhaseIntermission: "intermission",
	PhaseFinished:     "finished",
}

func (k PhaseKind) String() string {
	if name, ok := phaseKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(k))
}

func parsePhaseKind(s string) (PhaseKind, error) {
	for k, name := range phaseKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown phase kind %q", s)
}

// Phase is the closed set of game phases. Exactly one is current at a time.
type Phase interface {
	Kind() PhaseKind
	isPhase()
}

// Lobby accepts team creation and game start only.
type Lobby struct{}

// Selecting waits for Team to pick a clue.
type Selecting struct {
	Team uint32 `json:"team_id"`
}

// Showing displays a clue; Owner may answer up to MaxAttempts times. Reversed
// records that the clue's question and answer were swapped on selection.
type Showing struct {
	Clue        domain.Coord `json:"clue"`
	Owner       uint32       `json:"owner"`
	Attempt     int          `json:"attempt"`
	MaxAttempts int          `json:"max_attempts"`
	Reversed    bool         `json:"reversed,omitempty"`
}

// Steal offers the clue to the other teams in Queue order; Current is answering.
type Steal struct {
	Clue     domain.Coord `json:"clue"`
	Queue    []uint32     `json:"queue"`
	Current  uint32       `json:"current"`
	Owner    uint32       `json:"owner"`
	Reversed bool         `json:"reversed,omitempty"`
}

// Resolved shows the outcome until the host closes the clue.
type Resolved struct {
	Clue     domain.Coord `json:"clue"`
	NextTeam uint32       `json:"next_team"`
}

// Intermission is a pause between rounds.
type Intermission struct{}

// Finished is terminal and reached only by returning to setup.
type Finished struct{}

func (Lobby) Kind() PhaseKind        { return PhaseLobby }
func (Selecting) Kind() PhaseKind    { return PhaseSelecting }
func (Showing) Kind() PhaseKind      { return PhaseShowing }
func (Steal) Kind() PhaseKind        { return PhaseSteal }
func (Resolved) Kind() PhaseKind     { return PhaseResolved }
func (Intermission) Kind() PhaseKind { return PhaseIntermission }
func (Finished) Kind() PhaseKind     { return PhaseFinished }

func (Lobby) isPhase()        {}
func (Selecting) isPhase()    {}
func (Showing) isPhase()      {}
func (Steal) isPhase()        {}
func (Resolved) isPhase()     {}
func (Intermission) isPhase() {}
func (Finished) isPhase()     {}

// ClonePhase copies a phase, including the steal queue.
func ClonePhase(p Phase) Phase {
	if s, ok := p.(Steal); ok {
		s.Queue = append(make([]uint32, 0, len(s.Queue)), s.Queue...)
		return s
	}
	return p
}

// MarshalPhase encodes a phase as {"kind": "...", ...payload}.
func MarshalPhase(p Phase) ([]byte, error) {
	if p == nil {
		p = Lobby{}
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode phase payload: %w", err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("encode phase payload: %w", err)
	}
	kind, _ := json.Marshal(p.Kind().String())
	fields["kind"] = kind
	return json.Marshal(fields)
}

// UnmarshalPhase decodes the envelope written by MarshalPhase.
func UnmarshalPhase(data []byte) (Phase, error) {
	var envelope struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode phase: %w", err)
	}
	kind, err := parsePhaseKind(envelope.Kind)
	if err != nil {
		return nil, err
	}

	var p Phase
	switch kind {
	case PhaseLobby:
		return Lobby{}, nil
	case PhaseIntermission:
		return Intermission{}, nil
	case PhaseFinished:
		return Finished{}, nil
	case PhaseSelecting:
		var v Selecting
		err = json.Unmarshal(data, &v)
		p = v
	case PhaseShowing:
		var v Showing
		err = json.Unmarshal(data, &v)
		p = v
	case PhaseSteal:
		var v Steal
		err = json.Unmarshal(data, &v)
		p = v
	case PhaseResolved:
		var v Resolved
		err = json.Unmarshal(data, &v)
		p = v
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s phase: %w", kind, err)
	}
	return p, nil
}
