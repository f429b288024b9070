// Package events implements the periodic random event subsystem: trigger
// detection, weighted selection, the queued/active lifecycle and the score
// effects each event kind applies.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies an event.
type Kind string

const (
	DoublePoints    Kind = "double_points"
	HardReset       Kind = "hard_reset"
	ReverseQuestion Kind = "reverse_question"
	ScoreSteal      Kind = "score_steal"
)

// AllKinds lists every event kind in declaration order.
var AllKinds = []Kind{DoublePoints, HardReset, ReverseQuestion, ScoreSteal}

var kindNames = map[Kind]string{
	DoublePoints:    "Double Points",
	HardReset:       "Hard Reset",
	ReverseQuestion: "Reverse Question",
	ScoreSteal:      "Score Steal",
}

var (
	ErrEventAlreadyActive = errors.New("an event is already active")
	ErrNoEventQueued      = errors.New("no event is queued")
	ErrUnknownKind        = errors.New("unknown event kind")
)

// ParseKind accepts the wire name of a kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindNames[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// DisplayName is the host-facing label.
func (k Kind) DisplayName() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return string(k)
}

// Immediate reports whether the kind applies its effect at queue time rather
// than on the next clue.
func (k Kind) Immediate() bool {
	return k == HardReset || k == ScoreSteal
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Animation is the presentation hint attached to an announced event.
type Animation string

const (
	AnimationDoublePoints    Animation = "double_points_multiplication"
	AnimationHardReset       Animation = "hard_reset_glitch"
	AnimationReverseQuestion Animation = "reverse_question_flip"
	AnimationScoreSteal      Animation = "score_steal_heist"
)

// AnimationFor maps a kind to its announcement animation.
func AnimationFor(k Kind) Animation {
	switch k {
	case DoublePoints:
		return AnimationDoublePoints
	case HardReset:
		return AnimationHardReset
	case ReverseQuestion:
		return AnimationReverseQuestion
	case ScoreSteal:
		return AnimationScoreSteal
	}
	return Animation(k)
}

// StealContext records the most recent score-steal transfer for display.
type StealContext struct {
	ThiefID    uint32 `json:"thief_id"`
	ThiefName  string `json:"thief_name"`
	VictimID   uint32 `json:"victim_id"`
	VictimName string `json:"victim_name"`
	Amount     int    `json:"amount"`
}
