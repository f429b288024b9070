package game

import (
	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

// EffectKind categorises effect descriptors for subscribers.
type EffectKind string

const (
	EffectScoreChanged             EffectKind = "SCORE_CHANGED"
	EffectClueRevealed             EffectKind = "CLUE_REVEALED"
	EffectClueSolved               EffectKind = "CLUE_SOLVED"
	EffectFlash                    EffectKind = "FLASH"
	EffectEventTriggered           EffectKind = "EVENT_TRIGGERED"
	EffectEventQueued              EffectKind = "EVENT_QUEUED"
	EffectEventAnimation           EffectKind = "EVENT_ANIMATION"
	EffectScoreReset               EffectKind = "SCORE_RESET"
	EffectDoublePointsActivated    EffectKind = "DOUBLE_POINTS_ACTIVATED"
	EffectReverseQuestionActivated EffectKind = "REVERSE_QUESTION_ACTIVATED"
	EffectScoreStealApplied        EffectKind = "SCORE_STEAL_APPLIED"
	EffectScoreAdjusted            EffectKind = "SCORE_ADJUSTED"
)

// Effect describes something the presentation layer may react to without
// diffing state.
type Effect interface {
	Kind() EffectKind
}

// FlashKind is the colour of an answer flash.
type FlashKind int

const (
	FlashCorrect FlashKind = iota
	FlashIncorrect
)

func (f FlashKind) String() string {
	if f == FlashCorrect {
		return "correct"
	}
	return "incorrect"
}

type ScoreChanged struct {
	Team  uint32
	Delta int
}

type ClueRevealed struct {
	Clue domain.Coord
}

type ClueSolved struct {
	Clue domain.Coord
}

type Flash struct {
	Flash FlashKind
}

type EventTriggered struct {
	Event events.Kind
}

type EventQueued struct {
	Event events.Kind
}

type EventAnimation struct {
	Event     events.Kind
	Animation events.Animation
}

type ScoreReset struct{}

type DoublePointsActivated struct{}

type ReverseQuestionActivated struct{}

type ScoreStealApplied struct {
	Steal events.StealContext
}

// ScoreAdjusted records a host override.
type ScoreAdjusted struct {
	Team uint32
	Old  int
	New  int
}

func (ScoreChanged) Kind() EffectKind             { return EffectScoreChanged }
func (ClueRevealed) Kind() EffectKind             { return EffectClueRevealed }
func (ClueSolved) Kind() EffectKind               { return EffectClueSolved }
func (Flash) Kind() EffectKind                    { return EffectFlash }
func (EventTriggered) Kind() EffectKind           { return EffectEventTriggered }
func (EventQueued) Kind() EffectKind              { return EffectEventQueued }
func (EventAnimation) Kind() EffectKind           { return EffectEventAnimation }
func (ScoreReset) Kind() EffectKind               { return EffectScoreReset }
func (DoublePointsActivated) Kind() EffectKind    { return EffectDoublePointsActivated }
func (ReverseQuestionActivated) Kind() EffectKind { return EffectReverseQuestionActivated }
func (ScoreStealApplied) Kind() EffectKind        { return EffectScoreStealApplied }
func (ScoreAdjusted) Kind() EffectKind            { return EffectScoreAdjusted }

// Result is the outcome of an accepted action.
type Result struct {
	Phase   state.Phase
	Effects []Effect
}

// Changed reports whether the action produced effect descriptors. A result
// without effects is a plain success.
func (r Result) Changed() bool {
	return len(r.Effects) > 0
}
