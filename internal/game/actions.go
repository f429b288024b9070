package game

import (
	"github.com/quizboard/quizboard-server-go/internal/game/domain"
	"github.com/quizboard/quizboard-server-go/internal/game/events"
)

// Action is a request submitted to the engine. The set is closed.
type Action interface {
	ActionName() string
	isAction()
}

// AddTeam creates a team. Lobby only.
type AddTeam struct {
	Name string
}

// StartGame leaves the lobby and hands the first selection to the first team.
type StartGame struct{}

// SelectClue opens the clue at Clue for Team.
type SelectClue struct {
	Clue domain.Coord
	Team uint32
}

// AnswerCorrect marks the owner's answer right.
type AnswerCorrect struct {
	Team uint32
}

// AnswerIncorrect marks the owner's answer wrong.
type AnswerIncorrect struct {
	Team uint32
}

// StealAttempt records the current contender's answer during a steal.
type StealAttempt struct {
	Team    uint32
	Correct bool
}

// CloseClue acknowledges a resolved clue and passes selection to the next team.
type CloseClue struct{}

// QueueEvent places an event in the queued slot as if it had been drawn.
type QueueEvent struct {
	Event events.Kind
}

// PlayEventAnimation signals that the queued event's announcement is playing.
type PlayEventAnimation struct{}

// FinishEventAnimation signals that the announcement has finished.
type FinishEventAnimation struct{}

// TriggerEvent activates an event directly, bypassing the queue.
type TriggerEvent struct {
	Event events.Kind
}

// AcknowledgeEvent marks an announcement as seen. It changes nothing.
type AcknowledgeEvent struct{}

// ResolveEvent force-deactivates the active event.
type ResolveEvent struct{}

// ReturnToSetup ends the game.
type ReturnToSetup struct{}

// AdjustScore overwrites a team's score. Host correction only.
type AdjustScore struct {
	Team  uint32
	Score int
}

func (AddTeam) ActionName() string              { return "AddTeam" }
func (StartGame) ActionName() string            { return "StartGame" }
func (SelectClue) ActionName() string           { return "SelectClue" }
func (AnswerCorrect) ActionName() string        { return "AnswerCorrect" }
func (AnswerIncorrect) ActionName() string      { return "AnswerIncorrect" }
func (StealAttempt) ActionName() string         { return "StealAttempt" }
func (CloseClue) ActionName() string            { return "CloseClue" }
func (QueueEvent) ActionName() string           { return "QueueEvent" }
func (PlayEventAnimation) ActionName() string   { return "PlayEventAnimation" }
func (FinishEventAnimation) ActionName() string { return "FinishEventAnimation" }
func (TriggerEvent) ActionName() string         { return "TriggerEvent" }
func (AcknowledgeEvent) ActionName() string     { return "AcknowledgeEvent" }
func (ResolveEvent) ActionName() string         { return "ResolveEvent" }
func (ReturnToSetup) ActionName() string        { return "ReturnToSetup" }
func (AdjustScore) ActionName() string          { return "AdjustScore" }

// nameOf returns the action name, tolerating a nil action.
func nameOf(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.ActionName()
}

func (AddTeam) isAction()              {}
func (StartGame) isAction()            {}
func (SelectClue) isAction()           {}
func (AnswerCorrect) isAction()        {}
func (AnswerIncorrect) isAction()      {}
func (StealAttempt) isAction()         {}
func (CloseClue) isAction()            {}
func (QueueEvent) isAction()           {}
func (PlayEventAnimation) isAction()   {}
func (FinishEventAnimation) isAction() {}
func (TriggerEvent) isAction()         {}
func (AcknowledgeEvent) isAction()     {}
func (ResolveEvent) isAction()         {}
func (ReturnToSetup) isAction()        {}
func (AdjustScore) isAction()          {}
