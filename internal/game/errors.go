package game

import (
	"errors"
	"fmt"

	"github.com/quizboard/quizboard-server-go/internal/game/events"
)

// ErrInvalidAction matches every *InvalidActionError via errors.Is.
var ErrInvalidAction = errors.New("invalid action")

// InvalidActionError reports a rejected action. State is unchanged.
type InvalidActionError struct {
	Action string
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %s: %s", e.Action, e.Reason)
}

func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}

func invalid(action Action, reason string) error {
	return &InvalidActionError{Action: nameOf(action), Reason: reason}
}

// EventError reports a rejected event-lifecycle action. It wraps one of
// events.ErrEventAlreadyActive or events.ErrNoEventQueued.
type EventError struct {
	Event events.Kind
	Err   error
}

func (e *EventError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("event error: %v", e.Err)
	}
	return fmt.Sprintf("event error (%s): %v", e.Event, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
