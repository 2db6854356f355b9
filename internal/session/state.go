package session

import (
	"errors"
	"fmt"

	"mockmate/internal/models"
)

// State is the capture session lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateEvaluating State = "evaluating"
	StateEvaluated  State = "evaluated"
	StateSaved      State = "saved"
	StateClosed     State = "closed"
)

// Event drives a state change.
type Event string

const (
	EventStart       Event = "start"
	EventSegments    Event = "segments"
	EventCancel      Event = "cancel"
	EventStop        Event = "stop"
	EventTooShort    Event = "too_short"
	EventEvaluated   Event = "evaluated"
	EventAbort       Event = "abort"
	EventSaveDialog  Event = "save_dialog"
	EventSave        Event = "save"
	EventRecordAgain Event = "record_again"
	EventClose       Event = "close"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrSessionClosed     = errors.New("session closed")
	// the session was reset or closed while an evaluation was in flight
	ErrSessionReset   = errors.New("session reset during evaluation")
	ErrAnswerTooShort = fmt.Errorf("%w: your answer should be at least %d characters", models.ErrValidationFailed, models.MinAnswerLength)
)

// record again and close are accepted from every open state and are not listed
var validTransitions = map[State]map[Event]State{
	StateIdle: {
		EventStart: StateRecording,
	},
	StateRecording: {
		EventSegments: StateRecording,
		EventCancel:   StateIdle,
		EventStop:     StateEvaluating,
		EventTooShort: StateIdle,
	},
	StateEvaluating: {
		EventEvaluated: StateEvaluated,
		EventAbort:     StateIdle,
	},
	StateEvaluated: {
		EventSaveDialog: StateEvaluated,
		EventSave:       StateSaved,
	},
	StateSaved: {
		EventStart: StateRecording,
	},
	StateClosed: {},
}

// next resolves the target of e from current, or fails with ErrInvalidTransition.
func next(current State, e Event) (State, error) {
	if current == StateClosed {
		return current, ErrSessionClosed
	}
	switch e {
	case EventRecordAgain:
		return StateRecording, nil
	case EventClose:
		return StateClosed, nil
	}
	target, ok := validTransitions[current][e]
	if !ok {
		return current, fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, e, current)
	}
	return target, nil
}
