package fsm

import (
	"errors"
	"fmt"
	"time"

	"github.com/enetx/g"
)

// Dispatch outcomes reported by Event.Outcome.
const (
	OutcomeOK             = "ok"
	OutcomeNoCurrentState = "no_current_state"
	OutcomeUnknownAction  = "unknown_action"
	OutcomeHandlerError   = "handler_error"
	OutcomeReentrant      = "reentrant"
)

// Event describes one completed Do call.
// From and To are equal when the dispatch was rejected before the machine moved.
type Event[K, A comparable] struct {
	Machine  string
	Action   A
	From     g.Option[K]
	To       g.Option[K]
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Outcome classifies the event's error.
func (e Event[K, A]) Outcome() string {
	var (
		handler   *ErrHandler
		noState   *ErrNoCurrentState
		unknown   *ErrUnknownAction
		reentrant *ErrReentrantDispatch
	)

	switch {
	case e.Err == nil:
		return OutcomeOK
	case errors.As(e.Err, &handler):
		return OutcomeHandlerError
	case errors.As(e.Err, &noState):
		return OutcomeNoCurrentState
	case errors.As(e.Err, &unknown):
		return OutcomeUnknownAction
	case errors.As(e.Err, &reentrant):
		return OutcomeReentrant
	default:
		return OutcomeHandlerError
	}
}

// Observer receives an Event after every Do call, successful or not.
// Observers run synchronously on the dispatching goroutine.
type Observer[K, A comparable] interface {
	Observe(e Event[K, A])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[K, A comparable] func(e Event[K, A])

// Observe calls f(e).
func (f ObserverFunc[K, A]) Observe(e Event[K, A]) { f(e) }

// Label formats an optional key for logs, metrics and diagrams.
func Label[T any](o g.Option[T]) string {
	if o.IsNone() {
		return "<none>"
	}

	return fmt.Sprint(o.Some())
}
