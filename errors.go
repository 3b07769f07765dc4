package fsm

import "fmt"

// Handler failure stages.
const (
	StageAct       = "act"
	StageInterpret = "interpret"
)

// ErrNoCurrentState is returned by Do when the machine is in the null state:
// its current key is None or names no node in the table.
type ErrNoCurrentState struct {
	// Key is the dangling current key, or nil when the key is None.
	Key    any
	Action any
}

func (e *ErrNoCurrentState) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("fsm: no current state to handle action %v", e.Action)
	}

	return fmt.Sprintf("fsm: no node for current state %v to handle action %v", e.Key, e.Action)
}

// ErrUnknownAction is returned by Do when the current node has no transition
// for the action. The machine does not move.
type ErrUnknownAction struct {
	From   any
	Action any
}

func (e *ErrUnknownAction) Error() string {
	return fmt.Sprintf("fsm: no transition for action %v from state %v", e.Action, e.From)
}

// ErrHandler is returned when a transition handler or the interpreter draining
// its commands fails or panics. The machine has already moved to the
// transition's target when this is returned.
type ErrHandler struct {
	// Stage is StageAct when the handler itself failed and StageInterpret when
	// the failure happened while the interpreter drained the commands.
	Stage  string
	From   any
	To     any
	Action any
	// Err is the original error, or the error created after recovering from a panic.
	Err error
}

func (e *ErrHandler) Error() string {
	return fmt.Sprintf("fsm: %s failed for action %v (%v -> %v): %v", e.Stage, e.Action, e.From, e.To, e.Err)
}

// Unwrap allows errors.Is and errors.As to reach the handler's error.
func (e *ErrHandler) Unwrap() error { return e.Err }

// ErrReentrantDispatch is returned when Do is called on a machine from inside
// one of its own handlers or interpreter runs.
type ErrReentrantDispatch struct {
	Action any
}

func (e *ErrReentrantDispatch) Error() string {
	return fmt.Sprintf("fsm: re-entrant dispatch of action %v", e.Action)
}

// ErrConstruction is returned when a node or machine cannot be built from its input.
type ErrConstruction struct {
	Key    any
	Reason string
}

func (e *ErrConstruction) Error() string {
	return fmt.Sprintf("fsm: invalid node %v: %s", e.Key, e.Reason)
}
