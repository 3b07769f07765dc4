package fsm

import (
	"iter"
	"log/slog"
	"sync"

	"github.com/enetx/g"
)

type (
	// Handler produces the effects of a transition. It runs after the machine
	// has advanced and receives the shared context. A nil sequence means the
	// transition has nothing for the interpreter.
	Handler[C, M any] func(state C) (iter.Seq[M], error)

	// Interpreter drains a command sequence produced by a Handler. It may write
	// replies into a command before pulling the next one; the handler observes
	// them when its yield returns.
	Interpreter[M any] func(cmds iter.Seq[M]) error

	// Transition is one outgoing edge of a Node, keyed by the action that fires it.
	Transition[K, A comparable, C, M any] struct {
		key    A
		target g.Option[K]
		act    Handler[C, M]
	}

	// Node is a state: a key plus its outgoing transitions indexed by action.
	Node[K, A comparable, C, M any] struct {
		key         K
		transitions g.Map[A, *Transition[K, A, C, M]]
	}

	// Machine holds the node table, the current state and the user context.
	// It is not safe for concurrent use; see SyncMachine.
	Machine[K, A comparable, C, M any] struct {
		name        string
		nodes       g.Map[K, *Node[K, A, C, M]]
		initial     K
		current     g.Option[K]
		node        *Node[K, A, C, M]
		history     g.Slice[g.Option[K]]
		state       C
		interpret   Interpreter[M]
		observers   g.Slice[Observer[K, A]]
		logger      *slog.Logger
		dispatching bool
	}

	// SyncMachine serializes access to a Machine. Do and the setters hold the
	// write lock for the whole dispatch, handler and interpreter included;
	// readers share the read lock. A handler that calls back into the same
	// SyncMachine deadlocks.
	SyncMachine[K, A comparable, C, M any] struct {
		m  *Machine[K, A, C, M]
		mu sync.RWMutex
	}
)
