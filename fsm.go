// Package fsm provides a generic finite state machine whose transition
// handlers describe their effects as lazy command sequences instead of
// performing them. A caller-supplied interpreter executes the commands, so
// transition logic can be tested without mocking any I/O. It is built with
// types and utilities from the github.com/enetx/g library.
//
// A Machine is parameterized over the state key K, the action key A, the
// context C shared with every handler, and the command type M.
package fsm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/enetx/g"
	"github.com/google/uuid"
)

// New creates a machine from a node table keyed by state. The table is copied.
// The initial key does not have to be in the table; the machine then starts in
// the null state. A nil interpret is replaced by Drain.
func New[K, A comparable, C, M any](
	nodes g.Map[K, *Node[K, A, C, M]],
	initial K,
	interpret Interpreter[M],
	state C,
) *Machine[K, A, C, M] {
	if interpret == nil {
		interpret = Drain[M]
	}

	m := &Machine[K, A, C, M]{
		name:      uuid.NewString(),
		nodes:     copyNodes(nodes),
		initial:   initial,
		state:     state,
		interpret: interpret,
		logger:    slog.New(slog.DiscardHandler),
	}

	m.SetCurrentKey(g.Some(initial))
	m.history = g.Slice[g.Option[K]]{m.current}

	return m
}

// NewOf creates a machine from a sequence of nodes indexed by their Key. When
// two nodes share a key the last one wins. Nil nodes are skipped.
func NewOf[K, A comparable, C, M any](
	nodes g.Slice[*Node[K, A, C, M]],
	initial K,
	interpret Interpreter[M],
	state C,
) *Machine[K, A, C, M] {
	index := make(g.Map[K, *Node[K, A, C, M]], len(nodes))

	for _, n := range nodes {
		if n != nil {
			index[n.key] = n
		}
	}

	return New(index, initial, interpret, state)
}

// Clone creates a machine sharing this machine's name, nodes, interpreter,
// logger and observers, starting at the initial key with a fresh context.
func (m *Machine[K, A, C, M]) Clone(state C) *Machine[K, A, C, M] {
	c := New(m.nodes, m.initial, m.interpret, state)
	c.name = m.name
	c.logger = m.logger
	c.observers = m.observers.Clone()

	return c
}

// Named sets the name used in logs, metrics and traces. It defaults to a random UUID.
func (m *Machine[K, A, C, M]) Named(name string) *Machine[K, A, C, M] {
	m.name = name
	return m
}

// WithLogger sets the logger for dispatch records. A nil logger discards them.
func (m *Machine[K, A, C, M]) WithLogger(logger *slog.Logger) *Machine[K, A, C, M] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m.logger = logger

	return m
}

// Observe registers an observer notified after every Do call.
func (m *Machine[K, A, C, M]) Observe(o Observer[K, A]) *Machine[K, A, C, M] {
	m.observers.Push(o)
	return m
}

// Name returns the machine's name.
func (m *Machine[K, A, C, M]) Name() string { return m.name }

// CurrentKey returns the current state key.
func (m *Machine[K, A, C, M]) CurrentKey() g.Option[K] { return m.current }

// CurrentNode returns the node the current key resolves to. It is None in the
// null state.
func (m *Machine[K, A, C, M]) CurrentNode() g.Option[*Node[K, A, C, M]] {
	if m.node == nil {
		return g.None[*Node[K, A, C, M]]()
	}

	return g.Some(m.node)
}

// State returns the context shared with handlers.
func (m *Machine[K, A, C, M]) State() C { return m.state }

// Nodes returns a copy of the node table.
func (m *Machine[K, A, C, M]) Nodes() g.Map[K, *Node[K, A, C, M]] { return copyNodes(m.nodes) }

// History returns a copy of the keys entered by dispatch since construction
// or the last Reset, starting with the initial key.
func (m *Machine[K, A, C, M]) History() g.Slice[g.Option[K]] { return m.history.Clone() }

// SetNodes replaces the node table. The current key is kept and resolved
// against the new table, which may leave the machine in the null state.
func (m *Machine[K, A, C, M]) SetNodes(nodes g.Map[K, *Node[K, A, C, M]]) {
	m.nodes = copyNodes(nodes)
	m.resolve()
}

// SetCurrentKey moves the machine to key without running any handler.
// None puts the machine in the null state.
func (m *Machine[K, A, C, M]) SetCurrentKey(key g.Option[K]) {
	m.current = key
	m.resolve()
}

// Reset moves the machine back to its initial key and clears the history.
// The context is left as it is.
func (m *Machine[K, A, C, M]) Reset() {
	m.SetCurrentKey(g.Some(m.initial))
	m.history = g.Slice[g.Option[K]]{m.current}
}

// Do dispatches action. The machine moves to the transition's target before
// the handler runs, so handlers and the interpreter observe the new state,
// and a failing handler leaves the machine at the target. History records
// the target; a handler that moves the machine with SetCurrentKey is not
// recorded there, but the observed Event.To is the key the machine ends on.
func (m *Machine[K, A, C, M]) Do(action A) (err error) {
	started := time.Now()
	from := m.current
	to := from

	defer func() { m.report(action, from, to, started, err) }()

	if m.dispatching {
		return &ErrReentrantDispatch{Action: action}
	}

	if m.node == nil {
		return &ErrNoCurrentState{Key: optional(from), Action: action}
	}

	t, ok := m.node.transitions[action]
	if !ok {
		return &ErrUnknownAction{From: m.node.key, Action: action}
	}

	m.SetCurrentKey(t.target)
	m.history.Push(t.target)
	to = t.target

	if t.act == nil {
		return nil
	}

	m.dispatching = true
	defer func() { m.dispatching = false }()

	err = m.run(t, from, action)
	to = m.current

	return err
}

// run invokes the transition's handler and hands its commands to the
// interpreter, recovering from panics in either.
func (m *Machine[K, A, C, M]) run(t *Transition[K, A, C, M], from g.Option[K], action A) (err error) {
	stage := StageAct

	defer func() {
		if r := recover(); r != nil {
			err = m.handlerError(stage, from, t.target, action, recovered(r))
		}
	}()

	cmds, err := t.act(m.state)
	if err != nil {
		return m.handlerError(StageAct, from, t.target, action, err)
	}

	if cmds == nil {
		return nil
	}

	stage = StageInterpret

	if err := m.interpret(cmds); err != nil {
		return m.handlerError(StageInterpret, from, t.target, action, err)
	}

	return nil
}

func (m *Machine[K, A, C, M]) handlerError(stage string, from, to g.Option[K], action A, err error) error {
	return &ErrHandler{Stage: stage, From: optional(from), To: optional(to), Action: action, Err: err}
}

// report logs the dispatch and notifies observers.
func (m *Machine[K, A, C, M]) report(action A, from, to g.Option[K], started time.Time, err error) {
	event := Event[K, A]{
		Machine:  m.name,
		Action:   action,
		From:     from,
		To:       to,
		Started:  started,
		Duration: time.Since(started),
		Err:      err,
	}

	attrs := []any{
		"machine", m.name,
		"action", action,
		"from", Label(from),
		"to", Label(to),
		"outcome", event.Outcome(),
	}

	switch event.Outcome() {
	case OutcomeOK:
		m.logger.Debug("fsm dispatch", attrs...)
	case OutcomeHandlerError:
		m.logger.Error("fsm handler failed", append(attrs, "error", err)...)
	default:
		m.logger.Warn("fsm dispatch rejected", append(attrs, "error", err)...)
	}

	for _, o := range m.observers {
		o.Observe(event)
	}
}

// resolve caches the node for the current key, keeping CurrentNode in step
// with CurrentKey and the table.
func (m *Machine[K, A, C, M]) resolve() {
	m.node = nil

	if m.current.IsSome() {
		m.node = m.nodes[m.current.Some()]
	}
}

func copyNodes[K, A comparable, C, M any](nodes g.Map[K, *Node[K, A, C, M]]) g.Map[K, *Node[K, A, C, M]] {
	out := make(g.Map[K, *Node[K, A, C, M]], len(nodes))

	for key, n := range nodes {
		if n != nil {
			out[key] = n
		}
	}

	return out
}

// optional unwraps o for error fields, using nil for None.
func optional[T any](o g.Option[T]) any {
	if o.IsNone() {
		return nil
	}

	return o.Some()
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}

	return fmt.Errorf("panic: %v", r)
}
