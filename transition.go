package fsm

import (
	"iter"

	"github.com/enetx/g"
)

// NewTransition creates a transition fired by key. It has no target and no
// handler until To/SetTarget and Act are called, so edges can be declared
// before the nodes they point at.
func NewTransition[K, A comparable, C, M any](key A) *Transition[K, A, C, M] {
	return &Transition[K, A, C, M]{key: key, target: g.None[K]()}
}

// Key returns the action that fires the transition.
func (t *Transition[K, A, C, M]) Key() A { return t.key }

// Target returns the destination state key. None sends the machine into the
// null state.
func (t *Transition[K, A, C, M]) Target() g.Option[K] { return t.target }

// Handler returns the effect producer, or nil.
func (t *Transition[K, A, C, M]) Handler() Handler[C, M] { return t.act }

// To sets the destination state key.
func (t *Transition[K, A, C, M]) To(key K) *Transition[K, A, C, M] {
	t.target = g.Some(key)
	return t
}

// SetTarget sets the destination as an option, allowing None.
func (t *Transition[K, A, C, M]) SetTarget(target g.Option[K]) *Transition[K, A, C, M] {
	t.target = target
	return t
}

// Act sets the handler run after the machine advances along this transition.
func (t *Transition[K, A, C, M]) Act(h Handler[C, M]) *Transition[K, A, C, M] {
	t.act = h
	return t
}

// Emit returns a sequence yielding cmds in order. It suits handlers whose
// commands carry no replies.
func Emit[M any](cmds ...M) iter.Seq[M] {
	return func(yield func(M) bool) {
		for _, cmd := range cmds {
			if !yield(cmd) {
				return
			}
		}
	}
}

// Drain is the interpreter used when none is given: it pulls every command
// and discards it.
func Drain[M any](cmds iter.Seq[M]) error {
	for range cmds {
	}

	return nil
}
