package fsm

import "github.com/enetx/g"

// NewNode creates a node from a prebuilt transition map. The map is copied.
// Every entry must be non-nil and stored under its own Key.
func NewNode[K, A comparable, C, M any](key K, transitions g.Map[A, *Transition[K, A, C, M]]) (*Node[K, A, C, M], error) {
	index := make(g.Map[A, *Transition[K, A, C, M]], len(transitions))

	for action, t := range transitions {
		if t == nil {
			return nil, &ErrConstruction{Key: key, Reason: string(g.Format("nil transition for action {}", action))}
		}

		if t.key != action {
			return nil, &ErrConstruction{
				Key:    key,
				Reason: string(g.Format("transition {} stored under action {}", t.key, action)),
			}
		}

		index[action] = t
	}

	return &Node[K, A, C, M]{key: key, transitions: index}, nil
}

// NewNodeOf creates a node indexing transitions by their Key. When two
// transitions share an action the last one wins. Nil entries are skipped.
func NewNodeOf[K, A comparable, C, M any](key K, transitions ...*Transition[K, A, C, M]) *Node[K, A, C, M] {
	index := make(g.Map[A, *Transition[K, A, C, M]], len(transitions))

	for _, t := range transitions {
		if t != nil {
			index[t.key] = t
		}
	}

	return &Node[K, A, C, M]{key: key, transitions: index}
}

// Key returns the state key.
func (n *Node[K, A, C, M]) Key() K { return n.key }

// Transitions returns a copy of the outgoing transitions.
func (n *Node[K, A, C, M]) Transitions() g.Map[A, *Transition[K, A, C, M]] {
	out := make(g.Map[A, *Transition[K, A, C, M]], len(n.transitions))
	for action, t := range n.transitions {
		out[action] = t
	}

	return out
}

// Transition looks up the transition fired by action.
func (n *Node[K, A, C, M]) Transition(action A) g.Option[*Transition[K, A, C, M]] {
	if t, ok := n.transitions[action]; ok {
		return g.Some(t)
	}

	return g.None[*Transition[K, A, C, M]]()
}

// Terminal reports whether the node has no outgoing transitions.
func (n *Node[K, A, C, M]) Terminal() bool { return len(n.transitions) == 0 }
