package definition

import (
	"fmt"

	fsm "github.com/enetx/freefsm"
	"github.com/enetx/g"
)

// Registry maps handler names used in definitions to handlers.
type Registry[C, M any] = g.Map[string, fsm.Handler[C, M]]

// Nodes builds the definition's nodes, resolving handler names in handlers.
func Nodes[C, M any](d *Definition, handlers Registry[C, M]) (g.Map[string, *fsm.Node[string, string, C, M]], error) {
	nodes := make(g.Map[string, *fsm.Node[string, string, C, M]], len(d.Nodes))

	for _, node := range d.Nodes {
		transitions := make(g.Map[string, *fsm.Transition[string, string, C, M]], len(node.Transitions))

		for _, t := range node.Transitions {
			tr := fsm.NewTransition[string, string, C, M](t.Action)
			if t.To != "" {
				tr.To(t.To)
			}

			if t.Handler != "" {
				h, ok := handlers[t.Handler]
				if !ok || h == nil {
					return nil, fmt.Errorf("node %s, action %s: %w: %s", node.Key, t.Action, ErrUnknownHandler, t.Handler)
				}

				tr.Act(h)
			}

			transitions[t.Action] = tr
		}

		n, err := fsm.NewNode(node.Key, transitions)
		if err != nil {
			return nil, err
		}

		nodes[node.Key] = n
	}

	return nodes, nil
}

// Build validates d and creates a machine at its initial node. The machine
// is named after the definition when it has a name.
func Build[C, M any](
	d *Definition,
	handlers Registry[C, M],
	interpret fsm.Interpreter[M],
	state C,
) (*fsm.Machine[string, string, C, M], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	nodes, err := Nodes(d, handlers)
	if err != nil {
		return nil, err
	}

	m := fsm.New(nodes, d.Initial, interpret, state)
	if d.Name != "" {
		m.Named(d.Name)
	}

	return m, nil
}
