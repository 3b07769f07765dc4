// Package definition loads fsm topologies from YAML.
//
// A definition names its states, their transitions and, for transitions
// that run code, the name of a handler. Handlers are Go functions looked up
// in a Registry when the definition is built, so the YAML stays free of code:
//
//	name: toggler
//	initial: InputInitCounter
//	nodes:
//	  - key: InputInitCounter
//	    transitions:
//	      - action: Input
//	        to: Inactive
//	        handler: input
//	  - key: Inactive
//	    transitions:
//	      - action: Toggle
//	        to: Active
//	        handler: activate
//
// A transition without "to" leads to the null state.
package definition

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInitialRequired indicates that the initial key is missing.
	ErrInitialRequired = errors.New("initial node is required")
	// ErrNodesRequired indicates that the definition has no nodes.
	ErrNodesRequired = errors.New("at least one node is required")
	// ErrInitialNotFound indicates that no node has the initial key.
	ErrInitialNotFound = errors.New("initial node does not exist")
	// ErrNodeKeyRequired indicates a node without a key.
	ErrNodeKeyRequired = errors.New("node key is required")
	// ErrDuplicateNode indicates two nodes with the same key.
	ErrDuplicateNode = errors.New("duplicate node key")
	// ErrActionRequired indicates a transition without an action.
	ErrActionRequired = errors.New("transition action is required")
	// ErrDuplicateAction indicates two transitions of one node with the same action.
	ErrDuplicateAction = errors.New("duplicate transition action")
	// ErrTargetNotFound indicates a transition to a key no node has.
	ErrTargetNotFound = errors.New("transition target does not exist")
	// ErrUnknownHandler indicates a handler name missing from the registry.
	ErrUnknownHandler = errors.New("unknown handler")
)

// Definition is a machine topology as written in YAML.
type Definition struct {
	Name    string `yaml:"name"`
	Initial string `yaml:"initial"`
	Nodes   []Node `yaml:"nodes"`
}

// Node is one state and its outgoing transitions.
type Node struct {
	Key         string       `yaml:"key"`
	Transitions []Transition `yaml:"transitions,omitempty"`
}

// Transition is one edge. An empty To targets the null state; an empty
// Handler means the transition runs no code.
type Transition struct {
	Action  string `yaml:"action"`
	To      string `yaml:"to,omitempty"`
	Handler string `yaml:"handler,omitempty"`
}

// Load reads and validates a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read definition %q: %w", path, err)
	}

	return Parse(data)
}

// LoadFS reads and validates a definition from fsys.
func LoadFS(fsys fs.FS, path string) (*Definition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition from FS: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition

	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// Marshal encodes the definition as YAML.
func (d *Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Validate checks keys, actions and targets. Handler names are checked
// against a registry by Build.
func (d *Definition) Validate() error {
	if d.Initial == "" {
		return ErrInitialRequired
	}

	if len(d.Nodes) == 0 {
		return ErrNodesRequired
	}

	keys := g.NewSet[string]()

	for i, node := range d.Nodes {
		if node.Key == "" {
			return fmt.Errorf("node %d: %w", i, ErrNodeKeyRequired)
		}

		if keys.Contains(node.Key) {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, node.Key)
		}

		keys.Insert(node.Key)
	}

	if !keys.Contains(d.Initial) {
		return fmt.Errorf("%w: %s", ErrInitialNotFound, d.Initial)
	}

	for _, node := range d.Nodes {
		actions := g.NewSet[string]()

		for i, t := range node.Transitions {
			if t.Action == "" {
				return fmt.Errorf("node %s, transition %d: %w", node.Key, i, ErrActionRequired)
			}

			if actions.Contains(t.Action) {
				return fmt.Errorf("node %s: %w: %s", node.Key, ErrDuplicateAction, t.Action)
			}

			actions.Insert(t.Action)

			if t.To != "" && !keys.Contains(t.To) {
				return fmt.Errorf("node %s, action %s: %w: %s", node.Key, t.Action, ErrTargetNotFound, t.To)
			}
		}
	}

	return nil
}

// Unreachable returns the keys of nodes no sequence of actions leads to
// from the initial node, in definition order.
func (d *Definition) Unreachable() g.Slice[string] {
	edges := make(map[string][]string, len(d.Nodes))
	for _, node := range d.Nodes {
		for _, t := range node.Transitions {
			if t.To != "" {
				edges[node.Key] = append(edges[node.Key], t.To)
			}
		}
	}

	reachable := g.NewSet[string]()
	reachable.Insert(d.Initial)

	queue := []string{d.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, to := range edges[current] {
			if !reachable.Contains(to) {
				reachable.Insert(to)
				queue = append(queue, to)
			}
		}
	}

	var unreachable g.Slice[string]

	for _, node := range d.Nodes {
		if !reachable.Contains(node.Key) {
			unreachable.Push(node.Key)
		}
	}

	return unreachable
}
