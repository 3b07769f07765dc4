package main

import (
	"fmt"
	"io"
	"iter"

	"github.com/enetx/freefsm/definition"
	"github.com/enetx/freefsm/examples/toggler"
	"github.com/enetx/g"
	"github.com/spf13/cobra"
)

// Graph formats.
const (
	formatDOT     = "dot"
	formatMermaid = "mermaid"
)

func newGraphCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the machine graph visualization",
		Long:  `Outputs the machine in its initial state as a Graphviz DOT or a Mermaid stateDiagram-v2.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.graph(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "Output format (dot, mermaid)")

	return cmd
}

// diagrammer is the rendering half of fsm.StateMachine.
type diagrammer interface {
	ToDOT() g.String
	ToMermaid() g.String
}

func (a *app) graph(w io.Writer, format string) error {
	var m diagrammer = toggler.New(nil)

	if a.cfg.Definition != "" {
		d, err := definition.Load(a.cfg.Definition)
		if err != nil {
			return err
		}

		// Handlers only decide how edges are drawn, so any name will do.
		built, err := definition.Build(d, placeholders(d), nil, struct{}{})
		if err != nil {
			return err
		}

		m = built
	}

	var out g.String

	switch format {
	case formatDOT:
		out = m.ToDOT()
	case formatMermaid:
		out = m.ToMermaid()
	default:
		return fmt.Errorf("unknown graph format %q (want %s or %s)", format, formatDOT, formatMermaid)
	}

	_, err := io.WriteString(w, string(out))

	return err
}

// placeholders registers a no-op handler under every handler name d uses.
func placeholders(d *definition.Definition) definition.Registry[struct{}, struct{}] {
	noop := func(struct{}) (iter.Seq[struct{}], error) { return nil, nil }

	handlers := make(definition.Registry[struct{}, struct{}])
	for _, node := range d.Nodes {
		for _, t := range node.Transitions {
			if t.Handler != "" {
				handlers[t.Handler] = noop
			}
		}
	}

	return handlers
}
