package main

import (
	"fmt"
	"io"

	"github.com/enetx/freefsm/definition"
	"github.com/enetx/freefsm/examples/toggler"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a definition for consistency",
		Long: `Loads the definition, checks its keys and targets, resolves its handlers
against the toggler's and reports nodes unreachable from the initial node.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd.OutOrStdout())
		},
	}
}

func (a *app) validate(w io.Writer) error {
	var (
		d   *definition.Definition
		err error
	)

	if a.cfg.Definition == "" {
		d, err = definition.Parse(toggler.Definition)
	} else {
		d, err = definition.Load(a.cfg.Definition)
	}

	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if _, err := definition.Nodes(d, toggler.Handlers()); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	for _, key := range d.Unreachable() {
		a.logger.Warn("unreachable node", "node", key)
		fmt.Fprintf(w, "warning: node %s is unreachable from %s\n", key, d.Initial)
	}

	_, err = fmt.Fprintln(w, "definition is valid")

	return err
}
