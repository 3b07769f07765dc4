// Command toggler drives the toggler state machine from the terminal.
//
//	toggler run --toggles 3
//	toggler graph --format mermaid
//	toggler validate --definition toggler.yaml
//
// Defaults come from TOGGLER_* environment variables and are overridden by flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	root := newRootCmd(cfg)
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}
