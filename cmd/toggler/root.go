package main

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/enetx/freefsm/internal/logging"
	"github.com/spf13/cobra"
)

// config holds the command defaults. Flags override every field.
type config struct {
	Toggles      int    `env:"TOGGLER_TOGGLES"       envDefault:"3"`
	LogLevel     string `env:"TOGGLER_LOG_LEVEL"     envDefault:"warn"`
	LogFormat    string `env:"TOGGLER_LOG_FORMAT"    envDefault:"text"`
	Definition   string `env:"TOGGLER_DEFINITION"`
	Metrics      bool   `env:"TOGGLER_METRICS"`
	OTLPEndpoint string `env:"TOGGLER_OTLP_ENDPOINT"`
}

// loadConfig parses the TOGGLER_* variables of environ, or of the process
// environment when environ is nil.
func loadConfig(environ map[string]string) (config, error) {
	var cfg config

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// app is the state shared by the subcommands.
type app struct {
	cfg    config
	logger *slog.Logger
}

func newRootCmd(cfg config) *cobra.Command {
	a := &app{cfg: cfg, logger: logging.NewNop()}

	root := &cobra.Command{
		Use:           "toggler",
		Short:         "Toggler drives a counting two-state machine",
		Long:          `Toggler asks for an initial counter, then flips between Active and Inactive, counting every flip.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(a.cfg.LogLevel)
			if err != nil {
				return err
			}

			logger, err := logging.NewWriter(cmd.ErrOrStderr(), level, a.cfg.LogFormat)
			if err != nil {
				return err
			}

			a.logger = logger

			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "Log format (text, json)")
	root.PersistentFlags().StringVar(&a.cfg.Definition, "definition", a.cfg.Definition,
		"YAML definition of the machine (defaults to the built-in toggler)")

	root.AddCommand(newRunCmd(a), newGraphCmd(a), newValidateCmd(a))

	return root
}
