package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	fsm "github.com/enetx/freefsm"
	"github.com/enetx/freefsm/definition"
	"github.com/enetx/freefsm/examples/toggler"
	"github.com/enetx/freefsm/fsmmetrics"
	"github.com/enetx/freefsm/fsmtrace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"
)

var errNegativeToggles = errors.New("--toggles must not be negative")

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read an initial counter from stdin and toggle the machine",
		Long: `Dispatches Input, which prompts for an integer on stdin, and then Toggle
the requested number of times. Every handler's output goes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVarP(&a.cfg.Toggles, "toggles", "n", a.cfg.Toggles, "Number of Toggle actions after Input")
	cmd.Flags().BoolVar(&a.cfg.Metrics, "metrics", a.cfg.Metrics, "Print Prometheus metrics to stderr after the run")
	cmd.Flags().StringVar(&a.cfg.OTLPEndpoint, "otlp-endpoint", a.cfg.OTLPEndpoint,
		"OTLP/HTTP endpoint URL receiving one span per dispatch")

	return cmd
}

// instruments are the observers attached to the machine a run drives.
type instruments struct {
	ctx     context.Context
	metrics *fsmmetrics.Metrics
	tracing *tracing
}

func observe[K, A comparable, C, M any](m *fsm.Machine[K, A, C, M], in instruments) *fsm.Machine[K, A, C, M] {
	return m.
		Observe(fsmmetrics.Observer[K, A](in.metrics)).
		Observe(fsmtrace.Observer[K, A](in.ctx, in.tracing.provider))
}

func (a *app) run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	if a.cfg.Toggles < 0 {
		return errNegativeToggles
	}

	tr, err := newTracing(ctx, a.cfg.OTLPEndpoint)
	if err != nil {
		return err
	}

	defer func() {
		if serr := tr.shutdown(context.WithoutCancel(ctx)); serr != nil {
			a.logger.Warn("failed to flush traces", "error", serr)
		}
	}()

	ctx, span := tr.provider.Tracer(fsmtrace.TracerName).Start(ctx, "toggler.run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	reg := prometheus.NewRegistry()
	in := instruments{ctx: ctx, metrics: fsmmetrics.New(reg), tracing: tr}
	console := toggler.NewConsole(stdin, stdout)

	var (
		final   string
		counter *toggler.Counter
	)

	if a.cfg.Definition == "" {
		m := observe(toggler.New(console.Interpret).Named("toggler").WithLogger(a.logger), in)
		err = toggler.Run(m, a.cfg.Toggles)
		final, counter = fsm.Label(m.CurrentKey()), m.State()
	} else {
		var m *fsm.Machine[string, string, *toggler.Counter, toggler.Command]

		m, err = a.buildDefinition(console)
		if err != nil {
			return err
		}

		observe(m.WithLogger(a.logger), in)
		err = drive(m, a.cfg.Toggles)
		final, counter = fsm.Label(m.CurrentKey()), m.State()
	}

	if err != nil {
		a.logger.Error("toggler stopped", "state", final, "counter", counter.Accumulator, "error", err)
	} else {
		a.logger.Info("toggler finished", "state", final, "counter", counter.Accumulator)
	}

	if a.cfg.Metrics {
		if merr := writeMetrics(stderr, reg); merr != nil {
			return errors.Join(err, merr)
		}
	}

	return err
}

func (a *app) buildDefinition(console *toggler.Console) (*fsm.Machine[string, string, *toggler.Counter, toggler.Command], error) {
	d, err := definition.Load(a.cfg.Definition)
	if err != nil {
		return nil, err
	}

	return definition.Build(d, toggler.Handlers(), console.Interpret, &toggler.Counter{})
}

// drive is toggler.Run for machines keyed by plain strings.
func drive(m interface{ Do(action string) error }, toggles int) error {
	if err := m.Do(string(toggler.Input)); err != nil {
		return err
	}

	for range toggles {
		if err := m.Do(string(toggler.Toggle)); err != nil {
			return err
		}
	}

	return nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}
