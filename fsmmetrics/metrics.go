// Package fsmmetrics exports Prometheus metrics for fsm dispatches.
package fsmmetrics

import (
	"fmt"

	fsm "github.com/enetx/freefsm"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the dispatch collectors. One Metrics can serve any number of
// machines; the machine label tells them apart.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registers the dispatch collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "freefsm_dispatch_total",
			Help: "Total number of dispatched actions by machine, from state, to state, action, and outcome",
		}, []string{"machine", "from", "to", "action", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freefsm_dispatch_duration_seconds",
			Help:    "Duration of a dispatch including handler and interpreter, by machine, action, and outcome",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"machine", "action", "outcome"}),
	}
}

// Observer returns an fsm observer recording every dispatch into m.
func Observer[K, A comparable](m *Metrics) fsm.ObserverFunc[K, A] {
	return func(e fsm.Event[K, A]) {
		action := fmt.Sprint(e.Action)
		outcome := e.Outcome()

		m.dispatches.WithLabelValues(sanitize(e.Machine), fsm.Label(e.From), fsm.Label(e.To), action, outcome).Inc()
		m.duration.WithLabelValues(sanitize(e.Machine), action, outcome).Observe(e.Duration.Seconds())
	}
}

// sanitize bounds the machine label. Unnamed machines carry a generated
// UUID, which would open a new series per instance.
func sanitize(machine string) string {
	if machine == "" {
		return "unknown"
	}

	if _, err := uuid.Parse(machine); err == nil {
		return "unknown"
	}

	return machine
}
