package fsmmetrics

import (
	"errors"
	"iter"
	"testing"

	fsm "github.com/enetx/freefsm"
	"github.com/enetx/g"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type machine = fsm.Machine[string, string, struct{}, string]

var errStuck = errors.New("stuck")

func newLamp(m *Metrics) *machine {
	on := fsm.NewTransition[string, string, struct{}, string]("toggle").To("on")
	off := fsm.NewTransition[string, string, struct{}, string]("toggle").To("off")
	jam := fsm.NewTransition[string, string, struct{}, string]("jam").To("broken").
		Act(func(struct{}) (iter.Seq[string], error) { return nil, errStuck })

	nodes := g.Slice[*fsm.Node[string, string, struct{}, string]]{
		fsm.NewNodeOf("off", on, jam),
		fsm.NewNodeOf("on", off),
	}

	return fsm.NewOf(nodes, "off", nil, struct{}{}).
		Named("lamp").
		Observe(Observer[string, string](m))
}

func TestObserver_CountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	lamp := newLamp(m)

	require.NoError(t, lamp.Do("toggle"))
	require.NoError(t, lamp.Do("toggle"))
	require.Error(t, lamp.Do("explode"))
	require.Error(t, lamp.Do("jam"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "off", "on", "toggle", fsm.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "on", "off", "toggle", fsm.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "off", "off", "explode", fsm.OutcomeUnknownAction)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "off", "broken", "jam", fsm.OutcomeHandlerError)), 0)

	count, err := testutil.GatherAndCount(reg, "freefsm_dispatch_total", "freefsm_dispatch_duration_seconds")
	require.NoError(t, err)
	// Four counter series and three histogram series (toggle/ok, explode, jam).
	assert.Equal(t, 7, count)
}

func TestObserver_NullState(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	lamp := newLamp(m)
	lamp.SetCurrentKey(g.None[string]())

	require.Error(t, lamp.Do("toggle"))

	assert.InDelta(t, 1, testutil.ToFloat64(
		m.dispatches.WithLabelValues("lamp", "<none>", "<none>", "toggle", fsm.OutcomeNoCurrentState)), 0)
}

func TestObserver_SharedAcrossMachines(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	a := newLamp(m)
	b := newLamp(m).Named("")

	require.NoError(t, a.Do("toggle"))
	require.NoError(t, b.Do("toggle"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "off", "on", "toggle", fsm.OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dispatches.WithLabelValues("unknown", "off", "on", "toggle", fsm.OutcomeOK)), 0)
}

func TestObserver_ClonesShareSeries(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	template := newLamp(m)

	for range 50 {
		require.NoError(t, template.Clone(struct{}{}).Do("toggle"))
	}

	assert.InDelta(t, 50, testutil.ToFloat64(m.dispatches.WithLabelValues("lamp", "off", "on", "toggle", fsm.OutcomeOK)), 0)

	count, err := testutil.GatherAndCount(reg, "freefsm_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestObserver_UnnamedMachinesShareSeries(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	for range 5 {
		require.NoError(t, newLamp(m).Named(uuid.NewString()).Do("toggle"))
	}

	assert.InDelta(t, 5, testutil.ToFloat64(m.dispatches.WithLabelValues("unknown", "off", "on", "toggle", fsm.OutcomeOK)), 0)

	count, err := testutil.GatherAndCount(reg, "freefsm_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
