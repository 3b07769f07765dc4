// Package fsmtrace records fsm dispatches as OpenTelemetry spans.
package fsmtrace

import (
	"context"
	"fmt"

	fsm "github.com/enetx/freefsm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the instrumentation scope of every span.
	TracerName = "github.com/enetx/freefsm"
	// SpanName names the span recorded for one Do call.
	SpanName = "fsm.do"
)

// Attribute keys set on every span.
const (
	AttrMachine = attribute.Key("fsm.machine")
	AttrAction  = attribute.Key("fsm.action")
	AttrFrom    = attribute.Key("fsm.from")
	AttrTo      = attribute.Key("fsm.to")
	AttrOutcome = attribute.Key("fsm.outcome")
)

// Observer returns an fsm observer that records each dispatch as a span
// child of ctx. The span covers the dispatch's own start and duration.
// A nil tp uses the global tracer provider.
func Observer[K, A comparable](ctx context.Context, tp trace.TracerProvider) fsm.ObserverFunc[K, A] {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	tracer := tp.Tracer(TracerName)

	return func(e fsm.Event[K, A]) {
		_, span := tracer.Start(ctx, SpanName,
			trace.WithTimestamp(e.Started),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				AttrMachine.String(e.Machine),
				AttrAction.String(fmt.Sprint(e.Action)),
				AttrFrom.String(fsm.Label(e.From)),
				AttrTo.String(fsm.Label(e.To)),
				AttrOutcome.String(e.Outcome()),
			),
		)

		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}

		span.End(trace.WithTimestamp(e.Started.Add(e.Duration)))
	}
}
