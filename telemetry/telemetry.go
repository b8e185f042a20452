// Package telemetry holds the OpenTelemetry instruments quill records into.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// guard instrument calls.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope for quill's meters and tracers.
const ScopeName = "github.com/phanxgames/quill"

// Metrics records tool host and overlay activity.
type Metrics struct {
	dispatches    metric.Int64Counter
	handlerErrors metric.Int64Counter
	toolLoads     metric.Int64Counter
	traceDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatches, err := meter.Int64Counter("quill.dispatch.events",
		metric.WithDescription("Number of events dispatched to the active tool"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("quill.handler.errors",
		metric.WithDescription("Number of errors raised by tool handlers"),
	)
	if err != nil {
		return nil, err
	}

	toolLoads, err := meter.Int64Counter("quill.tool.loads",
		metric.WithDescription("Number of tool load attempts"),
	)
	if err != nil {
		return nil, err
	}

	traceDuration, err := meter.Float64Histogram("quill.trace.duration",
		metric.WithDescription("Duration of raster-to-vector tracing in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		dispatches:    dispatches,
		handlerErrors: handlerErrors,
		toolLoads:     toolLoads,
		traceDuration: traceDuration,
	}, nil
}

// Default builds Metrics on the global meter provider.
func Default() *Metrics {
	m, err := NewMetrics(otel.Meter(ScopeName))
	if err != nil {
		otel.Handle(err)
		return nil
	}
	return m
}

// Tracer returns the tracer used for quill spans on the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(ScopeName)
}

// Dispatch counts one event of kind delivered to tool.
func (m *Metrics) Dispatch(tool, kind string) {
	if m == nil {
		return
	}
	m.dispatches.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("kind", kind),
	))
}

// HandlerError counts one failed handler call.
func (m *Metrics) HandlerError(tool, kind string) {
	if m == nil {
		return
	}
	m.handlerErrors.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("kind", kind),
	))
}

// ToolLoad counts one load attempt with its outcome.
func (m *Metrics) ToolLoad(outcome string) {
	if m == nil {
		return
	}
	m.toolLoads.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// TraceFinished records how long a trace took and whether it succeeded.
func (m *Metrics) TraceFinished(ctx context.Context, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.traceDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.Bool("ok", ok),
	))
}
