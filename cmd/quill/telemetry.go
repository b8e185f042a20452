package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/phanxgames/quill"
	"github.com/phanxgames/quill/config"
	"github.com/phanxgames/quill/telemetry"
)

// telemetrySetup owns the providers installed for one command run.
type telemetrySetup struct {
	Metrics *telemetry.Metrics

	reader    *sdkmetric.ManualReader
	shutdowns []func(context.Context) error
}

// setupTelemetry installs a meter provider read on exit and, when an endpoint
// is configured, a tracer provider exporting spans over OTLP/HTTP.
func setupTelemetry(ctx context.Context, cfg config.Telemetry) (*telemetrySetup, error) {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	metrics, err := telemetry.NewMetrics(mp.Meter(telemetry.ScopeName))
	if err != nil {
		return nil, fmt.Errorf("creating instruments: %w", err)
	}
	s := &telemetrySetup{
		Metrics:   metrics,
		reader:    reader,
		shutdowns: []func(context.Context) error{mp.Shutdown},
	}

	if cfg.Endpoint == "" {
		return s, nil
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	s.shutdowns = append(s.shutdowns, tp.Shutdown)
	quill.Logger().Info("exporting traces", slog.String("endpoint", cfg.Endpoint))
	return s, nil
}

// Summary writes the counter and histogram totals collected so far.
func (s *telemetrySetup) Summary(ctx context.Context, w io.Writer) error {
	var rm metricdata.ResourceMetrics
	if err := s.reader.Collect(ctx, &rm); err != nil {
		return err
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				fmt.Fprintf(w, "%-24s %d\n", m.Name, total)
			case metricdata.Histogram[float64]:
				var count uint64
				var sum float64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				fmt.Fprintf(w, "%-24s n=%d sum=%.3f%s\n", m.Name, count, sum, m.Unit)
			}
		}
	}
	return nil
}

// Shutdown flushes and stops the installed providers.
func (s *telemetrySetup) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, s.shutdowns[i](ctx))
	}
	return errors.Join(errs...)
}
