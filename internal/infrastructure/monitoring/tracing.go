package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewTracerProvider builds an OTLP/HTTP tracer provider exporting to
// endpoint (e.g. "localhost:4318") and installs it as the global provider.
// Callers should defer the returned shutdown func.
func NewTracerProvider(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the graphrun tracer, scoped under the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer("graphrun")
}

// StartRunSpan opens a span covering one run's full execution.
func StartRunSpan(ctx context.Context, runID, flowID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "run.execute",
		trace.WithAttributes(
			attribute.String("graphrun.run_id", runID),
			attribute.String("graphrun.flow_id", flowID),
		),
	)
}

// StartNodeSpan opens a span covering one node's execution.
func StartNodeSpan(ctx context.Context, nodeID, nodeType string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "node.execute",
		trace.WithAttributes(
			attribute.String("graphrun.node_id", nodeID),
			attribute.String("graphrun.node_type", nodeType),
		),
	)
}

// EndSpan closes a span, recording err (if any) and the elapsed duration
// since start as an attribute.
func EndSpan(span trace.Span, start time.Time, err error) {
	span.SetAttributes(attribute.Int64("graphrun.duration_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}
