// Package tracing sets up OpenTelemetry spans for pipeline stages.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "shotcut"
	tracerName  = "github.com/five82/shotcut"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// Init installs an OTLP/HTTP exporter for endpoint. An empty endpoint leaves
// the global no-op provider in place.
func Init(ctx context.Context, endpoint string) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the tracer used for pipeline spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
