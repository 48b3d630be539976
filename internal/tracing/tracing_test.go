package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := Tracer().Start(context.Background(), "detect")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "detect", ended[0].Name())
	assert.Equal(t, tracerName, ended[0].InstrumentationScope().Name)
}
