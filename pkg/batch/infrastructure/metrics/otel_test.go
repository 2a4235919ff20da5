package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/metrics"
)

func TestOpenTelemetryTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	tracer := metrics.NewOpenTelemetryTracer()
	ctx, end := tracer.StartSpan(context.Background(), "recon_batch", map[string]interface{}{"batch_id": int64(7)})
	tracer.RecordEvent(ctx, "status_changed", map[string]interface{}{"to": "COMPLETED"})
	tracer.RecordError(ctx, "batch", errors.New("boom"))
	tracer.RecordError(ctx, "batch", nil)
	end()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "recon_batch", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	// One event for RecordEvent and one for the recorded error.
	assert.Len(t, span.Events(), 2)
}

func TestNewTracerProvider(t *testing.T) {
	cfg := config.NewConfig()
	tp, err := metrics.NewTracerProvider(cfg)
	require.NoError(t, err)
	assert.Nil(t, tp, "export is off without an endpoint")

	cfg.IRP.Tracing.OTLPEndpoint = "localhost:4318"
	cfg.IRP.Tracing.Insecure = true
	tp, err = metrics.NewTracerProvider(cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
