package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// NewTracerProvider builds an SDK tracer provider exporting spans over OTLP/HTTP to
// irp.tracing.otlp_endpoint. It returns nil when no endpoint is configured.
func NewTracerProvider(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	tc := cfg.IRP.Tracing
	if tc.OTLPEndpoint == "" {
		return nil, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(tc.OTLPEndpoint)}
	if tc.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, exception.NewBatchError("metrics", "failed to create OTLP trace exporter", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", tc.ServiceName))),
	), nil
}

// registerTracerProvider installs tp as the global provider and flushes it on stop.
func registerTracerProvider(lc fx.Lifecycle, tp *sdktrace.TracerProvider) {
	if tp == nil {
		return
	}
	otel.SetTracerProvider(tp)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debugf("Flushing pending spans.")
			return tp.Shutdown(ctx)
		},
	})
}
