package metrics

import (
	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
)

// NewConfiguredRecorder returns a PrometheusRecorder when irp.metrics.enabled is set, nil otherwise.
func NewConfiguredRecorder(cfg *config.Config) *PrometheusRecorder {
	if !cfg.IRP.Metrics.Enabled {
		return nil
	}
	return NewPrometheusRecorder(cfg.IRP.Metrics.Namespace)
}

func decorateRecorder(fallback metrics.MetricRecorder, recorder *PrometheusRecorder) metrics.MetricRecorder {
	if recorder == nil {
		return fallback
	}
	return recorder
}

func decorateTracer(metrics.Tracer) metrics.Tracer {
	return NewOpenTelemetryTracer()
}

// Module replaces the no-op recorder and tracer of the core metrics module with
// Prometheus and OpenTelemetry implementations, and exports spans when irp.tracing is set.
var Module = fx.Options(
	fx.Provide(NewConfiguredRecorder),
	fx.Provide(NewTracerProvider),
	fx.Invoke(registerTracerProvider),
	fx.Decorate(decorateRecorder),
	fx.Decorate(decorateTracer),
)
