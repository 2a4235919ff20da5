package metrics

import (
	"go.uber.org/fx"
)

// Module provides the no-op recorder and tracer.
// Applications replace them with fx.Decorate when a real backend is configured.
var Module = fx.Options(
	fx.Provide(NewNoOpMetricRecorder),
	fx.Provide(NewNoOpTracer),
)
