package notify

import (
	"go.uber.org/fx"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
)

// Module provides the logging port.Notifier and port.StepLauncher.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewLogNotifier, fx.As(new(port.Notifier)))),
	fx.Provide(fx.Annotate(NewLogStepLauncher, fx.As(new(port.StepLauncher)))),
)
