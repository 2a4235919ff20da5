package usecase

import (
	"time"

	"go.uber.org/fx"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	chain "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/chain"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
)

// NewConfiguredMonitor builds a Monitor polling at irp.monitor.polling_interval_seconds.
func NewConfiguredMonitor(
	repo repository.WorkflowRepository,
	batches BatchOperator,
	jobs JobOperator,
	controller *chain.Controller,
	launcher port.StepLauncher,
	recorder metrics.MetricRecorder,
	cfg *config.Config,
) *Monitor {
	interval := time.Duration(cfg.IRP.Monitor.PollingIntervalSeconds) * time.Second
	return NewMonitor(repo, batches, jobs, controller, launcher, recorder, interval)
}

// Module is the Fx module for the job, batch and cycle managers and the monitor.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewJobManager,
		fx.As(new(JobOperator)),
	)),
	fx.Provide(fx.Annotate(
		NewBatchManager,
		fx.As(new(BatchOperator)),
	)),
	fx.Provide(NewCycleManager),
	fx.Provide(NewConfiguredMonitor),
)
