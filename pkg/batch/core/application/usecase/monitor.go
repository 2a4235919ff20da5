package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// MonitorReport summarizes one monitor pass.
type MonitorReport struct {
	CycleName string
	Batches   int
	Tracked   int
	Finished  []int64
	Launched  []*model.NextStep
}

// Monitor polls in-flight jobs of the active cycle, reconciles their batches and launches the
// next step of every batch that finished.
type Monitor struct {
	repo     repository.WorkflowRepository
	batches  BatchOperator
	jobs     JobOperator
	chain    NextStepResolver
	launcher port.StepLauncher
	recorder metrics.MetricRecorder
	interval time.Duration
}

// NewMonitor creates a new instance of Monitor.
func NewMonitor(
	repo repository.WorkflowRepository,
	batches BatchOperator,
	jobs JobOperator,
	chain NextStepResolver,
	launcher port.StepLauncher,
	recorder metrics.MetricRecorder,
	interval time.Duration,
) *Monitor {
	return &Monitor{
		repo:     repo,
		batches:  batches,
		jobs:     jobs,
		chain:    chain,
		launcher: launcher,
		recorder: recorder,
		interval: interval,
	}
}

// RunOnce makes one pass over the ACTIVE batches of the active cycle. A failing batch does not
// stop the pass; the failures are returned together.
func (m *Monitor) RunOnce(ctx context.Context) (*MonitorReport, error) {
	start := time.Now()
	report := &MonitorReport{}

	cycle, err := m.repo.FindActiveCycle(ctx)
	if errors.Is(err, repository.ErrCycleNotFound) {
		logger.Infof("Monitor: no active cycle.")
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	report.CycleName = cycle.Name

	batches, err := m.repo.FindBatchesByCycleAndStatus(ctx, cycle.ID, model.BatchStatusActive)
	if err != nil {
		return nil, err
	}
	report.Batches = len(batches)

	var errs *multierror.Error
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := m.monitorBatch(ctx, batch, report); err != nil {
			logger.Errorf("Monitor: batch %d: %v", batch.ID, err)
			errs = multierror.Append(errs, err)
		}
	}

	m.recorder.RecordDuration(ctx, "monitor_pass", time.Since(start), map[string]string{"cycle": cycle.Name})
	logger.Infof("Monitor pass over cycle '%s': %d batches, %d jobs tracked, %d finished, %d steps launched.",
		cycle.Name, report.Batches, report.Tracked, len(report.Finished), len(report.Launched))
	return report, errs.ErrorOrNil()
}

func (m *Monitor) monitorBatch(ctx context.Context, batch *model.Batch, report *MonitorReport) error {
	jobs, err := m.batches.GetBatchJobs(ctx, batch.ID, false)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, job := range jobs {
		if !job.HasWorkflow() || job.Status.IsTerminal() {
			continue
		}
		if _, err := m.jobs.TrackJobStatus(ctx, job.ID); err != nil {
			if exception.IsDatabaseError(err) {
				return err
			}
			logger.Warnf("Monitor: tracking job %d failed: %v", job.ID, err)
			errs = multierror.Append(errs, err)
			continue
		}
		report.Tracked++
	}

	status, err := m.batches.ReconBatch(ctx, batch.ID)
	if err != nil {
		return err
	}
	if !status.IsTerminal() {
		return errs.ErrorOrNil()
	}
	report.Finished = append(report.Finished, batch.ID)

	next, err := m.chain.GetNextStepInfo(ctx, batch.ID)
	if err != nil {
		return err
	}
	if next == nil {
		return errs.ErrorOrNil()
	}
	if err := m.launcher.Launch(ctx, next); err != nil {
		errs = multierror.Append(errs, err)
		return errs.ErrorOrNil()
	}
	report.Launched = append(report.Launched, next)
	return errs.ErrorOrNil()
}

// Run calls RunOnce every interval until ctx is cancelled. Pass errors are logged, not returned.
func (m *Monitor) Run(ctx context.Context) error {
	logger.Infof("Monitor started, polling every %s.", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Errorf("Monitor pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			logger.Infof("Monitor stopped.")
			return nil
		case <-ticker.C:
		}
	}
}
