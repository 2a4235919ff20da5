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
	transformer "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/transformer"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

const batchModule = "BatchManager"

// SkipReasonEntityExists is recorded on jobs skipped because their remote entity already exists.
const SkipReasonEntityExists = "Entity already exists in the risk-modeling system"

// BatchManager is the default BatchOperator.
type BatchManager struct {
	repo      repository.WorkflowRepository
	txManager tx.TransactionManager
	registry  *transformer.Registry
	jobs      JobOperator
	checker   port.EntityChecker
	notifier  port.Notifier
	recorder  metrics.MetricRecorder
	tracer    metrics.Tracer
	now       func() time.Time
}

var _ BatchOperator = (*BatchManager)(nil)

// NewBatchManager creates a new instance of BatchManager.
func NewBatchManager(
	repo repository.WorkflowRepository,
	txManager tx.TransactionManager,
	registry *transformer.Registry,
	jobs JobOperator,
	checker port.EntityChecker,
	notifier port.Notifier,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *BatchManager {
	return &BatchManager{
		repo:      repo,
		txManager: txManager,
		registry:  registry,
		jobs:      jobs,
		checker:   checker,
		notifier:  notifier,
		recorder:  recorder,
		tracer:    tracer,
		now:       time.Now,
	}
}

// CreateBatch stores an ACTIVE batch with one job configuration per transformer payload.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) CreateBatch(ctx context.Context, configurationID, stepRunID int64, batchType string) (int64, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.batch.create", map[string]interface{}{"batch.type": batchType})
	defer end()
	start := m.now()

	if !m.registry.Has(batchType) {
		return 0, exception.NewBatchErrorf(batchModule, "batch type '%s' has no registered transformer", batchType, transformer.ErrUnknownBatchType)
	}
	cfg, err := m.repo.FindConfigurationByID(ctx, configurationID)
	if errors.Is(err, repository.ErrConfigurationNotFound) {
		return 0, exception.NewBatchErrorf(batchModule, "configuration %d not found", configurationID, err)
	}
	if err != nil {
		return 0, err
	}
	payloads, err := m.registry.JobConfigurations(batchType, cfg.ConfigurationData)
	if err != nil {
		return 0, exception.NewBatchErrorf(batchModule, "transformer '%s' failed on configuration %d", batchType, configurationID, err)
	}

	batch := &model.Batch{
		ConfigurationID: configurationID,
		StepID:          stepRunID,
		BatchType:       batchType,
		Status:          model.BatchStatusActive,
	}
	err = tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		if err := m.repo.SaveBatch(ctx, batch); err != nil {
			return err
		}
		if len(payloads) == 0 {
			return nil
		}
		jcs := make([]*model.JobConfiguration, 0, len(payloads))
		for _, p := range payloads {
			jcs = append(jcs, &model.JobConfiguration{
				BatchID:              batch.ID,
				ConfigurationID:      configurationID,
				JobConfigurationData: p,
				Status:               model.JobConfigurationStatusActive,
			})
		}
		return m.repo.SaveJobConfigurations(ctx, jcs)
	})
	if err != nil {
		m.tracer.RecordError(ctx, batchModule, err)
		return 0, err
	}

	m.recorder.RecordDuration(ctx, "create_batch", m.now().Sub(start), map[string]string{"batch_type": batchType})
	logger.Infof("Created batch %d of type '%s' with %d job configurations.", batch.ID, batchType, len(payloads))
	return batch.ID, nil
}

// SubmitBatch creates and submits one job per current job configuration without a current job.
// Configurations whose remote entity already exists get a job that is skipped right away, together
// with the configuration. The job rows are committed before anything is sent to the execution
// system, and every submitted job persists its workflow id on its own, so a later store failure
// never loses a remote submission. submitted_ts is stamped last. Submission failures leave their
// jobs INITIATED and are returned together after the others were recorded.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) SubmitBatch(ctx context.Context, batchID int64) (*SubmitReport, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.batch.submit", map[string]interface{}{"batch.id": batchID})
	defer end()
	start := m.now()

	report := &SubmitReport{BatchID: batchID}
	var remoteErrs *multierror.Error
	var batch *model.Batch
	var pending []int64
	var sent int

	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		// reset in case an outer transaction retries fn
		*report = SubmitReport{BatchID: batchID}
		remoteErrs, pending, sent = nil, nil, 0

		var err error
		if batch, err = m.loadBatch(ctx, batchID); err != nil {
			return err
		}
		jcs, err := m.repo.FindJobConfigurationsByBatchID(ctx, batchID, true)
		if err != nil {
			return err
		}
		if len(jcs) == 0 {
			return exception.NewBatchErrorf(batchModule, "batch %d has no job configurations", batchID)
		}

		for _, jc := range jcs {
			if jc.Skipped {
				continue
			}
			current, err := m.repo.FindCurrentJobsByJobConfigurationID(ctx, jc.ID)
			if err != nil {
				return err
			}
			if len(current) > 0 {
				report.Unchanged++
				for _, j := range current {
					if j.Status != model.JobStatusInitiated {
						sent++
					}
				}
				continue
			}

			exists, err := m.checker.Exists(ctx, batch.BatchType, jc.JobConfigurationData)
			if err != nil {
				remoteErrs = multierror.Append(remoteErrs, err)
				logger.Warnf("Batch %d: existence check of job configuration %d failed: %v", batchID, jc.ID, err)
				continue
			}

			jobID, err := m.jobs.CreateJob(ctx, jc.ID)
			if err != nil {
				return err
			}
			if exists {
				if err := m.jobs.SkipJob(ctx, jobID, SkipReasonEntityExists, true); err != nil {
					return err
				}
				report.Existing = append(report.Existing, jobID)
				continue
			}
			pending = append(pending, jobID)
		}
		return nil
	})
	if err != nil {
		m.tracer.RecordError(ctx, batchModule, err)
		return nil, err
	}

	for _, jobID := range pending {
		if err := m.submit(ctx, jobID, report, &remoteErrs); err != nil {
			m.tracer.RecordError(ctx, batchModule, err)
			return report, err
		}
	}

	// a retry after a failed stamp finds its jobs already submitted
	if len(report.Submitted) > 0 || (sent > 0 && batch.SubmittedTS == nil) {
		if err := m.repo.MarkBatchSubmitted(ctx, batchID, m.now()); err != nil {
			m.tracer.RecordError(ctx, batchModule, err)
			return report, err
		}
	}

	m.recorder.RecordDuration(ctx, "submit_batch", m.now().Sub(start), map[string]string{"batch_type": batch.BatchType})
	logger.Infof("Batch %d submitted: %d submitted, %d existing, %d failed, %d unchanged.",
		batchID, len(report.Submitted), len(report.Existing), len(report.Failed), report.Unchanged)
	return report, remoteErrs.ErrorOrNil()
}

// SubmitPendingJobs submits the INITIATED jobs of a batch, such as resubmission replacements,
// and reopens the batch when it was terminal. Each job persists its workflow id on its own
// before the batch row is touched. A terminal batch with jobs already in flight is reopened
// even when nothing is left to submit, so an earlier call that failed on the batch row heals.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) SubmitPendingJobs(ctx context.Context, batchID int64) (*SubmitReport, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.batch.submit_pending", map[string]interface{}{"batch.id": batchID})
	defer end()

	report := &SubmitReport{BatchID: batchID}
	var remoteErrs *multierror.Error

	batch, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	jobs, err := m.repo.FindJobsByBatchID(ctx, batchID, false)
	if err != nil {
		return nil, err
	}
	inFlight := 0
	for _, job := range jobs {
		if job.Status != model.JobStatusInitiated {
			report.Unchanged++
			if job.Status.IsInFlight() {
				inFlight++
			}
			continue
		}
		if err := m.submit(ctx, job.ID, report, &remoteErrs); err != nil {
			m.tracer.RecordError(ctx, batchModule, err)
			return report, err
		}
	}

	stamp := len(report.Submitted) > 0 || (inFlight > 0 && batch.SubmittedTS == nil)
	reopen := batch.Status.IsTerminal() && len(report.Submitted)+inFlight > 0
	if !stamp && !reopen {
		return report, remoteErrs.ErrorOrNil()
	}

	err = tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		if stamp {
			if err := m.repo.MarkBatchSubmitted(ctx, batchID, m.now()); err != nil {
				return err
			}
		}
		if reopen {
			if _, err := m.repo.UpdateBatchStatus(ctx, batchID, model.BatchStatusActive, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		m.tracer.RecordError(ctx, batchModule, err)
		return report, err
	}
	if reopen {
		m.recorder.RecordBatchTransition(ctx, batch.BatchType, batch.Status, model.BatchStatusActive)
		logger.Infof("Batch %d reopened: %s -> %s", batchID, batch.Status, model.BatchStatusActive)
	}
	return report, remoteErrs.ErrorOrNil()
}

// submit submits one job, collecting execution-system failures in remoteErrs.
// Only store failures are returned.
func (m *BatchManager) submit(ctx context.Context, jobID int64, report *SubmitReport, remoteErrs **multierror.Error) error {
	if _, err := m.jobs.SubmitJob(ctx, jobID); err != nil {
		if exception.IsDatabaseError(err) || exception.IsJobError(err) {
			return err
		}
		*remoteErrs = multierror.Append(*remoteErrs, exception.NewJobErrorf(jobModule, "submission of job %d failed", jobID, err))
		report.Failed = append(report.Failed, jobID)
		return nil
	}
	report.Submitted = append(report.Submitted, jobID)
	return nil
}

// GetBatchJobs returns the jobs of a batch.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) GetBatchJobs(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.Job, error) {
	return m.repo.FindJobsByBatchID(ctx, batchID, includeSkipped)
}

// GetBatchJobConfigurations returns the job configurations of a batch.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) GetBatchJobConfigurations(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.JobConfiguration, error) {
	return m.repo.FindJobConfigurationsByBatchID(ctx, batchID, includeSkipped)
}

// UpdateBatchStatus writes a batch status directly, stamping completed_ts on the first terminal status.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) UpdateBatchStatus(ctx context.Context, batchID int64, status model.BatchStatus) error {
	if !status.IsValid() {
		return exception.NewBatchErrorf(batchModule, "invalid batch status '%s'", status)
	}
	var completedAt *time.Time
	if status.IsTerminal() {
		now := m.now()
		completedAt = &now
	}
	affected, err := m.repo.UpdateBatchStatus(ctx, batchID, status, completedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		return exception.NewBatchErrorf(batchModule, "batch %d not found", batchID, repository.ErrBatchNotFound)
	}
	return nil
}

// ReconBatch reads the current jobs, aggregates their statuses with model.AggregateBatchStatus
// and writes the result only when it differs from the stored status. While any job is in flight
// the stored status is returned unchanged. The Notifier is told about
// changes into a terminal status after the write committed; its errors are logged.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) ReconBatch(ctx context.Context, batchID int64) (model.BatchStatus, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.batch.recon", map[string]interface{}{"batch.id": batchID})
	defer end()

	var batch *model.Batch
	var derived model.BatchStatus
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		var err error
		if batch, err = m.loadBatch(ctx, batchID); err != nil {
			return err
		}
		jobs, err := m.repo.FindJobsByBatchID(ctx, batchID, false)
		if err != nil {
			return err
		}
		statuses := make([]model.JobStatus, 0, len(jobs))
		for _, j := range jobs {
			statuses = append(statuses, j.Status)
		}
		derived = model.AggregateBatchStatus(statuses)
		// jobs still in flight defer the decision; a terminal batch is reopened only by submission
		if derived == model.BatchStatusActive {
			derived = batch.Status
		}
		if derived == batch.Status {
			return nil
		}
		return m.UpdateBatchStatus(ctx, batchID, derived)
	})
	if err != nil {
		m.tracer.RecordError(ctx, batchModule, err)
		return "", err
	}
	if derived == batch.Status {
		logger.Debugf("Batch %d unchanged: %s", batchID, derived)
		return derived, nil
	}

	m.recorder.RecordBatchTransition(ctx, batch.BatchType, batch.Status, derived)
	logger.Infof("Batch %d (%s): %s -> %s", batchID, batch.BatchType, batch.Status, derived)
	if derived.IsTerminal() {
		m.notify(ctx, batchID)
	}
	return derived, nil
}

func (m *BatchManager) notify(ctx context.Context, batchID int64) {
	summary, err := m.GetBatchSummary(ctx, batchID)
	if err == nil {
		err = m.notifier.NotifyBatchFinished(ctx, summary)
	}
	if err != nil {
		logger.Warnf("Notification for batch %d failed: %v", batchID, err)
	}
}

// GetBatchSummary counts the jobs and job configurations of a batch.
// This is an implementation of the BatchOperator interface.
func (m *BatchManager) GetBatchSummary(ctx context.Context, batchID int64) (*model.BatchSummary, error) {
	batch, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	jobs, err := m.repo.FindJobsByBatchID(ctx, batchID, true)
	if err != nil {
		return nil, err
	}
	jcs, err := m.repo.FindJobConfigurationsByBatchID(ctx, batchID, true)
	if err != nil {
		return nil, err
	}

	summary := &model.BatchSummary{
		BatchID:      batch.ID,
		BatchType:    batch.BatchType,
		Status:       batch.Status,
		JobsByStatus: make(map[model.JobStatus]int),
	}
	for _, j := range jobs {
		summary.TotalJobs++
		if j.Skipped {
			summary.SkippedJobs++
			continue
		}
		summary.JobsByStatus[j.Status]++
	}
	for _, jc := range jcs {
		summary.TotalConfigurations++
		if jc.Skipped {
			summary.SkippedConfigurations++
		}
		if jc.Overridden {
			summary.OverriddenConfigurations++
		}
	}
	return summary, nil
}

func (m *BatchManager) loadBatch(ctx context.Context, batchID int64) (*model.Batch, error) {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if errors.Is(err, repository.ErrBatchNotFound) {
		return nil, exception.NewBatchErrorf(batchModule, "batch %d not found", batchID, err)
	}
	return batch, err
}
