package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

const jobModule = "JobManager"

// StatusOption sets optional fields of a job status write.
type StatusOption func(*statusOptions)

type statusOptions struct {
	workflowID   *string
	errorMessage *string
	progressPct  *float64
}

// WithWorkflowID records the external workflow id along with the status.
func WithWorkflowID(id string) StatusOption {
	return func(o *statusOptions) { o.workflowID = &id }
}

// WithErrorMessage records the error description reported for the job.
func WithErrorMessage(msg string) StatusOption {
	return func(o *statusOptions) { o.errorMessage = &msg }
}

// WithProgress records the completion percentage reported for the job.
func WithProgress(pct float64) StatusOption {
	return func(o *statusOptions) { o.progressPct = &pct }
}

// JobManager is the default JobOperator.
type JobManager struct {
	repo      repository.WorkflowRepository
	txManager tx.TransactionManager
	client    port.RiskModelingClient
	recorder  metrics.MetricRecorder
	tracer    metrics.Tracer
	now       func() time.Time
}

var _ JobOperator = (*JobManager)(nil)

// NewJobManager creates a new instance of JobManager.
func NewJobManager(
	repo repository.WorkflowRepository,
	txManager tx.TransactionManager,
	client port.RiskModelingClient,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *JobManager {
	return &JobManager{
		repo:      repo,
		txManager: txManager,
		client:    client,
		recorder:  recorder,
		tracer:    tracer,
		now:       time.Now,
	}
}

// CreateJob stores an INITIATED job for a job configuration that is not skipped.
// This is an implementation of the JobOperator interface.
func (m *JobManager) CreateJob(ctx context.Context, jobConfigurationID int64) (int64, error) {
	jc, err := m.loadJobConfiguration(ctx, jobConfigurationID)
	if err != nil {
		return 0, err
	}
	if jc.Skipped {
		return 0, exception.NewJobErrorf(jobModule, "job configuration %d is skipped (%s)", jc.ID, jc.SkippedReasonTxt)
	}

	job := &model.Job{
		BatchID:            jc.BatchID,
		JobConfigurationID: jc.ID,
		Status:             model.JobStatusInitiated,
	}
	if err := m.repo.SaveJob(ctx, job); err != nil {
		return 0, err
	}
	logger.Debugf("Created job %d for job configuration %d.", job.ID, jc.ID)
	return job.ID, nil
}

// CreateJobWithConfig stores a job configuration and its INITIATED job in one transaction.
// This is an implementation of the JobOperator interface.
func (m *JobManager) CreateJobWithConfig(ctx context.Context, batchID, configurationID int64, payload model.Payload) (int64, int64, error) {
	var jcID, jobID int64
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		jc := &model.JobConfiguration{
			BatchID:              batchID,
			ConfigurationID:      configurationID,
			JobConfigurationData: payload,
			Status:               model.JobConfigurationStatusActive,
		}
		if err := m.repo.SaveJobConfiguration(ctx, jc); err != nil {
			return err
		}
		job := &model.Job{
			BatchID:            batchID,
			JobConfigurationID: jc.ID,
			Status:             model.JobStatusInitiated,
		}
		if err := m.repo.SaveJob(ctx, job); err != nil {
			return err
		}
		jcID, jobID = jc.ID, job.ID
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	logger.Debugf("Created job configuration %d and job %d in batch %d.", jcID, jobID, batchID)
	return jcID, jobID, nil
}

// SubmitJob sends an INITIATED job to the execution system and records its workflow id.
// This is an implementation of the JobOperator interface.
func (m *JobManager) SubmitJob(ctx context.Context, jobID int64) (string, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.job.submit", map[string]interface{}{"job.id": jobID})
	defer end()

	job, err := m.loadJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Skipped {
		return "", exception.NewJobErrorf(jobModule, "job %d is skipped and cannot be submitted", jobID)
	}
	if job.Status != model.JobStatusInitiated {
		return "", exception.NewJobErrorf(jobModule, "job %d is %s, only INITIATED jobs can be submitted", jobID, job.Status)
	}
	jc, err := m.loadJobConfiguration(ctx, job.JobConfigurationID)
	if err != nil {
		return "", err
	}
	batchType, err := m.batchType(ctx, job.BatchID)
	if err != nil {
		return "", err
	}

	workflowID, err := m.client.Submit(ctx, port.Submission{
		JobID:     job.ID,
		BatchID:   job.BatchID,
		BatchType: batchType,
		Payload:   jc.JobConfigurationData,
	})
	m.recorder.RecordJobSubmission(ctx, batchType, err)
	if err != nil {
		m.tracer.RecordError(ctx, jobModule, err)
		logger.Warnf("Submission of job %d failed, job stays %s: %v", jobID, model.JobStatusInitiated, err)
		return "", err
	}

	if err := m.UpdateJobStatus(ctx, jobID, model.JobStatusSubmitted, WithWorkflowID(workflowID)); err != nil {
		return "", err
	}
	logger.Infof("Job %d submitted as workflow %s.", jobID, workflowID)
	return workflowID, nil
}

// TrackJobStatus polls the workflow of a submitted job and stores the mapped status.
// This is an implementation of the JobOperator interface.
func (m *JobManager) TrackJobStatus(ctx context.Context, jobID int64) (model.JobStatus, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.job.track", map[string]interface{}{"job.id": jobID})
	defer end()

	job, err := m.loadJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !job.HasWorkflow() {
		return "", exception.NewJobErrorf(jobModule, "job %d has no workflow id, submit it first", jobID)
	}
	if job.Status.IsTerminal() {
		return job.Status, nil
	}

	state, err := m.client.Poll(ctx, job.WorkflowID)
	if err != nil {
		m.tracer.RecordError(ctx, jobModule, err)
		return "", err
	}
	status, err := MapWorkflowStatus(state.Status)
	if err != nil {
		return "", err
	}

	opts := []StatusOption{WithProgress(state.ProgressPct)}
	if state.Message != "" {
		opts = append(opts, WithErrorMessage(state.Message))
	}
	if err := m.UpdateJobStatus(ctx, jobID, status, opts...); err != nil {
		return "", err
	}
	if status != job.Status {
		logger.Infof("Job %d (workflow %s): %s -> %s", jobID, job.WorkflowID, job.Status, status)
	}
	return status, nil
}

// MapWorkflowStatus maps a status reported by the execution system to a job status.
func MapWorkflowStatus(workflowStatus string) (model.JobStatus, error) {
	switch workflowStatus {
	case port.WorkflowStatusFinished:
		return model.JobStatusFinished, nil
	case port.WorkflowStatusFailed:
		return model.JobStatusFailed, nil
	case port.WorkflowStatusCancelled:
		return model.JobStatusCancelled, nil
	case port.WorkflowStatusQueued, port.WorkflowStatusPending:
		return model.JobStatusQueued, nil
	case port.WorkflowStatusRunning, port.WorkflowStatusCancelRequested, port.WorkflowStatusCancelling:
		return model.JobStatusRunning, nil
	default:
		return "", exception.NewJobErrorf(jobModule, "unknown workflow status '%s'", workflowStatus)
	}
}

// UpdateJobStatus writes a job status, stamping submitted_ts and completed_ts on first entry.
// This is an implementation of the JobOperator interface.
func (m *JobManager) UpdateJobStatus(ctx context.Context, jobID int64, status model.JobStatus, opts ...StatusOption) error {
	if !status.IsValid() {
		return exception.NewJobErrorf(jobModule, "invalid job status '%s'", status)
	}
	var o statusOptions
	for _, opt := range opts {
		opt(&o)
	}

	job, err := m.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	now := m.now()
	update := repository.JobStatusUpdate{
		JobID:        jobID,
		Status:       status,
		WorkflowID:   o.workflowID,
		ErrorMessage: o.errorMessage,
		ProgressPct:  o.progressPct,
		UpdatedAt:    now,
	}
	hasWorkflow := job.HasWorkflow() || (o.workflowID != nil && *o.workflowID != "")
	if status.IsInFlight() || (status.IsTerminal() && hasWorkflow) {
		update.SubmittedAt = &now
	}
	if status.IsTerminal() {
		update.CompletedAt = &now
	}

	if _, err := m.repo.UpdateJobStatus(ctx, update); err != nil {
		return err
	}
	if status != job.Status {
		batchType, err := m.batchType(ctx, job.BatchID)
		if err != nil {
			return err
		}
		m.recorder.RecordJobStatus(ctx, batchType, status)
	}
	return nil
}

// ResubmitJob replaces a job that is not in flight. The original job, and the original job
// configuration when override is non-nil, are skipped with conditional updates guarded by
// skipped = false, so of two concurrent resubmissions of the same job only one commits.
// This is an implementation of the JobOperator interface.
func (m *JobManager) ResubmitJob(ctx context.Context, jobID int64, override model.Payload, reason string) (int64, error) {
	ctx, end := m.tracer.StartSpan(ctx, "irp.job.resubmit", map[string]interface{}{"job.id": jobID, "override": override != nil})
	defer end()

	var newJobID int64
	var batchType string
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		job, err := m.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Skipped {
			return exception.NewJobErrorf(jobModule, "job %d was already replaced or skipped", jobID)
		}
		if job.Status.IsInFlight() {
			return exception.NewJobErrorf(jobModule, "job %d is %s and cannot be resubmitted", jobID, job.Status)
		}
		jc, err := m.loadJobConfiguration(ctx, job.JobConfigurationID)
		if err != nil {
			return err
		}
		if jc.Skipped {
			return exception.NewJobErrorf(jobModule, "job configuration %d of job %d is skipped and cannot be resubmitted", jc.ID, jobID)
		}
		if batchType, err = m.batchType(ctx, job.BatchID); err != nil {
			return err
		}

		skipReason := "Resubmitted"
		if reason != "" {
			skipReason = fmt.Sprintf("Resubmitted: %s", reason)
		}
		if err := m.expectOneRow(m.repo.SkipJob(ctx, job.ID, skipReason)); err != nil {
			return conflictError(err, "job %d was modified concurrently", jobID)
		}

		jobConfigurationID := jc.ID
		if override != nil {
			replacement := &model.JobConfiguration{
				BatchID:                  jc.BatchID,
				ConfigurationID:          jc.ConfigurationID,
				JobConfigurationData:     override,
				Status:                   model.JobConfigurationStatusOverridden,
				Overridden:               true,
				OverrideReasonTxt:        reason,
				ParentJobConfigurationID: model.Int64Ptr(jc.ID),
			}
			if err := m.repo.SaveJobConfiguration(ctx, replacement); err != nil {
				return err
			}
			if err := m.expectOneRow(m.repo.SupersedeJobConfiguration(ctx, jc.ID, replacement.ID, skipReason)); err != nil {
				return conflictError(err, "job configuration %d was modified concurrently", jc.ID)
			}
			jobConfigurationID = replacement.ID
		}

		newJob := &model.Job{
			BatchID:            job.BatchID,
			JobConfigurationID: jobConfigurationID,
			Status:             model.JobStatusInitiated,
			ParentJobID:        model.Int64Ptr(job.ID),
			Overridden:         override != nil,
			OverrideReasonTxt:  reason,
		}
		if err := m.repo.SaveJob(ctx, newJob); err != nil {
			return err
		}
		newJobID = newJob.ID
		return nil
	})
	if err != nil {
		m.tracer.RecordError(ctx, jobModule, err)
		return 0, err
	}

	m.recorder.RecordJobResubmission(ctx, batchType, override != nil)
	logger.Infof("Job %d resubmitted as job %d (override: %t).", jobID, newJobID, override != nil)
	return newJobID, nil
}

// SkipJob marks a job skipped and, when skipConfiguration is set, its job configuration too.
// This is an implementation of the JobOperator interface.
func (m *JobManager) SkipJob(ctx context.Context, jobID int64, reason string, skipConfiguration bool) error {
	return tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		job, err := m.loadJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := m.expectOneRow(m.repo.SkipJob(ctx, jobID, reason)); err != nil {
			return conflictError(err, "job %d is already skipped", jobID)
		}
		if skipConfiguration {
			affected, err := m.repo.SkipJobConfiguration(ctx, job.JobConfigurationID, reason)
			if err != nil {
				return err
			}
			if affected == 0 {
				logger.Debugf("Job configuration %d of job %d was already skipped.", job.JobConfigurationID, jobID)
			}
		}
		logger.Infof("Skipped job %d: %s", jobID, reason)
		return nil
	})
}

// GetJobConfig returns the payload of the job configuration a job runs.
// This is an implementation of the JobOperator interface.
func (m *JobManager) GetJobConfig(ctx context.Context, jobID int64) (model.Payload, error) {
	job, err := m.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	jc, err := m.loadJobConfiguration(ctx, job.JobConfigurationID)
	if err != nil {
		return nil, err
	}
	return jc.JobConfigurationData.Clone()
}

func (m *JobManager) loadJob(ctx context.Context, jobID int64) (*model.Job, error) {
	job, err := m.repo.FindJobByID(ctx, jobID)
	if errors.Is(err, repository.ErrJobNotFound) {
		return nil, exception.NewJobErrorf(jobModule, "job %d not found", jobID, err)
	}
	return job, err
}

func (m *JobManager) loadJobConfiguration(ctx context.Context, id int64) (*model.JobConfiguration, error) {
	jc, err := m.repo.FindJobConfigurationByID(ctx, id)
	if errors.Is(err, repository.ErrJobConfigurationNotFound) {
		return nil, exception.NewJobErrorf(jobModule, "job configuration %d not found", id, err)
	}
	return jc, err
}

func (m *JobManager) batchType(ctx context.Context, batchID int64) (string, error) {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if errors.Is(err, repository.ErrBatchNotFound) {
		return "", exception.NewJobErrorf(jobModule, "batch %d not found", batchID, err)
	}
	if err != nil {
		return "", err
	}
	return batch.BatchType, nil
}

// expectOneRow turns a guarded update that matched nothing into ErrConcurrentModification.
func (m *JobManager) expectOneRow(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return exception.ErrConcurrentModification
	}
	return nil
}

// conflictError wraps ErrConcurrentModification in a JobError and passes store errors through.
func conflictError(err error, format string, args ...interface{}) error {
	if !exception.IsConcurrentModification(err) {
		return err
	}
	return exception.NewJobErrorf(jobModule, format, append(args, err)...)
}
