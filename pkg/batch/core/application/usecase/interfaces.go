package usecase

import (
	"context"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// JobOperator creates, submits, tracks and resubmits individual jobs.
type JobOperator interface {
	// CreateJob inserts an INITIATED job for a current job configuration.
	CreateJob(ctx context.Context, jobConfigurationID int64) (int64, error)

	// CreateJobWithConfig inserts a job configuration and its job in one transaction.
	CreateJobWithConfig(ctx context.Context, batchID, configurationID int64, payload model.Payload) (jobConfigurationID, jobID int64, err error)

	// SubmitJob hands an INITIATED job to the execution system and records its workflow id.
	// On failure the job stays INITIATED and the client error is returned as is.
	SubmitJob(ctx context.Context, jobID int64) (string, error)

	// TrackJobStatus polls the execution system and stores the mapped status.
	TrackJobStatus(ctx context.Context, jobID int64) (model.JobStatus, error)

	// UpdateJobStatus writes status directly, stamping submitted_ts and completed_ts once.
	UpdateJobStatus(ctx context.Context, jobID int64, status model.JobStatus, opts ...StatusOption) error

	// ResubmitJob creates a new INITIATED job replacing jobID. A non-nil override becomes a new
	// job configuration superseding the original one. The new job is not submitted.
	ResubmitJob(ctx context.Context, jobID int64, override model.Payload, reason string) (int64, error)

	// SkipJob marks a job skipped and, when skipConfiguration is set, its job configuration too.
	SkipJob(ctx context.Context, jobID int64, reason string, skipConfiguration bool) error

	// GetJobConfig returns a copy of the payload the job was created from.
	GetJobConfig(ctx context.Context, jobID int64) (model.Payload, error)
}

// BatchOperator creates, submits and reconciles batches.
type BatchOperator interface {
	// CreateBatch runs the batch type's transformer over a configuration and stores the batch
	// with one job configuration per transformer output.
	CreateBatch(ctx context.Context, configurationID, stepRunID int64, batchType string) (int64, error)

	// SubmitBatch creates and submits a job for every current job configuration that has none.
	// It is safe to call again on a partially submitted batch.
	SubmitBatch(ctx context.Context, batchID int64) (*SubmitReport, error)

	// SubmitPendingJobs submits the current INITIATED jobs of a batch.
	SubmitPendingJobs(ctx context.Context, batchID int64) (*SubmitReport, error)

	GetBatchJobs(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.Job, error)
	GetBatchJobConfigurations(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.JobConfiguration, error)

	// UpdateBatchStatus writes status directly, stamping completed_ts on the first terminal status.
	UpdateBatchStatus(ctx context.Context, batchID int64, status model.BatchStatus) error

	// ReconBatch derives the batch status from its current jobs and stores it when it changed.
	// It never reopens a terminal batch; SubmitPendingJobs does.
	ReconBatch(ctx context.Context, batchID int64) (model.BatchStatus, error)

	GetBatchSummary(ctx context.Context, batchID int64) (*model.BatchSummary, error)
}

// SubmitReport lists what one SubmitBatch or SubmitPendingJobs call did, by job id.
type SubmitReport struct {
	BatchID int64
	// Submitted jobs were accepted by the execution system.
	Submitted []int64
	// Existing jobs were created skipped because their remote entity already exists.
	Existing []int64
	// Failed jobs stay INITIATED; see the returned error for the causes.
	Failed []int64
	// Unchanged counts job configurations that already had a current job.
	Unchanged int
}

// NextStepResolver decides which notebook, if any, follows a finished batch.
type NextStepResolver interface {
	GetNextStepInfo(ctx context.Context, batchID int64) (*model.NextStep, error)
}
