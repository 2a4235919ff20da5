package sql

import (
	"context"
	"fmt"
	"strings"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// --- Job implementation ---

func (r *SQLWorkflowRepository) SaveJob(ctx context.Context, job *model.Job) error {
	now := r.now()
	if job.CreatedTS.IsZero() {
		job.CreatedTS = now
	}
	job.UpdatedTS = now
	if job.Status == "" {
		job.Status = model.JobStatusInitiated
	}
	id, err := r.insert(ctx, tableJob, fromDomainJob(job))
	if err != nil {
		return err
	}
	job.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindJobByID(ctx context.Context, id int64) (*model.Job, error) {
	entity, _, err := findByID[JobEntity](ctx, r, tableJob, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrJobNotFound
	}
	return toDomainJob(entity), nil
}

func (r *SQLWorkflowRepository) FindJobsByBatchID(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.Job, error) {
	if includeSkipped {
		return r.findJobs(ctx, "batch_id = ?", batchID)
	}
	return r.findJobs(ctx, "batch_id = ? AND skipped = ?", batchID, false)
}

func (r *SQLWorkflowRepository) FindCurrentJobsByJobConfigurationID(ctx context.Context, jobConfigurationID int64) ([]*model.Job, error) {
	return r.findJobs(ctx, "job_configuration_id = ? AND skipped = ?", jobConfigurationID, false)
}

func (r *SQLWorkflowRepository) findJobs(ctx context.Context, where string, args ...interface{}) ([]*model.Job, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	var entities []JobEntity
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY id", executor.Qualify(tableJob), where)
	if err := executor.ExecuteQuery(ctx, &entities, query, args...); err != nil {
		return nil, r.storeError(executor, err, "failed to list jobs (%s)", where)
	}
	result := make([]*model.Job, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainJob(&entities[i]))
	}
	return result, nil
}

func (r *SQLWorkflowRepository) UpdateJobStatus(ctx context.Context, update repository.JobStatusUpdate) (int64, error) {
	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	sets := []string{"status = ?", "updated_ts = ?"}
	args := []interface{}{update.Status, updatedAt}
	if update.WorkflowID != nil {
		sets = append(sets, "workflow_id = ?")
		args = append(args, nullableString(*update.WorkflowID))
	}
	if update.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, nullableString(*update.ErrorMessage))
	}
	if update.ProgressPct != nil {
		sets = append(sets, "progress_pct = ?")
		args = append(args, *update.ProgressPct)
	}
	if update.SubmittedAt != nil {
		sets = append(sets, "submitted_ts = COALESCE(submitted_ts, ?)")
		args = append(args, *update.SubmittedAt)
	}
	if update.CompletedAt != nil {
		sets = append(sets, "completed_ts = COALESCE(completed_ts, ?)")
		args = append(args, *update.CompletedAt)
	}
	args = append(args, update.JobID)

	return r.command(ctx, tableJob, "UPDATE %s SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
}

func (r *SQLWorkflowRepository) SkipJob(ctx context.Context, id int64, reason string) (int64, error) {
	return r.command(ctx, tableJob,
		"UPDATE %s SET skipped = ?, skipped_reason_txt = ?, updated_ts = ? WHERE id = ? AND skipped = ?",
		true, nullableString(reason), r.now(), id, false)
}
