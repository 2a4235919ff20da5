package repository

import (
	"context"
	"errors"
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// ErrJobNotFound is returned when a job is not found.
var ErrJobNotFound = errors.New("job not found")

// JobStatusUpdate describes one status write. Nil timestamps leave the stored value unchanged;
// non-nil timestamps are only written when the stored value is still NULL.
type JobStatusUpdate struct {
	JobID        int64
	Status       model.JobStatus
	WorkflowID   *string
	ErrorMessage *string
	ProgressPct  *float64
	SubmittedAt  *time.Time
	CompletedAt  *time.Time
	UpdatedAt    time.Time
}

// JobRepository persists jobs.
type JobRepository interface {
	// SaveJob inserts a new job and sets its ID.
	SaveJob(ctx context.Context, job *model.Job) error
	FindJobByID(ctx context.Context, id int64) (*model.Job, error)
	// FindJobsByBatchID lists jobs by ID; skipped rows only when includeSkipped.
	FindJobsByBatchID(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.Job, error)
	// FindCurrentJobsByJobConfigurationID lists the non-skipped jobs of a job configuration.
	FindCurrentJobsByJobConfigurationID(ctx context.Context, jobConfigurationID int64) ([]*model.Job, error)
	// UpdateJobStatus applies a JobStatusUpdate and returns the number of affected rows.
	UpdateJobStatus(ctx context.Context, update JobStatusUpdate) (int64, error)
	// SkipJob marks a current job skipped. Rows already skipped are left untouched and the returned count is zero.
	SkipJob(ctx context.Context, id int64, reason string) (int64, error)
}
