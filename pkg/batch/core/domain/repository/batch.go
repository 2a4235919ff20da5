package repository

import (
	"context"
	"errors"
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// ErrBatchNotFound is returned when a batch is not found.
var ErrBatchNotFound = errors.New("batch not found")

// BatchRepository persists batches.
type BatchRepository interface {
	// SaveBatch inserts a new batch and sets its ID.
	SaveBatch(ctx context.Context, batch *model.Batch) error
	FindBatchByID(ctx context.Context, id int64) (*model.Batch, error)
	// FindBatchesByCycleAndStatus lists the batches of a cycle in the given status, oldest first.
	FindBatchesByCycleAndStatus(ctx context.Context, cycleID int64, status model.BatchStatus) ([]*model.Batch, error)
	// UpdateBatchStatus writes status and stamps completed_ts once, when completedAt is non-nil
	// and no completion time is stored yet.
	UpdateBatchStatus(ctx context.Context, id int64, status model.BatchStatus, completedAt *time.Time) (int64, error)
	// MarkBatchSubmitted stamps submitted_ts unless it is already set.
	MarkBatchSubmitted(ctx context.Context, id int64, at time.Time) error
	// FindBatchContext loads the step, stage and cycle the batch belongs to.
	FindBatchContext(ctx context.Context, id int64) (*model.BatchContext, error)
}
