package sql

import (
	"context"
	"fmt"
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// --- Batch implementation ---

func (r *SQLWorkflowRepository) SaveBatch(ctx context.Context, batch *model.Batch) error {
	now := r.now()
	if batch.CreatedTS.IsZero() {
		batch.CreatedTS = now
	}
	batch.UpdatedTS = now
	id, err := r.insert(ctx, tableBatch, fromDomainBatch(batch))
	if err != nil {
		return err
	}
	batch.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindBatchByID(ctx context.Context, id int64) (*model.Batch, error) {
	entity, _, err := findByID[BatchEntity](ctx, r, tableBatch, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrBatchNotFound
	}
	return toDomainBatch(entity), nil
}

func (r *SQLWorkflowRepository) FindBatchesByCycleAndStatus(ctx context.Context, cycleID int64, status model.BatchStatus) ([]*model.Batch, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT b.* FROM %s b
		JOIN %s sr ON sr.id = b.step_id
		JOIN %s s ON s.id = sr.step_id
		JOIN %s st ON st.id = s.stage_id
		WHERE st.cycle_id = ? AND b.status = ?
		ORDER BY b.created_ts, b.id`,
		executor.Qualify(tableBatch), executor.Qualify(tableStepRun), executor.Qualify(tableStep), executor.Qualify(tableStage))

	var entities []BatchEntity
	if err := executor.ExecuteQuery(ctx, &entities, query, cycleID, status); err != nil {
		return nil, r.storeError(executor, err, "failed to list %s batches of cycle %d", status, cycleID)
	}
	result := make([]*model.Batch, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainBatch(&entities[i]))
	}
	return result, nil
}

func (r *SQLWorkflowRepository) UpdateBatchStatus(ctx context.Context, id int64, status model.BatchStatus, completedAt *time.Time) (int64, error) {
	if completedAt == nil {
		return r.command(ctx, tableBatch,
			"UPDATE %s SET status = ?, updated_ts = ? WHERE id = ?",
			status, r.now(), id)
	}
	return r.command(ctx, tableBatch,
		"UPDATE %s SET status = ?, updated_ts = ?, completed_ts = COALESCE(completed_ts, ?) WHERE id = ?",
		status, r.now(), *completedAt, id)
}

func (r *SQLWorkflowRepository) MarkBatchSubmitted(ctx context.Context, id int64, at time.Time) error {
	affected, err := r.command(ctx, tableBatch,
		"UPDATE %s SET submitted_ts = COALESCE(submitted_ts, ?), updated_ts = ? WHERE id = ?",
		at, r.now(), id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrBatchNotFound
	}
	return nil
}

func (r *SQLWorkflowRepository) FindBatchContext(ctx context.Context, id int64) (*model.BatchContext, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT
			b.id AS batch_id, b.batch_type AS batch_type, b.status AS batch_status,
			sr.id AS step_run_id,
			s.id AS step_id, s.step_num AS step_num, s.step_name AS step_name,
			st.id AS stage_id, st.stage_num AS stage_num, st.stage_name AS stage_name,
			c.id AS cycle_id, c.cycle_name AS cycle_name, c.status AS cycle_status
		FROM %s b
		JOIN %s sr ON sr.id = b.step_id
		JOIN %s s ON s.id = sr.step_id
		JOIN %s st ON st.id = s.stage_id
		JOIN %s c ON c.id = st.cycle_id
		WHERE b.id = ?`,
		executor.Qualify(tableBatch), executor.Qualify(tableStepRun), executor.Qualify(tableStep),
		executor.Qualify(tableStage), executor.Qualify(tableCycle))

	row, err := queryOne[batchContextRow](ctx, executor, query, id)
	if err != nil {
		return nil, r.storeError(executor, err, "failed to load context of batch %d", id)
	}
	if row == nil {
		return nil, repository.ErrBatchNotFound
	}
	return toDomainBatchContext(row), nil
}
