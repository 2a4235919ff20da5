package sql

import (
	"context"
	"fmt"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// --- JobConfiguration implementation ---

func (r *SQLWorkflowRepository) prepareJobConfiguration(jc *model.JobConfiguration) {
	now := r.now()
	if jc.CreatedTS.IsZero() {
		jc.CreatedTS = now
	}
	jc.UpdatedTS = now
	if jc.Status == "" {
		jc.Status = model.JobConfigurationStatusActive
	}
	if jc.JobConfigurationData == nil {
		jc.JobConfigurationData = model.Payload{}
	}
}

func (r *SQLWorkflowRepository) SaveJobConfiguration(ctx context.Context, jc *model.JobConfiguration) error {
	r.prepareJobConfiguration(jc)
	id, err := r.insert(ctx, tableJobConfiguration, fromDomainJobConfiguration(jc))
	if err != nil {
		return err
	}
	jc.ID = id
	return nil
}

func (r *SQLWorkflowRepository) SaveJobConfigurations(ctx context.Context, jcs []*model.JobConfiguration) error {
	if len(jcs) == 0 {
		return nil
	}
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	entities := make([]*JobConfigurationEntity, len(jcs))
	for i, jc := range jcs {
		r.prepareJobConfiguration(jc)
		entities[i] = fromDomainJobConfiguration(jc)
	}

	ids, err := executor.BulkInsert(ctx, tableJobConfiguration, entities)
	if err != nil {
		return r.storeError(executor, err, "failed to insert %d job configurations", len(jcs))
	}
	for i, id := range ids {
		jcs[i].ID = id
	}
	return nil
}

func (r *SQLWorkflowRepository) FindJobConfigurationByID(ctx context.Context, id int64) (*model.JobConfiguration, error) {
	entity, _, err := findByID[JobConfigurationEntity](ctx, r, tableJobConfiguration, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrJobConfigurationNotFound
	}
	return toDomainJobConfiguration(entity), nil
}

func (r *SQLWorkflowRepository) FindJobConfigurationsByBatchID(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.JobConfiguration, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE batch_id = ?", executor.Qualify(tableJobConfiguration))
	args := []interface{}{batchID}
	if !includeSkipped {
		query += " AND skipped = ?"
		args = append(args, false)
	}
	query += " ORDER BY id"

	var entities []JobConfigurationEntity
	if err := executor.ExecuteQuery(ctx, &entities, query, args...); err != nil {
		return nil, r.storeError(executor, err, "failed to list job configurations of batch %d", batchID)
	}
	result := make([]*model.JobConfiguration, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainJobConfiguration(&entities[i]))
	}
	return result, nil
}

func (r *SQLWorkflowRepository) SkipJobConfiguration(ctx context.Context, id int64, reason string) (int64, error) {
	return r.command(ctx, tableJobConfiguration,
		"UPDATE %s SET skipped = ?, skipped_reason_txt = ?, status = ?, updated_ts = ? WHERE id = ? AND skipped = ?",
		true, nullableString(reason), model.JobConfigurationStatusSkipped, r.now(), id, false)
}

func (r *SQLWorkflowRepository) SupersedeJobConfiguration(ctx context.Context, id int64, replacementID int64, reason string) (int64, error) {
	return r.command(ctx, tableJobConfiguration,
		"UPDATE %s SET skipped = ?, skipped_reason_txt = ?, status = ?, override_job_configuration_id = ?, updated_ts = ? WHERE id = ? AND skipped = ?",
		true, nullableString(reason), model.JobConfigurationStatusSkipped, replacementID, r.now(), id, false)
}
