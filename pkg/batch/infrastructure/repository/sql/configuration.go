package sql

import (
	"context"
	"fmt"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// --- Configuration implementation ---

func (r *SQLWorkflowRepository) SaveConfiguration(ctx context.Context, cfg *model.Configuration) error {
	now := r.now()
	if cfg.CreatedTS.IsZero() {
		cfg.CreatedTS = now
	}
	cfg.UpdatedTS = now
	if cfg.ConfigurationData == nil {
		cfg.ConfigurationData = model.Payload{}
	}
	id, err := r.insert(ctx, tableConfiguration, fromDomainConfiguration(cfg))
	if err != nil {
		return err
	}
	cfg.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindConfigurationByID(ctx context.Context, id int64) (*model.Configuration, error) {
	entity, _, err := findByID[ConfigurationEntity](ctx, r, tableConfiguration, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrConfigurationNotFound
	}
	return toDomainConfiguration(entity), nil
}

func (r *SQLWorkflowRepository) FindConfigurationsByCycleID(ctx context.Context, cycleID int64) ([]*model.Configuration, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	var entities []ConfigurationEntity
	query := fmt.Sprintf("SELECT * FROM %s WHERE cycle_id = ? ORDER BY id", executor.Qualify(tableConfiguration))
	if err := executor.ExecuteQuery(ctx, &entities, query, cycleID); err != nil {
		return nil, r.storeError(executor, err, "failed to list configurations of cycle %d", cycleID)
	}
	result := make([]*model.Configuration, 0, len(entities))
	for i := range entities {
		result = append(result, toDomainConfiguration(&entities[i]))
	}
	return result, nil
}
