package repository

import (
	"context"
	"errors"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// ErrConfigurationNotFound is returned when a master configuration is not found.
var ErrConfigurationNotFound = errors.New("configuration not found")

// ConfigurationRepository persists uploaded master configurations.
type ConfigurationRepository interface {
	SaveConfiguration(ctx context.Context, cfg *model.Configuration) error
	FindConfigurationByID(ctx context.Context, id int64) (*model.Configuration, error)
	FindConfigurationsByCycleID(ctx context.Context, cycleID int64) ([]*model.Configuration, error)
}
