package repository

import (
	"context"
	"errors"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// ErrJobConfigurationNotFound is returned when a job configuration is not found.
var ErrJobConfigurationNotFound = errors.New("job configuration not found")

// JobConfigurationRepository persists job configurations.
type JobConfigurationRepository interface {
	// SaveJobConfiguration inserts one job configuration and sets its ID.
	SaveJobConfiguration(ctx context.Context, jc *model.JobConfiguration) error
	// SaveJobConfigurations inserts many job configurations at once and sets their IDs.
	SaveJobConfigurations(ctx context.Context, jcs []*model.JobConfiguration) error
	FindJobConfigurationByID(ctx context.Context, id int64) (*model.JobConfiguration, error)
	// FindJobConfigurationsByBatchID lists job configurations by ID; skipped rows only when includeSkipped.
	FindJobConfigurationsByBatchID(ctx context.Context, batchID int64, includeSkipped bool) ([]*model.JobConfiguration, error)
	// SkipJobConfiguration marks a current configuration skipped. Rows already skipped are left
	// untouched and the returned count is zero.
	SkipJobConfiguration(ctx context.Context, id int64, reason string) (int64, error)
	// SupersedeJobConfiguration marks a current configuration skipped and points it at its replacement.
	// Rows already skipped are left untouched and the returned count is zero.
	SupersedeJobConfiguration(ctx context.Context, id int64, replacementID int64, reason string) (int64, error)
}
