package sql

import (
	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// NewStoreWorkflowRepository provides the repository of the connection referenced by irp.store.connection_ref.
func NewStoreWorkflowRepository(resolver database.DBConnectionResolver, cfg *config.Config) repository.WorkflowRepository {
	return NewSQLWorkflowRepository(resolver, cfg.IRP.Store.ConnectionRef)
}

// Module provides the SQL-backed repository.WorkflowRepository.
var Module = fx.Options(
	fx.Provide(NewStoreWorkflowRepository),
)
