package migration

import (
	"context"

	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
)

// NewStoreMigrator provides the Migrator of the connection referenced by irp.store.connection_ref.
func NewStoreMigrator(resolver database.DBConnectionResolver, cfg *config.Config) *Migrator {
	return NewMigrator(resolver, cfg.IRP.Store.ConnectionRef, MigrationsFS())
}

func migrateOnStart(lc fx.Lifecycle, cfg *config.Config, m *Migrator) {
	if !cfg.IRP.Store.MigrateOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Up(ctx)
		},
	})
}

// Module provides the store migrator and applies pending migrations on start when configured.
var Module = fx.Options(
	fx.Provide(NewStoreMigrator),
	fx.Invoke(migrateOnStart),
)
