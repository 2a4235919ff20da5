package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
)

// NewStoreTransactionManager provides the TransactionManager of the connection referenced by irp.store.connection_ref.
func NewStoreTransactionManager(factory *GormTransactionManagerFactory, cfg *config.Config) tx.TransactionManager {
	return factory.NewTransactionManager(cfg.IRP.Store.ConnectionRef)
}

func registerResolverLifecycle(lc fx.Lifecycle, resolver *GormDBConnectionResolver) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return resolver.CloseAll()
		},
	})
}

// Module exports the components of the gorm adapter package (excluding concrete DB providers).
var Module = fx.Options(
	fx.Provide(NewGormDBConnectionResolver),
	fx.Provide(func(r *GormDBConnectionResolver) database.DBConnectionResolver { return r }),
	fx.Provide(NewGormTransactionManagerFactory),
	fx.Provide(NewStoreTransactionManager),
	fx.Invoke(registerResolverLifecycle),
)
