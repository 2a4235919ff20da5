package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	dbadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	gormadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm"
	sqliteprovider "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm/sqlite"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/migration"
	sqlrepo "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/repository/sql"
)

// StoreName is the connection name used by test stores.
const StoreName = "irp"

// Store is a migrated SQLite database with its repository and transaction manager.
type Store struct {
	Config    *config.Config
	Resolver  dbadapter.DBConnectionResolver
	Migrator  *migration.Migrator
	Repo      repository.WorkflowRepository
	TxManager tx.TransactionManager
}

// NewSQLiteConfig returns a configuration whose store is a SQLite file under dir.
func NewSQLiteConfig(dir string) *config.Config {
	cfg := config.NewConfig()
	cfg.IRP.Store.ConnectionRef = StoreName
	cfg.IRP.DatabaseConfigs[StoreName] = map[string]interface{}{
		"type":     "sqlite",
		"database": filepath.Join(dir, "irp.db"),
	}
	return cfg
}

// NewUnmigratedSQLiteStore opens a fresh SQLite store without applying migrations.
// Connections are closed when the test ends.
func NewUnmigratedSQLiteStore(t *testing.T) *Store {
	t.Helper()
	cfg := NewSQLiteConfig(t.TempDir())
	resolver := gormadapter.NewGormDBConnectionResolver(gormadapter.GormDBConnectionResolverParams{
		DBProviders: []dbadapter.DBProvider{sqliteprovider.NewProvider(cfg)},
		Cfg:         cfg,
	})
	t.Cleanup(func() { _ = resolver.CloseAll() })

	return &Store{
		Config:    cfg,
		Resolver:  resolver,
		Migrator:  migration.NewMigrator(resolver, StoreName, migration.MigrationsFS()),
		Repo:      sqlrepo.NewSQLWorkflowRepository(resolver, StoreName),
		TxManager: gormadapter.NewGormTransactionManagerFactory(resolver).NewTransactionManager(StoreName),
	}
}

// NewSQLiteStore opens a fresh SQLite store with every migration applied.
func NewSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s := NewUnmigratedSQLiteStore(t)
	require.NoError(t, s.Migrator.Up(context.Background()))
	return s
}
