// Package migration applies the embedded IRP schema to the configured store.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	gormadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// MigrationsTable tracks the applied schema version.
const MigrationsTable = "irp_schema_migrations"

const module = "migration"

// Migrator applies the migrations of one named connection.
type Migrator struct {
	resolver database.DBConnectionResolver
	dbName   string
	source   fs.FS
}

// NewMigrator creates a Migrator. source holds one directory of migration files per database type.
func NewMigrator(resolver database.DBConnectionResolver, dbName string, source fs.FS) *Migrator {
	return &Migrator{resolver: resolver, dbName: dbName, source: source}
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(mi *migrate.Migrate) error {
		return mi.Up()
	})
}

// Down rolls back every applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(mi *migrate.Migrate) error {
		return mi.Down()
	})
}

// Version reports the applied schema version. applied is false on an empty store.
func (m *Migrator) Version(ctx context.Context) (version uint, dirty bool, applied bool, err error) {
	err = m.run(ctx, "version", func(mi *migrate.Migrate) error {
		v, d, vErr := mi.Version()
		if errors.Is(vErr, migrate.ErrNilVersion) {
			return nil
		}
		if vErr != nil {
			return vErr
		}
		version, dirty, applied = v, d, true
		return nil
	})
	return version, dirty, applied, err
}

func (m *Migrator) run(ctx context.Context, command string, fn func(*migrate.Migrate) error) error {
	conn, err := m.resolver.ResolveDBConnection(ctx, m.dbName)
	if err != nil {
		return exception.NewDatabaseError(module, fmt.Sprintf("failed to resolve connection '%s'", m.dbName), err)
	}

	logger.Infof("Executing migration '%s' (connection: %s, type: %s, table: %s)", command, m.dbName, conn.Type(), MigrationsTable)

	sqlDB, owned, err := m.openDB(conn)
	if err != nil {
		return exception.NewDatabaseError(module, "failed to open migration connection", err)
	}

	if conn.Type() == "postgres" && conn.Schema() != "" {
		if _, err := sqlDB.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+conn.Schema()); err != nil {
			if owned {
				_ = sqlDB.Close()
			}
			return exception.NewDatabaseError(module, fmt.Sprintf("failed to create schema '%s'", conn.Schema()), err)
		}
	}

	sourceDriver, err := iofs.New(m.source, conn.Type())
	if err != nil {
		if owned {
			_ = sqlDB.Close()
		}
		return exception.NewDatabaseError(module, fmt.Sprintf("no migrations for database type '%s'", conn.Type()), err)
	}

	dbDriver, err := getDatabaseDriver(conn, sqlDB)
	if err != nil {
		_ = sourceDriver.Close()
		if owned {
			_ = sqlDB.Close()
		}
		return exception.NewDatabaseError(module, "failed to create database driver", err)
	}

	mi, err := migrate.NewWithInstance("iofs", sourceDriver, conn.Type(), dbDriver)
	if err != nil {
		_ = sourceDriver.Close()
		if owned {
			_ = sqlDB.Close()
		}
		return exception.NewDatabaseError(module, "failed to create migrate instance", err)
	}
	// Closing the migrate instance closes the *sql.DB it was given, so only a dedicated one is handed over.
	defer func() {
		if owned {
			_, _ = mi.Close()
		} else {
			_ = sourceDriver.Close()
		}
	}()

	if err := fn(mi); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return exception.NewDatabaseError(module, fmt.Sprintf("migration '%s' failed for '%s'", command, m.dbName), err)
	}

	logger.Infof("Migration '%s' completed for connection '%s'.", command, m.dbName)
	return nil
}

// openDB returns the *sql.DB migrations run on. SQLite shares the application's handle so
// in-memory stores see the schema; other stores get a dedicated pool that is closed afterwards.
func (m *Migrator) openDB(conn database.DBConnection) (*sql.DB, bool, error) {
	if conn.Type() == "sqlite" {
		sqlDB, err := conn.GetSQLDB()
		return sqlDB, false, err
	}
	dedicated, err := gormadapter.Open(conn.Config(), conn.Name()+"-migrate", string(config.LogLevelSilent))
	if err != nil {
		return nil, false, err
	}
	sqlDB, err := dedicated.GetSQLDB()
	return sqlDB, true, err
}

func getDatabaseDriver(conn database.DBConnection, sqlDB *sql.DB) (migratedb.Driver, error) {
	switch conn.Type() {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{
			MigrationsTable: MigrationsTable,
			SchemaName:      conn.Schema(),
		})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{
			MigrationsTable: MigrationsTable,
		})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{
			MigrationsTable: MigrationsTable,
		})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", conn.Type())
	}
}
