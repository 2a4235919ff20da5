// Package database defines the relational store ports used by the workflow repository.
package database

import (
	"context"
	"database/sql"

	dbconfig "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/config"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
)

// DBConnection represents a connection to a relational store whose schema (namespace) is fixed
// when the connection is created. It executes statements outside of any transaction.
type DBConnection interface {
	tx.TxExecutor

	// Close closes the connection.
	Close() error
	// Type returns the database type (e.g., "postgres", "sqlite").
	Type() string
	// Name returns the connection name (e.g., "irp").
	Name() string
	// Schema returns the namespace applied by Qualify.
	Schema() string
	// RefreshConnection checks the connection and re-establishes it if necessary.
	RefreshConnection(ctx context.Context) error
	// Config returns the database configuration associated with this connection.
	Config() dbconfig.DatabaseConfig
	// GetSQLDB returns the underlying *sql.DB connection.
	GetSQLDB() (*sql.DB, error)
}

// DBConnectionResolver resolves a named connection, re-establishing it when it is no longer valid.
type DBConnectionResolver interface {
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProvider is responsible for providing database connections of one type based on configuration.
type DBProvider interface {
	// GetConnection retrieves a database connection with the specified name.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the database type handled by this provider.
	Type() string
	// ForceReconnect closes and re-establishes the named connection.
	ForceReconnect(name string) (DBConnection, error)
}

// DBProviderGroup is the Fx group name for all DBProvider implementations.
const DBProviderGroup = "db_providers"
