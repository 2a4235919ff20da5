// Package sqlite provides a GORM DBProvider implementation for SQLite databases.
package sqlite

import (
	"errors"
	"strings"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	dbconfig "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/config"
	gormadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// init registers the SQLite dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// SQLiteDBProvider implements database.DBProvider for SQLite connections.
type SQLiteDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN for SQLite connections.
// Foreign keys are enforced and writers wait on a locked database instead of failing.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	if strings.Contains(c.Database, "?") {
		return c.Database
	}
	return c.Database + "?_foreign_keys=1&_busy_timeout=5000"
}

// NewProvider creates a new database.DBProvider for SQLite.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &SQLiteDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "sqlite")}
}
