// Package mysql provides a GORM DBProvider implementation for MySQL databases.
package mysql

import (
	"fmt"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	dbconfig "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/config"
	gormadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// init registers the MySQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// MySQLDBProvider implements database.DBProvider for MySQL connections.
type MySQLDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN expected by gorm.io/driver/mysql, e.g.
// user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC&...
// clientFoundRows makes affected-row counts report matched rows, as the other dialects do.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	var authPart string
	if c.User != "" {
		authPart = c.User
		if c.Password != "" {
			authPart = fmt.Sprintf("%s:%s", c.User, c.Password)
		}
		authPart += "@"
	}
	return fmt.Sprintf("%stcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true&clientFoundRows=true",
		authPart, c.Host, c.Port, c.Database)
}

// NewProvider creates a new database.DBProvider for MySQL.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &MySQLDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "mysql")}
}
