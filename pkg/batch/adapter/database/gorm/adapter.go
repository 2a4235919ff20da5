package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	dbconfig "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/config"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// bulkInsertBatchSize bounds the number of rows sent in one INSERT statement by BulkInsert.
const bulkInsertBatchSize = 200

// NewGormLogger creates a gorm.Logger instance based on the configured log level.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch config.LogLevel(strings.ToUpper(level)) {
	case config.LogLevelError:
		gormLevel = gorm_logger.Error
	case config.LogLevelWarn:
		gormLevel = gorm_logger.Warn
	case config.LogLevelInfo, config.LogLevelDebug:
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements gorm_logger.Writer.
// Statement traces go to DEBUG, everything else (slow queries, connection warnings) to INFO.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if isStatementTrace(msg) {
		logger.Debugf("[GORM] %s", msg)
		return
	}
	logger.Infof("[GORM] %s", msg)
}

func isStatementTrace(msg string) bool {
	if !strings.Contains(msg, "[") || !strings.Contains(msg, "]") {
		return false
	}
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.Contains(msg, verb) {
			return true
		}
	}
	return false
}

// executor implements tx.TxExecutor over a *gorm.DB, which is either a plain session
// or an open transaction.
type executor struct {
	db     *gorm.DB
	schema string
}

// Qualify implements tx.TxExecutor.
func (e executor) Qualify(table string) string {
	if e.schema == "" {
		return table
	}
	return e.schema + "." + table
}

// ExecuteQuery implements tx.TxExecutor.
func (e executor) ExecuteQuery(ctx context.Context, target interface{}, query string, args ...interface{}) error {
	return e.db.WithContext(ctx).Raw(query, args...).Scan(target).Error
}

// ExecuteCommand implements tx.TxExecutor.
func (e executor) ExecuteCommand(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result := e.db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExecuteInsert implements tx.TxExecutor.
func (e executor) ExecuteInsert(ctx context.Context, table string, entity tx.Identifiable) (int64, error) {
	if err := e.db.WithContext(ctx).Table(e.Qualify(table)).Create(entity).Error; err != nil {
		return 0, err
	}
	return entity.PrimaryKey(), nil
}

// BulkInsert implements tx.TxExecutor.
// entities must be a slice whose elements are pointers implementing tx.Identifiable.
func (e executor) BulkInsert(ctx context.Context, table string, entities interface{}) ([]int64, error) {
	val := reflect.ValueOf(entities)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("bulk insert expects a slice, got %T", entities)
	}
	if val.Len() == 0 {
		return []int64{}, nil
	}

	if err := e.db.WithContext(ctx).Table(e.Qualify(table)).CreateInBatches(entities, bulkInsertBatchSize).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, val.Len())
	for i := 0; i < val.Len(); i++ {
		identifiable, ok := val.Index(i).Interface().(tx.Identifiable)
		if !ok {
			return nil, fmt.Errorf("bulk insert element %d (%s) does not implement tx.Identifiable", i, val.Index(i).Type())
		}
		ids[i] = identifiable.PrimaryKey()
	}
	return ids, nil
}

// IsTableNotExistError implements tx.TxExecutor.
func (e executor) IsTableNotExistError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return (strings.Contains(errMsg, "relation \"") && strings.Contains(errMsg, "\" does not exist")) || // PostgreSQL
		(strings.Contains(errMsg, "Error 1146") && strings.Contains(errMsg, "doesn't exist")) || // MySQL
		strings.Contains(errMsg, "no such table:") // SQLite
}

// GormDBAdapter implements database.DBConnection.
type GormDBAdapter struct {
	executor
	sqlDB  *sql.DB
	cfg    dbconfig.DatabaseConfig
	dbType string
	name   string
}

// NewGormDBAdapter creates a new GormDBAdapter. The schema of cfg is fixed for the adapter's lifetime.
func NewGormDBAdapter(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) (*GormDBAdapter, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	return &GormDBAdapter{
		executor: executor{
			db:     db.Session(&gorm.Session{SkipDefaultTransaction: true}),
			schema: cfg.Schema,
		},
		sqlDB:  sqlDB,
		cfg:    cfg,
		dbType: cfg.Type,
		name:   name,
	}, nil
}

// GetGormDB returns the underlying *gorm.DB instance.
// This method is intended for use within the gorm adapter package.
func (a *GormDBAdapter) GetGormDB() *gorm.DB {
	return a.db
}

func (a *GormDBAdapter) Close() error {
	if a.sqlDB != nil {
		logger.Infof("Closing database connection '%s'...", a.name)
		return a.sqlDB.Close()
	}
	return nil
}

func (a *GormDBAdapter) Type() string {
	return a.dbType
}

func (a *GormDBAdapter) Name() string {
	return a.name
}

// Schema implements database.DBConnection.
func (a *GormDBAdapter) Schema() string {
	return a.schema
}

// RefreshConnection implements database.DBConnection.
func (a *GormDBAdapter) RefreshConnection(ctx context.Context) error {
	if a.sqlDB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return a.sqlDB.PingContext(ctx)
}

// Config implements database.DBConnection.
func (a *GormDBAdapter) Config() dbconfig.DatabaseConfig {
	return a.cfg
}

// GetSQLDB implements database.DBConnection.
func (a *GormDBAdapter) GetSQLDB() (*sql.DB, error) {
	if a.sqlDB == nil {
		return nil, fmt.Errorf("underlying sql.DB is nil")
	}
	return a.sqlDB, nil
}
