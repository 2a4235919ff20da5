package gorm

import (
	"fmt"
	"sync"
	"time"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	dbconfig "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/config"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/configbinder"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// DecodeDatabaseConfig decodes the raw irp.database.<name> block into a DatabaseConfig.
func DecodeDatabaseConfig(cfg *config.Config, name string) (dbconfig.DatabaseConfig, error) {
	var dbConfig dbconfig.DatabaseConfig
	rawConfig, ok := cfg.IRP.DatabaseConfigs[name]
	if !ok {
		return dbConfig, fmt.Errorf("database configuration '%s' not found under irp.database", name)
	}
	props, ok := rawConfig.(map[string]interface{})
	if !ok {
		return dbConfig, fmt.Errorf("database configuration '%s' has unexpected format %T", name, rawConfig)
	}
	if err := configbinder.BindProperties(props, &dbConfig); err != nil {
		return dbConfig, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}
	return dbConfig, nil
}

// Open establishes a GORM connection for dbConfig and wraps it in a GormDBAdapter.
func Open(dbConfig dbconfig.DatabaseConfig, name string, gormLogLevel string) (*GormDBAdapter, error) {
	dialectorFactory, err := GetDialectorFactory(dbConfig.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to get dialector factory for %s: %w", dbConfig.Type, err)
	}
	dialector, err := dialectorFactory(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbConfig.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(gormLogLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if dbConfig.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.Pool.MaxOpenConns)
	}
	if dbConfig.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.Pool.MaxIdleConns)
	}
	if dbConfig.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return NewGormDBAdapter(db, dbConfig, name)
}

// BaseProvider caches the connections of one database type, keyed by connection name.
// The dialect packages embed it.
type BaseProvider struct {
	cfg         *config.Config
	dbType      string
	mu          sync.Mutex
	connections map[string]database.DBConnection
}

// NewBaseProvider creates a BaseProvider for dbType.
func NewBaseProvider(cfg *config.Config, dbType string) *BaseProvider {
	return &BaseProvider{cfg: cfg, dbType: dbType, connections: map[string]database.DBConnection{}}
}

func (p *BaseProvider) Type() string {
	return p.dbType
}

// GetConnection returns the cached connection for name, opening it on first use.
func (p *BaseProvider) GetConnection(name string) (database.DBConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.connections[name]; ok {
		return conn, nil
	}
	return p.open(name)
}

// ForceReconnect drops the cached connection for name and opens a new one.
func (p *BaseProvider) ForceReconnect(name string) (database.DBConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stale, ok := p.connections[name]; ok {
		delete(p.connections, name)
		if err := stale.Close(); err != nil {
			logger.Warnf("Closing stale connection '%s' failed: %v", name, err)
		}
	}
	return p.open(name)
}

// CloseAll closes every cached connection and reports all close failures.
func (p *BaseProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs *multierror.Error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	return errs.ErrorOrNil()
}

// open must be called with mu held.
func (p *BaseProvider) open(name string) (database.DBConnection, error) {
	dbConfig, err := DecodeDatabaseConfig(p.cfg, name)
	if err != nil {
		return nil, err
	}
	if dbConfig.Type != p.dbType {
		return nil, fmt.Errorf("connection '%s' is of type '%s', provider handles '%s'", name, dbConfig.Type, p.dbType)
	}

	conn, err := Open(dbConfig, name, p.cfg.IRP.System.Logging.GormLevel)
	if err != nil {
		return nil, err
	}
	p.connections[name] = conn
	logger.Infof("Opened DB connection '%s' (%s, schema '%s').", name, p.dbType, dbConfig.Schema)
	return conn, nil
}
