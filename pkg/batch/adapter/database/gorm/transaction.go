package gorm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
)

// GormTxAdapter is the tx.Tx of a GORM transaction. Statements run on the transaction's *gorm.DB
// and are qualified with the schema of the connection the transaction was started from.
type GormTxAdapter struct {
	executor
}

// GormTransactionManager begins transactions on one named connection.
type GormTransactionManager struct {
	dbResolver database.DBConnectionResolver
	dbName     string
}

// Begin resolves the connection, re-establishing it when stale, and starts a transaction on it.
func (m *GormTransactionManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	conn, err := m.dbResolver.ResolveDBConnection(ctx, m.dbName)
	if err != nil {
		return nil, fmt.Errorf("resolve connection '%s' for transaction: %w", m.dbName, err)
	}
	adapter, ok := conn.(*GormDBAdapter)
	if !ok {
		return nil, fmt.Errorf("connection '%s' is a %T, not a GORM connection", m.dbName, conn)
	}

	var txOpts *sql.TxOptions
	if len(opts) > 0 {
		txOpts = opts[0]
	}
	gormTx := adapter.GetGormDB().WithContext(ctx).Begin(txOpts)
	if gormTx.Error != nil {
		return nil, fmt.Errorf("begin transaction on '%s': %w", m.dbName, gormTx.Error)
	}
	return &GormTxAdapter{executor: executor{db: gormTx, schema: adapter.Schema()}}, nil
}

func (m *GormTransactionManager) Commit(t tx.Tx) error {
	gt, err := asGormTx(t)
	if err != nil {
		return err
	}
	return gt.db.Commit().Error
}

func (m *GormTransactionManager) Rollback(t tx.Tx) error {
	gt, err := asGormTx(t)
	if err != nil {
		return err
	}
	return gt.db.Rollback().Error
}

func asGormTx(t tx.Tx) (*GormTxAdapter, error) {
	gt, ok := t.(*GormTxAdapter)
	if !ok {
		return nil, fmt.Errorf("transaction is a %T, not a GORM transaction", t)
	}
	return gt, nil
}

// GormTransactionManagerFactory creates transaction managers bound to a connection name.
type GormTransactionManagerFactory struct {
	dbResolver database.DBConnectionResolver
}

func NewGormTransactionManagerFactory(dbResolver database.DBConnectionResolver) *GormTransactionManagerFactory {
	return &GormTransactionManagerFactory{dbResolver: dbResolver}
}

func (f *GormTransactionManagerFactory) NewTransactionManager(dbName string) tx.TransactionManager {
	return &GormTransactionManager{dbResolver: f.dbResolver, dbName: dbName}
}
