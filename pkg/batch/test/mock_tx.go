package test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
)

// MockTx is a mock implementation of the tx.Tx interface.
type MockTx struct {
	mock.Mock
}

// Qualify returns table unchanged.
func (m *MockTx) Qualify(table string) string {
	return table
}

func (m *MockTx) ExecuteQuery(ctx context.Context, target interface{}, query string, args ...interface{}) error {
	return m.Called(ctx, target, query, args).Error(0)
}

func (m *MockTx) ExecuteCommand(ctx context.Context, query string, args ...interface{}) (int64, error) {
	ret := m.Called(ctx, query, args)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockTx) ExecuteInsert(ctx context.Context, table string, entity tx.Identifiable) (int64, error) {
	ret := m.Called(ctx, table, entity)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockTx) BulkInsert(ctx context.Context, table string, entities interface{}) ([]int64, error) {
	ret := m.Called(ctx, table, entities)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]int64), ret.Error(1)
}

func (m *MockTx) IsTableNotExistError(err error) bool {
	return m.Called(err).Bool(0)
}

// MockTxManager is a mock implementation of the tx.TransactionManager interface.
type MockTxManager struct {
	mock.Mock
}

// Begin returns the configured tx.Tx or error.
func (m *MockTxManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(t tx.Tx) error {
	return m.Called(t).Error(0)
}

func (m *MockTxManager) Rollback(t tx.Tx) error {
	return m.Called(t).Error(0)
}

var (
	_ tx.Tx                 = (*MockTx)(nil)
	_ tx.TransactionManager = (*MockTxManager)(nil)
)
