package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	dbadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
)

// MockDBConnectionResolver is a mock implementation of the database.DBConnectionResolver interface.
type MockDBConnectionResolver struct {
	mock.Mock
}

func (m *MockDBConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (dbadapter.DBConnection, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(dbadapter.DBConnection), args.Error(1)
}

// SingleConnectionResolver resolves every name to one connection.
type SingleConnectionResolver struct {
	Conn dbadapter.DBConnection
}

func (r *SingleConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (dbadapter.DBConnection, error) {
	return r.Conn, nil
}

var (
	_ dbadapter.DBConnectionResolver = (*MockDBConnectionResolver)(nil)
	_ dbadapter.DBConnectionResolver = (*SingleConnectionResolver)(nil)
)
