// Package sql implements repository.WorkflowRepository on the relational store.
// Statements are plain SQL with '?' placeholders; the gorm executor rebinds them per dialect
// and qualifies table names with the connection's schema.
package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
)

const module = "SQLWorkflowRepository"

// SQLWorkflowRepository implements repository.WorkflowRepository.
type SQLWorkflowRepository struct {
	dbResolver database.DBConnectionResolver
	// dbName is the name of the connection under irp.database (e.g., "irp").
	dbName string
	now    func() time.Time
}

var _ repository.WorkflowRepository = (*SQLWorkflowRepository)(nil)

// NewSQLWorkflowRepository creates a repository bound to the named connection.
func NewSQLWorkflowRepository(dbResolver database.DBConnectionResolver, dbName string) *SQLWorkflowRepository {
	return &SQLWorkflowRepository{
		dbResolver: dbResolver,
		dbName:     dbName,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// getTxExecutor returns the transaction carried by ctx, or the plain connection when there is none.
func (r *SQLWorkflowRepository) getTxExecutor(ctx context.Context) (tx.TxExecutor, error) {
	if t, ok := tx.FromContext(ctx); ok {
		return t, nil
	}
	conn, err := r.dbResolver.ResolveDBConnection(ctx, r.dbName)
	if err != nil {
		return nil, exception.NewDatabaseError(module, fmt.Sprintf("failed to resolve DB connection '%s'", r.dbName), err)
	}
	return conn, nil
}

// Close is a no-op: connections belong to the resolver and are closed with it.
func (r *SQLWorkflowRepository) Close() error {
	return nil
}

func (r *SQLWorkflowRepository) storeError(executor tx.TxExecutor, err error, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if executor.IsTableNotExistError(err) {
		msg += " (schema not migrated)"
	}
	return exception.NewDatabaseError(module, msg, err)
}

// queryOne runs query and returns the first row, or nil when there is none.
func queryOne[T any](ctx context.Context, executor tx.TxExecutor, query string, args ...interface{}) (*T, error) {
	var rows []T
	if err := executor.ExecuteQuery(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// findByID loads one row of table by primary key.
func findByID[T any](ctx context.Context, r *SQLWorkflowRepository, table string, id int64) (*T, tx.TxExecutor, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, nil, err
	}
	row, err := queryOne[T](ctx, executor, fmt.Sprintf("SELECT * FROM %s WHERE id = ?", executor.Qualify(table)), id)
	if err != nil {
		return nil, executor, r.storeError(executor, err, "failed to load %s %d", table, id)
	}
	return row, executor, nil
}

// insert stores entity and returns its generated key.
func (r *SQLWorkflowRepository) insert(ctx context.Context, table string, entity tx.Identifiable) (int64, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return 0, err
	}
	id, err := executor.ExecuteInsert(ctx, table, entity)
	if err != nil {
		return 0, r.storeError(executor, err, "failed to insert into %s", table)
	}
	return id, nil
}

// command runs an UPDATE/DELETE whose first %s is replaced by the qualified table name.
func (r *SQLWorkflowRepository) command(ctx context.Context, table, statement string, args ...interface{}) (int64, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := executor.ExecuteCommand(ctx, fmt.Sprintf(statement, executor.Qualify(table)), args...)
	if err != nil {
		return 0, r.storeError(executor, err, "failed to update %s", table)
	}
	return affected, nil
}
