// Package tx provides an abstraction for transaction management over the relational store.
// Repositories execute every statement through a TxExecutor: the transaction carried by the
// context when there is one, the plain connection otherwise.
package tx

import (
	"context"
	"database/sql"
)

// Identifiable is implemented by persistence entities with an auto-generated primary key.
type Identifiable interface {
	PrimaryKey() int64
}

// TxExecutor defines the statements executable against the store, with or without a transaction.
// Table names passed to it are unqualified; the executor applies its namespace.
type TxExecutor interface {
	// Qualify returns table prefixed with the executor's schema, e.g. "irp.irp_job".
	Qualify(table string) string

	// ExecuteQuery runs a parameterized SELECT and scans all rows into target (a pointer to a slice of structs).
	ExecuteQuery(ctx context.Context, target interface{}, query string, args ...interface{}) error

	// ExecuteCommand runs a parameterized INSERT/UPDATE/DELETE and returns the number of affected rows.
	ExecuteCommand(ctx context.Context, query string, args ...interface{}) (rowsAffected int64, err error)

	// ExecuteInsert inserts one entity into table and returns its generated primary key.
	ExecuteInsert(ctx context.Context, table string, entity Identifiable) (newID int64, err error)

	// BulkInsert inserts a slice of entity pointers into table and returns the generated keys in input order.
	BulkInsert(ctx context.Context, table string, entities interface{}) (newIDs []int64, err error)

	// IsTableNotExistError checks if the given error indicates that a table does not exist.
	IsTableNotExistError(err error) bool
}

// Tx represents an ongoing database transaction. It is committed or rolled back through the
// TransactionManager that began it.
type Tx interface {
	TxExecutor
}

// TransactionManager manages the lifecycle of database transactions (begin, commit, rollback).
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	// Commit commits the specified transaction.
	Commit(tx Tx) error
	// Rollback rolls back the specified transaction.
	Rollback(tx Tx) error
}

type txContextKey struct{}

// WithTx returns a copy of ctx carrying t.
func WithTx(ctx context.Context, t Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, t)
}

// FromContext returns the transaction carried by ctx, if any.
func FromContext(ctx context.Context) (Tx, bool) {
	t, ok := ctx.Value(txContextKey{}).(Tx)
	return t, ok && t != nil
}

// Run executes fn inside a transaction: commit when fn returns nil, rollback when it returns an
// error or panics. When ctx already carries a transaction fn joins it and the outermost Run decides.
func Run(ctx context.Context, tm TransactionManager, fn func(ctx context.Context) error) (err error) {
	if _, ok := FromContext(ctx); ok {
		return fn(ctx)
	}

	t, err := tm.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tm.Rollback(t)
			panic(p)
		}
	}()

	if err = fn(WithTx(ctx, t)); err != nil {
		if rbErr := tm.Rollback(t); rbErr != nil {
			return &RollbackError{Cause: err, RollbackErr: rbErr}
		}
		return err
	}
	return tm.Commit(t)
}

// RollbackError is returned by Run when fn failed and the rollback failed too.
type RollbackError struct {
	Cause       error
	RollbackErr error
}

func (e *RollbackError) Error() string {
	return e.Cause.Error() + " (rollback failed: " + e.RollbackErr.Error() + ")"
}

// Unwrap returns the error that caused the rollback.
func (e *RollbackError) Unwrap() error {
	return e.Cause
}
