package tx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/test"
)

func TestRun_CommitsOnSuccess(t *testing.T) {
	mockTx := new(test.MockTx)
	tm := new(test.MockTxManager)
	tm.On("Begin", mock.Anything, mock.Anything).Return(mockTx, nil)
	tm.On("Commit", mockTx).Return(nil)

	var seen tx.Tx
	err := tx.Run(context.Background(), tm, func(ctx context.Context) error {
		seen, _ = tx.FromContext(ctx)
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, mockTx, seen)
	tm.AssertExpectations(t)
	tm.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestRun_RollsBackOnError(t *testing.T) {
	mockTx := new(test.MockTx)
	tm := new(test.MockTxManager)
	tm.On("Begin", mock.Anything, mock.Anything).Return(mockTx, nil)
	tm.On("Rollback", mockTx).Return(nil)

	boom := errors.New("boom")
	err := tx.Run(context.Background(), tm, func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	tm.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRun_ReportsFailedRollback(t *testing.T) {
	mockTx := new(test.MockTx)
	tm := new(test.MockTxManager)
	tm.On("Begin", mock.Anything, mock.Anything).Return(mockTx, nil)
	tm.On("Rollback", mockTx).Return(errors.New("connection lost"))

	boom := errors.New("boom")
	err := tx.Run(context.Background(), tm, func(ctx context.Context) error { return boom })
	var rbErr *tx.RollbackError
	require.ErrorAs(t, err, &rbErr)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestRun_RollsBackOnPanic(t *testing.T) {
	mockTx := new(test.MockTx)
	tm := new(test.MockTxManager)
	tm.On("Begin", mock.Anything, mock.Anything).Return(mockTx, nil)
	tm.On("Rollback", mockTx).Return(nil)

	assert.Panics(t, func() {
		_ = tx.Run(context.Background(), tm, func(ctx context.Context) error { panic("bad") })
	})
	tm.AssertCalled(t, "Rollback", mockTx)
}

func TestRun_JoinsOuterTransaction(t *testing.T) {
	outer := new(test.MockTx)
	tm := new(test.MockTxManager)

	ctx := tx.WithTx(context.Background(), outer)
	err := tx.Run(ctx, tm, func(ctx context.Context) error {
		inner, ok := tx.FromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, outer, inner)
		return nil
	})
	require.NoError(t, err)
	tm.AssertNotCalled(t, "Begin", mock.Anything, mock.Anything)
}

func TestRun_BeginFailure(t *testing.T) {
	tm := new(test.MockTxManager)
	tm.On("Begin", mock.Anything, mock.Anything).Return(nil, errors.New("pool exhausted"))

	called := false
	err := tx.Run(context.Background(), tm, func(ctx context.Context) error { called = true; return nil })
	assert.EqualError(t, err, "pool exhausted")
	assert.False(t, called)
}
