package exception_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"

	"github.com/stretchr/testify/assert"
)

func TestNewBatchError(t *testing.T) {
	originalErr := errors.New("registry lookup failed")
	be := exception.NewBatchError("batch_manager", "unknown batch type", originalErr)

	assert.Equal(t, "batch_manager", be.Module)
	assert.Equal(t, "unknown batch type", be.Message)
	assert.Equal(t, originalErr, be.Unwrap())
	assert.Contains(t, be.Error(), "[batch_manager] unknown batch type: registry lookup failed")
	assert.NotEmpty(t, be.StackTrace)
}

func TestNewErrorf_TrailingErrorExtraction(t *testing.T) {
	// Only message args
	be := exception.NewBatchErrorf("batch_manager", "batch %d has no job configurations", 10)
	assert.Nil(t, be.Unwrap())
	assert.Equal(t, "[batch_manager] batch 10 has no job configurations", be.Error())

	// Message args + original error
	je := exception.NewJobErrorf("job_manager", "failed to submit job %d", 7, sql.ErrConnDone)
	assert.Equal(t, sql.ErrConnDone, je.Unwrap())
	assert.Equal(t, "failed to submit job 7", je.Message)

	de := exception.NewDatabaseErrorf("sql_repository", "query on %s failed", "irp_job", sql.ErrTxDone)
	assert.True(t, errors.Is(de, sql.ErrTxDone))
	assert.Equal(t, "query on irp_job failed", de.Message)
}

func TestIsErrorKind_ThroughWrapping(t *testing.T) {
	de := exception.NewDatabaseError("sql_repository", "insert failed", errors.New("constraint"))
	wrapped := fmt.Errorf("creating batch: %w", de)

	assert.True(t, exception.IsDatabaseError(wrapped))
	assert.False(t, exception.IsBatchError(wrapped))
	assert.False(t, exception.IsJobError(wrapped))

	je := exception.NewJobError("job_manager", "lost update", exception.ErrConcurrentModification)
	assert.True(t, exception.IsJobError(je))
	assert.True(t, exception.IsConcurrentModification(je))

	assert.False(t, exception.IsBatchError(nil))
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"job error", exception.NewJobError("job_manager", "timeout", nil), false},
		{"database error", exception.NewDatabaseError("sql_repository", "timeout", nil), false},
		{"plain", errors.New("bad request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exception.IsTemporary(tt.err))
		})
	}
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "no workflow id", exception.ExtractErrorMessage(
		fmt.Errorf("wrapped: %w", exception.NewJobError("job_manager", "no workflow id", nil))))
	assert.Equal(t, "plain failure", exception.ExtractErrorMessage(errors.New("plain failure")))
}
