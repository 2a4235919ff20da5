// Package exception provides the error types shared by the workflow core.
// Domain rule violations surface as BatchError or JobError, store failures as DatabaseError.
// All three wrap an optional original error and capture a stack trace for debugging.
package exception

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
	"strings"
)

// ErrConcurrentModification is a sentinel error indicating that a guarded update affected no rows
// because another writer changed the row first.
var ErrConcurrentModification = errors.New("concurrent modification")

// BatchError is raised for batch-level rule violations such as an unregistered batch type
// or submitting a batch that has no job configurations.
type BatchError struct {
	// Module indicates where the error occurred (e.g., "batch_manager", "transformer").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error.
	StackTrace string
}

// JobError is raised for job-level rule violations, e.g. resubmitting a job whose
// configuration has already been superseded.
type JobError struct {
	Module      string
	Message     string
	OriginalErr error
	StackTrace  string
}

// DatabaseError wraps any failure reported by the relational store.
// It is created once at the repository boundary and propagated unchanged afterwards.
type DatabaseError struct {
	Module      string
	Message     string
	OriginalErr error
	StackTrace  string
}

// NewBatchError creates a new BatchError instance.
func NewBatchError(module, message string, originalErr error) *BatchError {
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// NewBatchErrorf creates a new BatchError using a format string.
// If the last argument is an error it is extracted as the wrapped error and the
// remaining arguments are used for fmt.Sprintf.
//
// Example:
// NewBatchErrorf("batch_manager", "batch %d has no job configurations", 42)
// NewBatchErrorf("batch_manager", "failed to load batch %d", 42, sql.ErrConnDone)
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	message, originalErr := splitArgs(format, a)
	return &BatchError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// NewJobError creates a new JobError instance.
func NewJobError(module, message string, originalErr error) *JobError {
	return &JobError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// NewJobErrorf creates a new JobError using a format string, with the same trailing-error
// convention as NewBatchErrorf.
func NewJobErrorf(module, format string, a ...interface{}) *JobError {
	message, originalErr := splitArgs(format, a)
	return &JobError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// NewDatabaseError creates a new DatabaseError instance.
func NewDatabaseError(module, message string, originalErr error) *DatabaseError {
	return &DatabaseError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// NewDatabaseErrorf creates a new DatabaseError using a format string, with the same
// trailing-error convention as NewBatchErrorf.
func NewDatabaseErrorf(module, format string, a ...interface{}) *DatabaseError {
	message, originalErr := splitArgs(format, a)
	return &DatabaseError{Module: module, Message: message, OriginalErr: originalErr, StackTrace: captureStack()}
}

// Error implements the error interface.
func (e *BatchError) Error() string { return formatError(e.Module, e.Message, e.OriginalErr) }

// Unwrap returns the original error for errors.Unwrap.
func (e *BatchError) Unwrap() error { return e.OriginalErr }

// Error implements the error interface.
func (e *JobError) Error() string { return formatError(e.Module, e.Message, e.OriginalErr) }

// Unwrap returns the original error for errors.Unwrap.
func (e *JobError) Unwrap() error { return e.OriginalErr }

// Error implements the error interface.
func (e *DatabaseError) Error() string { return formatError(e.Module, e.Message, e.OriginalErr) }

// Unwrap returns the original error for errors.Unwrap.
func (e *DatabaseError) Unwrap() error { return e.OriginalErr }

// IsBatchError reports whether err, or any error it wraps, is a BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// IsJobError reports whether err, or any error it wraps, is a JobError.
func IsJobError(err error) bool {
	var je *JobError
	return errors.As(err, &je)
}

// IsDatabaseError reports whether err, or any error it wraps, is a DatabaseError.
func IsDatabaseError(err error) bool {
	var de *DatabaseError
	return errors.As(err, &de)
}

// IsConcurrentModification reports whether err indicates a lost guarded update.
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsTemporary determines if an error is transient (network timeout, refused connection, dropped stream).
// Domain and store errors are never temporary. This function is used by the retry policy of remote clients.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if IsBatchError(err) || IsJobError(err) || IsDatabaseError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF")
}

// ExtractErrorMessage extracts the error message string from an error.
// For the types of this package it returns the cleaner Message field.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	var je *JobError
	if errors.As(err, &je) {
		return je.Message
	}
	var de *DatabaseError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func formatError(module, message string, originalErr error) string {
	if originalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", module, message, originalErr)
	}
	return fmt.Sprintf("[%s] %s", module, message)
}

// splitArgs extracts a trailing error from a and formats the remaining arguments.
func splitArgs(format string, a []interface{}) (string, error) {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return fmt.Sprintf(format, args...), originalErr
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
