// Package port defines the collaborators the workflow core depends on but does not implement:
// the external risk-modeling execution system, the remote entity checker, the notifier and the
// notebook launcher.
package port

import (
	"context"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// Workflow statuses reported by the external execution system.
const (
	WorkflowStatusQueued          = "QUEUED"
	WorkflowStatusPending         = "PENDING"
	WorkflowStatusRunning         = "RUNNING"
	WorkflowStatusCancelRequested = "CANCEL_REQUESTED"
	WorkflowStatusCancelling      = "CANCELLING"
	WorkflowStatusFinished        = "FINISHED"
	WorkflowStatusFailed          = "FAILED"
	WorkflowStatusCancelled       = "CANCELLED"
)

// Submission is one job handed to the external execution system.
type Submission struct {
	JobID     int64
	BatchID   int64
	BatchType string
	Payload   model.Payload
}

// WorkflowState is the result of one poll.
type WorkflowState struct {
	WorkflowID string
	// Status is the vendor status string, e.g. "RUNNING" or "FINISHED".
	Status      string
	ProgressPct float64
	// Message carries the vendor's error description for failed workflows.
	Message string
}

// RiskModelingClient submits jobs to and polls the external execution system.
// Implementations own their timeout and retry-with-backoff policy; a returned error means the
// retry budget is spent.
type RiskModelingClient interface {
	Submit(ctx context.Context, submission Submission) (workflowID string, err error)
	Poll(ctx context.Context, workflowID string) (*WorkflowState, error)
}

// EntityChecker reports whether the remote entity a job would create already exists,
// so that a re-run batch only submits what is missing.
type EntityChecker interface {
	Exists(ctx context.Context, batchType string, payload model.Payload) (bool, error)
}

// Notifier is told when reconciliation moves a batch into a terminal status.
type Notifier interface {
	NotifyBatchFinished(ctx context.Context, summary *model.BatchSummary) error
}

// StepLauncher runs the notebook a completed batch chains into.
type StepLauncher interface {
	Launch(ctx context.Context, next *model.NextStep) error
}
