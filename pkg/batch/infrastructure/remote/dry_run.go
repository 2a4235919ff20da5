package remote

import (
	"context"
	"sync"

	"github.com/google/uuid"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// DryRunClient accepts every submission without contacting the API and reports each workflow
// FINISHED on its first poll. Nothing exists remotely.
type DryRunClient struct {
	mu        sync.Mutex
	submitted map[string]port.Submission
}

// NewDryRunClient creates a new instance of DryRunClient.
func NewDryRunClient() *DryRunClient {
	return &DryRunClient{submitted: make(map[string]port.Submission)}
}

func (c *DryRunClient) Submit(ctx context.Context, submission port.Submission) (string, error) {
	id := "dry-run-" + uuid.NewString()
	c.mu.Lock()
	c.submitted[id] = submission
	c.mu.Unlock()
	logger.Infof("Dry run: job %d (%s) accepted as workflow %s.", submission.JobID, submission.BatchType, id)
	return id, nil
}

func (c *DryRunClient) Poll(ctx context.Context, workflowID string) (*port.WorkflowState, error) {
	return &port.WorkflowState{WorkflowID: workflowID, Status: port.WorkflowStatusFinished, ProgressPct: 100}, nil
}

func (c *DryRunClient) Exists(ctx context.Context, batchType string, payload model.Payload) (bool, error) {
	return false, nil
}

// Submitted returns the number of submissions accepted so far.
func (c *DryRunClient) Submitted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submitted)
}

var (
	_ port.RiskModelingClient = (*DryRunClient)(nil)
	_ port.EntityChecker      = (*DryRunClient)(nil)
)
