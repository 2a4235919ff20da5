package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// MockRiskModelingClient is a mock implementation of port.RiskModelingClient.
type MockRiskModelingClient struct {
	mock.Mock
}

func (m *MockRiskModelingClient) Submit(ctx context.Context, submission port.Submission) (string, error) {
	args := m.Called(ctx, submission)
	return args.String(0), args.Error(1)
}

func (m *MockRiskModelingClient) Poll(ctx context.Context, workflowID string) (*port.WorkflowState, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.WorkflowState), args.Error(1)
}

// MockEntityChecker is a mock implementation of port.EntityChecker.
type MockEntityChecker struct {
	mock.Mock
}

func (m *MockEntityChecker) Exists(ctx context.Context, batchType string, payload model.Payload) (bool, error) {
	args := m.Called(ctx, batchType, payload)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyBatchFinished(ctx context.Context, summary *model.BatchSummary) error {
	return m.Called(ctx, summary).Error(0)
}

// MockStepLauncher is a mock implementation of port.StepLauncher.
type MockStepLauncher struct {
	mock.Mock
}

func (m *MockStepLauncher) Launch(ctx context.Context, next *model.NextStep) error {
	return m.Called(ctx, next).Error(0)
}

var (
	_ port.RiskModelingClient = (*MockRiskModelingClient)(nil)
	_ port.EntityChecker      = (*MockEntityChecker)(nil)
	_ port.Notifier           = (*MockNotifier)(nil)
	_ port.StepLauncher       = (*MockStepLauncher)(nil)
)
