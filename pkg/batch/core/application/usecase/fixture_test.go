package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/usecase"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/transformer"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/test"
)

const cycleName = "Analysis-2025-Q1"

type fixture struct {
	store    *test.Store
	repo     repository.WorkflowRepository
	client   *test.MockRiskModelingClient
	checker  *test.MockEntityChecker
	notifier *test.MockNotifier
	jobs     *usecase.JobManager
	batches  *usecase.BatchManager
	h        *test.Hierarchy
}

// newFixture seeds stage 3 step 1 of an active cycle with a three-database master configuration.
// wrap, when non-nil, decorates the repository the managers use.
func newFixture(t *testing.T, wrap func(repository.WorkflowRepository) repository.WorkflowRepository) *fixture {
	t.Helper()
	store := test.NewSQLiteStore(t)
	repo := repository.WorkflowRepository(store.Repo)
	if wrap != nil {
		repo = wrap(repo)
	}

	registry, err := transformer.NewDefaultRegistry()
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		repo:     repo,
		client:   new(test.MockRiskModelingClient),
		checker:  new(test.MockEntityChecker),
		notifier: new(test.MockNotifier),
	}
	recorder, tracer := metrics.NewNoOpMetricRecorder(), metrics.NewNoOpTracer()
	f.jobs = usecase.NewJobManager(repo, store.TxManager, f.client, recorder, tracer)
	f.batches = usecase.NewBatchManager(repo, store.TxManager, registry, f.jobs, f.checker, f.notifier, recorder, tracer)
	f.h = test.SeedHierarchy(t, store.Repo, cycleName, 3, 1, test.MasterConfiguration("EDM_A", "EDM_B", "EDM_C"))

	f.notifier.On("NotifyBatchFinished", mock.Anything, mock.Anything).Return(nil)
	return f
}

// submittedBatch creates an EDM Creation batch and submits its three jobs as wf-1, wf-2 and wf-3.
func (f *fixture) submittedBatch(t *testing.T) (int64, []*model.Job) {
	t.Helper()
	ctx := context.Background()

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)

	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-1", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-2", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-3", nil).Once()

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, report.Submitted, 3)

	jobs, err := f.batches.GetBatchJobs(ctx, batchID, false)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	return batchID, jobs
}

func (f *fixture) pollReturns(workflowID, status string) {
	f.client.On("Poll", mock.Anything, workflowID).Return(&port.WorkflowState{
		WorkflowID: workflowID, Status: status, ProgressPct: 100,
	}, nil)
}

// countingRepository counts batch status writes.
type countingRepository struct {
	repository.WorkflowRepository
	batchStatusWrites int
}

func (r *countingRepository) UpdateBatchStatus(ctx context.Context, id int64, status model.BatchStatus, completedAt *time.Time) (int64, error) {
	r.batchStatusWrites++
	return r.WorkflowRepository.UpdateBatchStatus(ctx, id, status, completedAt)
}

// failingJobRepository fails every job insert.
type failingJobRepository struct {
	repository.WorkflowRepository
	err error
}

func (r *failingJobRepository) SaveJob(ctx context.Context, job *model.Job) error {
	return r.err
}

// racingRepository reports that another writer already skipped the job.
type racingRepository struct {
	repository.WorkflowRepository
}

func (r *racingRepository) SkipJob(ctx context.Context, id int64, reason string) (int64, error) {
	return 0, nil
}

// unstampedRepository fails to stamp submitted_ts while err is set.
type unstampedRepository struct {
	repository.WorkflowRepository
	err error
}

func (r *unstampedRepository) MarkBatchSubmitted(ctx context.Context, id int64, at time.Time) error {
	if r.err != nil {
		return r.err
	}
	return r.WorkflowRepository.MarkBatchSubmitted(ctx, id, at)
}
