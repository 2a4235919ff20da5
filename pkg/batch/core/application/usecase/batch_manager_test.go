package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/usecase"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/transformer"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
)

func databaseIs(name string) interface{} {
	return mock.MatchedBy(func(p model.Payload) bool { return p.GetString("Database") == name })
}

func TestBatch_AllJobsFinishComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)

	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, batch.Status)
	jcs, err := f.batches.GetBatchJobConfigurations(ctx, batchID, true)
	require.NoError(t, err)
	require.Len(t, jcs, 3)
	for _, jc := range jcs {
		assert.False(t, jc.Skipped)
	}

	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-1", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-2", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-3", nil).Once()

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, report.Submitted, 3)
	assert.Empty(t, report.Failed)

	jobs, err := f.batches.GetBatchJobs(ctx, batchID, false)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	for _, j := range jobs {
		assert.Equal(t, model.JobStatusSubmitted, j.Status)
		assert.NotEmpty(t, j.WorkflowID)
		assert.NotNil(t, j.SubmittedTS)
	}
	batch, err = f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.NotNil(t, batch.SubmittedTS)

	for _, wf := range []string{"wf-1", "wf-2", "wf-3"} {
		f.pollReturns(wf, port.WorkflowStatusFinished)
	}
	for _, j := range jobs {
		status, err := f.jobs.TrackJobStatus(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFinished, status)
	}

	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)
	f.notifier.AssertNumberOfCalls(t, "NotifyBatchFinished", 1)

	batch, err = f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, batch.Status)
	assert.NotNil(t, batch.CompletedTS)
}

func TestBatch_OneFailedJobFailsBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batchID, jobs := f.submittedBatch(t)

	f.pollReturns("wf-1", port.WorkflowStatusFinished)
	f.pollReturns("wf-2", port.WorkflowStatusFailed)
	f.pollReturns("wf-3", port.WorkflowStatusFinished)
	for _, j := range jobs {
		_, err := f.jobs.TrackJobStatus(ctx, j.ID)
		require.NoError(t, err)
	}

	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, status)

	summary, err := f.batches.GetBatchSummary(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalJobs)
	assert.Equal(t, 2, summary.JobsByStatus[model.JobStatusFinished])
	assert.Equal(t, 1, summary.JobsByStatus[model.JobStatusFailed])
	assert.Equal(t, 3, summary.TotalConfigurations)
}

func TestReconBatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	var counter *countingRepository
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		counter = &countingRepository{WorkflowRepository: r}
		return counter
	})
	batchID, jobs := f.submittedBatch(t)

	// Jobs still in flight leave the batch ACTIVE without a write.
	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, status)
	assert.Zero(t, counter.batchStatusWrites)

	for _, wf := range []string{"wf-1", "wf-2", "wf-3"} {
		f.pollReturns(wf, port.WorkflowStatusCancelled)
	}
	for _, j := range jobs {
		_, err := f.jobs.TrackJobStatus(ctx, j.ID)
		require.NoError(t, err)
	}

	first, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	second, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)

	assert.Equal(t, model.BatchStatusCancelled, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counter.batchStatusWrites)
	f.notifier.AssertNumberOfCalls(t, "NotifyBatchFinished", 1)
}

func TestReconBatch_NoJobsCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// The master configuration has no treaty rows, so the batch has no jobs at all.
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeCreateReinsuranceTreaties)
	require.NoError(t, err)

	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)

	_, err = f.batches.SubmitBatch(ctx, batchID)
	assert.True(t, exception.IsBatchError(err))
}

func TestReconBatch_AllJobsSkippedCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(true, nil)

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, report.Existing, 3)
	f.client.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)

	summary, err := f.batches.GetBatchSummary(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.SkippedJobs)
	assert.Equal(t, 3, summary.SkippedConfigurations)
	assert.Empty(t, summary.JobsByStatus)
}

func TestReconBatch_KeepsTerminalStatusAfterResubmit(t *testing.T) {
	ctx := context.Background()
	var counter *countingRepository
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		counter = &countingRepository{WorkflowRepository: r}
		return counter
	})
	batchID, jobs := f.submittedBatch(t)

	f.pollReturns("wf-1", port.WorkflowStatusFinished)
	f.pollReturns("wf-2", port.WorkflowStatusFailed)
	f.pollReturns("wf-3", port.WorkflowStatusFinished)
	for _, j := range jobs {
		_, err := f.jobs.TrackJobStatus(ctx, j.ID)
		require.NoError(t, err)
	}
	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	require.Equal(t, model.BatchStatusFailed, status)
	require.Equal(t, 1, counter.batchStatusWrites)

	// The INITIATED replacement does not reopen the batch on its own.
	_, err = f.jobs.ResubmitJob(ctx, jobs[1].ID, nil, "retry")
	require.NoError(t, err)
	status, err = f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, status)
	assert.Equal(t, 1, counter.batchStatusWrites)

	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, batch.Status)
	assert.NotNil(t, batch.CompletedTS)
	f.notifier.AssertNumberOfCalls(t, "NotifyBatchFinished", 1)
}

func TestCreateBatch_UnknownTypeCreatesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, "Unknown Type")
	require.Error(t, err)
	assert.True(t, exception.IsBatchError(err))
	assert.ErrorIs(t, err, transformer.ErrUnknownBatchType)

	batches, err := f.store.Repo.FindBatchesByCycleAndStatus(ctx, f.h.Cycle.ID, model.BatchStatusActive)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestCreateBatch_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.batches.CreateBatch(ctx, 9999, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	assert.True(t, exception.IsBatchError(err))
	assert.ErrorIs(t, err, repository.ErrConfigurationNotFound)

	bad := &model.Configuration{CycleID: f.h.Cycle.ID, ConfigurationData: model.Payload{"Databases": "not a list"}, Status: model.ConfigurationStatusValid}
	require.NoError(t, f.store.Repo.SaveConfiguration(ctx, bad))
	_, err = f.batches.CreateBatch(ctx, bad.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	assert.True(t, exception.IsBatchError(err))
}

func TestSubmitBatch_ExistingEntitiesAreSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, databaseIs("EDM_B")).Return(true, nil)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf", nil)

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, report.Submitted, 2)
	require.Len(t, report.Existing, 1)

	skipped, err := f.store.Repo.FindJobByID(ctx, report.Existing[0])
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, usecase.SkipReasonEntityExists, skipped.SkippedReasonTxt)

	current, err := f.batches.GetBatchJobConfigurations(ctx, batchID, false)
	require.NoError(t, err)
	assert.Len(t, current, 2)

	// Submitting again leaves every configuration alone.
	again, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Empty(t, again.Submitted)
	assert.Equal(t, 2, again.Unchanged)
	f.client.AssertNumberOfCalls(t, "Submit", 2)
}

func TestSubmitBatch_RemoteFailureLeavesJobInitiated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	unavailable := errors.New("service unavailable")
	f.client.On("Submit", mock.Anything, mock.MatchedBy(func(s port.Submission) bool {
		return s.Payload.GetString("Database") == "EDM_C"
	})).Return("", unavailable)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf", nil)

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.Error(t, err)
	assert.ErrorIs(t, err, unavailable)
	assert.True(t, exception.IsJobError(err))
	require.NotNil(t, report)
	assert.Len(t, report.Submitted, 2)
	require.Len(t, report.Failed, 1)

	failed, err := f.store.Repo.FindJobByID(ctx, report.Failed[0])
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInitiated, failed.Status)
	assert.Empty(t, failed.WorkflowID)

	f.client.ExpectedCalls = nil
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-retry", nil)
	pending, err := f.batches.SubmitPendingJobs(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, []int64{failed.ID}, pending.Submitted)
	assert.Equal(t, 2, pending.Unchanged)
}

func TestSubmitBatch_ExistenceCheckFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, databaseIs("EDM_A")).Return(false, errors.New("timeout"))
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf", nil)

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.Error(t, err)
	assert.Len(t, report.Submitted, 2)

	// The unchecked configuration is picked up by the next submission.
	f.checker.ExpectedCalls = nil
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	again, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, again.Submitted, 1)
	assert.Equal(t, 2, again.Unchanged)
}

func TestSubmitBatch_WorkflowIDsSurviveStampFailure(t *testing.T) {
	ctx := context.Background()
	stamp := &unstampedRepository{err: errors.New("connection reset")}
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		stamp.WorkflowRepository = r
		return stamp
	})

	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	f.checker.On("Exists", mock.Anything, model.BatchTypeEDMCreation, mock.Anything).Return(false, nil)
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-1", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-2", nil).Once()
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-3", nil).Once()

	report, err := f.batches.SubmitBatch(ctx, batchID)
	require.Error(t, err)
	assert.ErrorIs(t, err, stamp.err)
	require.NotNil(t, report)
	assert.Len(t, report.Submitted, 3)

	jobs, err := f.store.Repo.FindJobsByBatchID(ctx, batchID, false)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	var workflowIDs []string
	for _, j := range jobs {
		assert.Equal(t, model.JobStatusSubmitted, j.Status)
		workflowIDs = append(workflowIDs, j.WorkflowID)
	}
	assert.ElementsMatch(t, []string{"wf-1", "wf-2", "wf-3"}, workflowIDs)
	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Nil(t, batch.SubmittedTS)

	// Retrying stamps the batch without submitting anything twice.
	stamp.err = nil
	again, err := f.batches.SubmitBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Empty(t, again.Submitted)
	assert.Equal(t, 3, again.Unchanged)
	f.client.AssertNumberOfCalls(t, "Submit", 3)

	batch, err = f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.NotNil(t, batch.SubmittedTS)
}

func TestSubmitPendingJobs_ReopensAfterStampFailure(t *testing.T) {
	ctx := context.Background()
	stamp := &unstampedRepository{}
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		stamp.WorkflowRepository = r
		return stamp
	})
	batchID, jobs := f.submittedBatch(t)

	f.pollReturns("wf-1", port.WorkflowStatusFinished)
	f.pollReturns("wf-2", port.WorkflowStatusFailed)
	f.pollReturns("wf-3", port.WorkflowStatusFinished)
	for _, j := range jobs {
		_, err := f.jobs.TrackJobStatus(ctx, j.ID)
		require.NoError(t, err)
	}
	status, err := f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	require.Equal(t, model.BatchStatusFailed, status)

	newJobID, err := f.jobs.ResubmitJob(ctx, jobs[1].ID, nil, "retry")
	require.NoError(t, err)

	stamp.err = errors.New("connection reset")
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-4", nil).Once()
	pending, err := f.batches.SubmitPendingJobs(ctx, batchID)
	require.Error(t, err)
	assert.ErrorIs(t, err, stamp.err)
	assert.Equal(t, []int64{newJobID}, pending.Submitted)

	newJob, err := f.store.Repo.FindJobByID(ctx, newJobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusSubmitted, newJob.Status)
	assert.Equal(t, "wf-4", newJob.WorkflowID)
	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, batch.Status)

	stamp.err = nil
	again, err := f.batches.SubmitPendingJobs(ctx, batchID)
	require.NoError(t, err)
	assert.Empty(t, again.Submitted)
	assert.Equal(t, 3, again.Unchanged)
	f.client.AssertNumberOfCalls(t, "Submit", 4)

	batch, err = f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, batch.Status)
}

func TestUpdateBatchStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)

	assert.True(t, exception.IsBatchError(f.batches.UpdateBatchStatus(ctx, batchID, "DONE")))
	assert.True(t, exception.IsBatchError(f.batches.UpdateBatchStatus(ctx, 9999, model.BatchStatusError)))

	require.NoError(t, f.batches.UpdateBatchStatus(ctx, batchID, model.BatchStatusError))
	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusError, batch.Status)
	assert.NotNil(t, batch.CompletedTS)
}
