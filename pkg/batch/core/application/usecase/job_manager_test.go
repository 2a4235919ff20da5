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
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
)

func TestResubmitJob_WithOverride(t *testing.T) {
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
	require.Equal(t, model.BatchStatusFailed, status)

	original := jobs[1]
	newJobID, err := f.jobs.ResubmitJob(ctx, original.ID, model.Payload{"foo": "bar"}, "fixed config")
	require.NoError(t, err)

	oldJob, err := f.store.Repo.FindJobByID(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, oldJob.Skipped)
	assert.Equal(t, "Resubmitted: fixed config", oldJob.SkippedReasonTxt)

	newJob, err := f.store.Repo.FindJobByID(ctx, newJobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInitiated, newJob.Status)
	require.NotNil(t, newJob.ParentJobID)
	assert.Equal(t, original.ID, *newJob.ParentJobID)
	assert.True(t, newJob.Overridden)
	assert.Equal(t, "fixed config", newJob.OverrideReasonTxt)

	oldJC, err := f.store.Repo.FindJobConfigurationByID(ctx, original.JobConfigurationID)
	require.NoError(t, err)
	newJC, err := f.store.Repo.FindJobConfigurationByID(ctx, newJob.JobConfigurationID)
	require.NoError(t, err)
	assert.True(t, oldJC.Skipped)
	assert.Equal(t, model.JobConfigurationStatusSkipped, oldJC.Status)
	assert.Equal(t, model.JobConfigurationStatusOverridden, newJC.Status)
	require.NotNil(t, oldJC.OverrideJobConfigurationID)
	assert.Equal(t, newJC.ID, *oldJC.OverrideJobConfigurationID)
	assert.True(t, newJC.Overridden)
	assert.False(t, newJC.Skipped)
	assert.Equal(t, "fixed config", newJC.OverrideReasonTxt)
	require.NotNil(t, newJC.ParentJobConfigurationID)
	assert.Equal(t, oldJC.ID, *newJC.ParentJobConfigurationID)

	payload, err := f.jobs.GetJobConfig(ctx, newJobID)
	require.NoError(t, err)
	assert.Equal(t, model.Payload{"foo": "bar"}, payload)

	// The replacement is submitted through the pending path, which reopens the batch.
	f.client.On("Submit", mock.Anything, mock.Anything).Return("wf-4", nil).Once()
	pending, err := f.batches.SubmitPendingJobs(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, []int64{newJobID}, pending.Submitted)

	batch, err := f.store.Repo.FindBatchByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusActive, batch.Status)

	f.pollReturns("wf-4", port.WorkflowStatusFinished)
	_, err = f.jobs.TrackJobStatus(ctx, newJobID)
	require.NoError(t, err)
	status, err = f.batches.ReconBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, status)
}

func TestResubmitJob_WithoutOverrideKeepsPayload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, jobs := f.submittedBatch(t)

	require.NoError(t, f.jobs.UpdateJobStatus(ctx, jobs[0].ID, model.JobStatusError, usecase.WithErrorMessage("quota exceeded")))

	before, err := f.jobs.GetJobConfig(ctx, jobs[0].ID)
	require.NoError(t, err)

	newJobID, err := f.jobs.ResubmitJob(ctx, jobs[0].ID, nil, "")
	require.NoError(t, err)

	newJob, err := f.store.Repo.FindJobByID(ctx, newJobID)
	require.NoError(t, err)
	assert.Equal(t, jobs[0].JobConfigurationID, newJob.JobConfigurationID)
	assert.False(t, newJob.Overridden)

	after, err := f.jobs.GetJobConfig(ctx, newJobID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	oldJob, err := f.store.Repo.FindJobByID(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Resubmitted", oldJob.SkippedReasonTxt)
	assert.Equal(t, "quota exceeded", oldJob.ErrorMessage)
}

func TestResubmitJob_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, jobs := f.submittedBatch(t)

	_, err := f.jobs.ResubmitJob(ctx, jobs[0].ID, nil, "still running")
	assert.True(t, exception.IsJobError(err), "in-flight jobs cannot be resubmitted")

	f.pollReturns("wf-2", port.WorkflowStatusFailed)
	_, err = f.jobs.TrackJobStatus(ctx, jobs[1].ID)
	require.NoError(t, err)

	_, err = f.jobs.ResubmitJob(ctx, jobs[1].ID, model.Payload{"foo": "bar"}, "first")
	require.NoError(t, err)
	_, err = f.jobs.ResubmitJob(ctx, jobs[1].ID, model.Payload{"foo": "baz"}, "second")
	assert.True(t, exception.IsJobError(err), "a replaced job cannot be resubmitted again")

	_, err = f.jobs.ResubmitJob(ctx, 9999, nil, "")
	assert.True(t, exception.IsJobError(err))
	assert.ErrorIs(t, err, repository.ErrJobNotFound)

	current, err := f.store.Repo.FindJobConfigurationsByBatchID(ctx, jobs[1].BatchID, false)
	require.NoError(t, err)
	assert.Len(t, current, 3, "only one replacement configuration exists")
}

func TestResubmitJob_LosingConcurrentWriterRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		return &racingRepository{WorkflowRepository: r}
	})
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	jcs, err := f.batches.GetBatchJobConfigurations(ctx, batchID, false)
	require.NoError(t, err)
	jobID, err := f.jobs.CreateJob(ctx, jcs[0].ID)
	require.NoError(t, err)

	_, err = f.jobs.ResubmitJob(ctx, jobID, model.Payload{"foo": "bar"}, "race")
	require.Error(t, err)
	assert.True(t, exception.IsJobError(err))
	assert.True(t, exception.IsConcurrentModification(err))

	all, err := f.store.Repo.FindJobsByBatchID(ctx, batchID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	configs, err := f.store.Repo.FindJobConfigurationsByBatchID(ctx, batchID, true)
	require.NoError(t, err)
	assert.Len(t, configs, 3)
}

func TestResubmitJob_LineageTerminates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	jcs, err := f.batches.GetBatchJobConfigurations(ctx, batchID, false)
	require.NoError(t, err)

	jobID, err := f.jobs.CreateJob(ctx, jcs[0].ID)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		jobID, err = f.jobs.ResubmitJob(ctx, jobID, nil, "retry")
		require.NoError(t, err)
	}

	all, err := f.store.Repo.FindJobsByBatchID(ctx, batchID, true)
	require.NoError(t, err)
	byID := make(map[int64]*model.Job, len(all))
	for _, j := range all {
		byID[j.ID] = j
	}

	steps := 0
	for j := byID[jobID]; j.ParentJobID != nil; steps++ {
		require.Less(t, steps, len(all), "parent chain must not loop")
		j = byID[*j.ParentJobID]
		assert.True(t, j.Skipped, "every replaced job is skipped")
	}
	assert.Equal(t, 3, steps)
	assert.False(t, byID[jobID].Skipped)
}

func TestCreateJobWithConfig_Atomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(r repository.WorkflowRepository) repository.WorkflowRepository {
		return &failingJobRepository{WorkflowRepository: r, err: exception.NewDatabaseError("test", "insert failed", errors.New("disk full"))}
	})
	batch := &model.Batch{ConfigurationID: f.h.Configuration.ID, StepID: f.h.StepRun.ID, BatchType: model.BatchTypeDefault, Status: model.BatchStatusActive}
	require.NoError(t, f.store.Repo.SaveBatch(ctx, batch))

	_, _, err := f.jobs.CreateJobWithConfig(ctx, batch.ID, f.h.Configuration.ID, model.Payload{"k": "v"})
	require.Error(t, err)
	assert.True(t, exception.IsDatabaseError(err))

	jcs, err := f.store.Repo.FindJobConfigurationsByBatchID(ctx, batch.ID, true)
	require.NoError(t, err)
	assert.Empty(t, jcs)
}

func TestCreateJobWithConfig(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batch := &model.Batch{ConfigurationID: f.h.Configuration.ID, StepID: f.h.StepRun.ID, BatchType: model.BatchTypeDefault, Status: model.BatchStatusActive}
	require.NoError(t, f.store.Repo.SaveBatch(ctx, batch))

	jcID, jobID, err := f.jobs.CreateJobWithConfig(ctx, batch.ID, f.h.Configuration.ID, model.Payload{"k": "v"})
	require.NoError(t, err)

	job, err := f.store.Repo.FindJobByID(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jcID, job.JobConfigurationID)
	assert.Equal(t, model.JobStatusInitiated, job.Status)

	payload, err := f.jobs.GetJobConfig(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "v", payload.GetString("k"))
}

func TestJobManager_StatusRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	jcs, err := f.batches.GetBatchJobConfigurations(ctx, batchID, false)
	require.NoError(t, err)
	jobID, err := f.jobs.CreateJob(ctx, jcs[0].ID)
	require.NoError(t, err)

	_, err = f.jobs.TrackJobStatus(ctx, jobID)
	assert.True(t, exception.IsJobError(err), "jobs without a workflow cannot be tracked")

	assert.True(t, exception.IsJobError(f.jobs.UpdateJobStatus(ctx, jobID, "DONE")))

	f.client.On("Submit", mock.Anything, mock.MatchedBy(func(s port.Submission) bool {
		return s.JobID == jobID && s.BatchType == model.BatchTypeEDMCreation && s.Payload.GetString("Database") == "EDM_A"
	})).Return("wf-a", nil).Once()
	workflowID, err := f.jobs.SubmitJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "wf-a", workflowID)

	_, err = f.jobs.SubmitJob(ctx, jobID)
	assert.True(t, exception.IsJobError(err), "only INITIATED jobs can be submitted")

	f.client.On("Poll", mock.Anything, "wf-a").Return(&port.WorkflowState{Status: port.WorkflowStatusRunning, ProgressPct: 40}, nil).Once()
	status, err := f.jobs.TrackJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, status)

	f.client.On("Poll", mock.Anything, "wf-a").Return(&port.WorkflowState{Status: port.WorkflowStatusFailed, ProgressPct: 40, Message: "bad input"}, nil).Once()
	status, err = f.jobs.TrackJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, status)

	// Terminal jobs are answered from the store.
	status, err = f.jobs.TrackJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, status)
	f.client.AssertNumberOfCalls(t, "Poll", 2)

	job, err := f.store.Repo.FindJobByID(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "bad input", job.ErrorMessage)
	assert.InDelta(t, 40, job.ProgressPct, 0.001)
	assert.NotNil(t, job.SubmittedTS)
	assert.NotNil(t, job.CompletedTS)

	require.NoError(t, f.jobs.SkipJob(ctx, jobID, "not needed", true))
	assert.True(t, exception.IsJobError(f.jobs.SkipJob(ctx, jobID, "again", false)))

	_, err = f.jobs.CreateJob(ctx, jcs[0].ID)
	assert.True(t, exception.IsJobError(err), "skipped configurations get no new jobs")
}

func TestSubmitJob_RemoteErrorKeepsInitiated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	batchID, err := f.batches.CreateBatch(ctx, f.h.Configuration.ID, f.h.StepRun.ID, model.BatchTypeEDMCreation)
	require.NoError(t, err)
	jcs, err := f.batches.GetBatchJobConfigurations(ctx, batchID, false)
	require.NoError(t, err)
	jobID, err := f.jobs.CreateJob(ctx, jcs[0].ID)
	require.NoError(t, err)

	refused := errors.New("connection refused")
	f.client.On("Submit", mock.Anything, mock.Anything).Return("", refused)
	_, err = f.jobs.SubmitJob(ctx, jobID)
	assert.ErrorIs(t, err, refused)

	job, err := f.store.Repo.FindJobByID(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInitiated, job.Status)
	assert.Nil(t, job.SubmittedTS)
}

func TestMapWorkflowStatus(t *testing.T) {
	cases := map[string]model.JobStatus{
		port.WorkflowStatusQueued:          model.JobStatusQueued,
		port.WorkflowStatusPending:         model.JobStatusQueued,
		port.WorkflowStatusRunning:         model.JobStatusRunning,
		port.WorkflowStatusCancelRequested: model.JobStatusRunning,
		port.WorkflowStatusCancelling:      model.JobStatusRunning,
		port.WorkflowStatusFinished:        model.JobStatusFinished,
		port.WorkflowStatusFailed:          model.JobStatusFailed,
		port.WorkflowStatusCancelled:       model.JobStatusCancelled,
	}
	for in, want := range cases {
		got, err := usecase.MapWorkflowStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := usecase.MapWorkflowStatus("EXPLODED")
	assert.True(t, exception.IsJobError(err))
}
