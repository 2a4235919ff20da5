package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/notify"
)

func TestFormatSummary(t *testing.T) {
	s := &model.BatchSummary{
		BatchID:   7,
		BatchType: model.BatchTypeEDMCreation,
		Status:    model.BatchStatusFailed,
		TotalJobs: 4,
		JobsByStatus: map[model.JobStatus]int{
			model.JobStatusFinished: 2,
			model.JobStatusFailed:   1,
		},
		SkippedJobs:              1,
		TotalConfigurations:      4,
		SkippedConfigurations:    1,
		OverriddenConfigurations: 1,
	}
	assert.Equal(t,
		"Batch 7 (EDM Creation) FAILED: 4 jobs [FAILED=1 FINISHED=2], 1 skipped, 4 configurations (1 skipped, 1 overridden)",
		notify.FormatSummary(s))
}

func TestLogAdapters_NeverFail(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, notify.NewLogNotifier().NotifyBatchFinished(ctx, &model.BatchSummary{Status: model.BatchStatusCompleted}))
	assert.NoError(t, notify.NewLogStepLauncher().Launch(ctx, &model.NextStep{NotebookPath: "/does/not/exist.ipynb"}))
}
