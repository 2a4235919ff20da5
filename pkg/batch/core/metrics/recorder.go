package metrics

import (
	"context"
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// MetricRecorder records metrics of the batch/job lifecycle.
// Implementations must be safe for concurrent use.
type MetricRecorder interface {
	// RecordJobSubmission counts one submission attempt of a job of batchType; err is nil on success.
	RecordJobSubmission(ctx context.Context, batchType string, err error)

	// RecordJobStatus counts one observed job status, either polled or written directly.
	RecordJobStatus(ctx context.Context, batchType string, status model.JobStatus)

	// RecordJobResubmission counts one resubmission; overridden is true when a new configuration was supplied.
	RecordJobResubmission(ctx context.Context, batchType string, overridden bool)

	// RecordBatchTransition counts one reconciliation that moved a batch from one status to another.
	RecordBatchTransition(ctx context.Context, batchType string, from, to model.BatchStatus)

	// RecordDuration records the execution time of an operation (e.g., "submit_batch", "monitor_pass").
	// tags holds additional labels, e.g. {"batch_type": "EDM Creation"}.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
