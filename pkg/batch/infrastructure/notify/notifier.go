// Package notify holds the logging implementations of the notifier and step-launcher ports.
package notify

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// LogNotifier writes batch completion notices to the log.
type LogNotifier struct{}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyBatchFinished(ctx context.Context, summary *model.BatchSummary) error {
	msg := FormatSummary(summary)
	if summary.Status == model.BatchStatusCompleted {
		logger.Infof("%s", msg)
	} else {
		logger.Warnf("%s", msg)
	}
	return nil
}

// FormatSummary renders a one-line description of a batch summary.
func FormatSummary(s *model.BatchSummary) string {
	statuses := make([]string, 0, len(s.JobsByStatus))
	for status, n := range s.JobsByStatus {
		statuses = append(statuses, fmt.Sprintf("%s=%d", status, n))
	}
	sort.Strings(statuses)
	return fmt.Sprintf("Batch %d (%s) %s: %d jobs [%s], %d skipped, %d configurations (%d skipped, %d overridden)",
		s.BatchID, s.BatchType, s.Status, s.TotalJobs, strings.Join(statuses, " "), s.SkippedJobs,
		s.TotalConfigurations, s.SkippedConfigurations, s.OverriddenConfigurations)
}

// LogStepLauncher logs the notebook that should run next. Executing notebooks is left to the
// notebook runner watching these entries.
type LogStepLauncher struct{}

// NewLogStepLauncher creates a new instance of LogStepLauncher.
func NewLogStepLauncher() *LogStepLauncher {
	return &LogStepLauncher{}
}

func (l *LogStepLauncher) Launch(ctx context.Context, next *model.NextStep) error {
	if _, err := os.Stat(next.NotebookPath); err != nil {
		logger.Warnf("Next step notebook %s is not accessible: %v", next.NotebookPath, err)
	}
	logger.Infof("Next step for cycle '%s': stage %d step %d (%s) -> %s [triggered by batch %d]",
		next.CycleName, next.StageNum, next.StepNum, next.Description, next.NotebookPath, next.TriggeredBy)
	return nil
}

var (
	_ port.Notifier     = (*LogNotifier)(nil)
	_ port.StepLauncher = (*LogStepLauncher)(nil)
)
