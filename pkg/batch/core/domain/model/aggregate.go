package model

// AggregateBatchStatus derives a batch status from the statuses of its non-skipped jobs.
//
//	no jobs                            -> COMPLETED
//	any job not terminal               -> ACTIVE
//	all terminal, any FAILED or ERROR  -> FAILED
//	all terminal, any CANCELLED        -> CANCELLED
//	all terminal otherwise             -> COMPLETED
//
// Statuses outside the known vocabulary are treated as not terminal.
func AggregateBatchStatus(jobStatuses []JobStatus) BatchStatus {
	if len(jobStatuses) == 0 {
		return BatchStatusCompleted
	}

	failed, cancelled := false, false
	for _, s := range jobStatuses {
		if !s.IsTerminal() {
			return BatchStatusActive
		}
		if s.IsFailure() {
			failed = true
		}
		if s == JobStatusCancelled {
			cancelled = true
		}
	}

	switch {
	case failed:
		return BatchStatusFailed
	case cancelled:
		return BatchStatusCancelled
	default:
		return BatchStatusCompleted
	}
}
