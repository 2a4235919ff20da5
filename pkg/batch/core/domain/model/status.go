package model

// CycleStatus represents the state of a cycle.
type CycleStatus string

const (
	CycleStatusActive   CycleStatus = "ACTIVE"
	CycleStatusArchived CycleStatus = "ARCHIVED"
)

// String returns the string representation of the CycleStatus.
func (s CycleStatus) String() string { return string(s) }

// StepRunStatus represents the state of one execution attempt of a step.
type StepRunStatus string

const (
	StepRunStatusActive    StepRunStatus = "ACTIVE"
	StepRunStatusCompleted StepRunStatus = "COMPLETED"
	StepRunStatusFailed    StepRunStatus = "FAILED"
	StepRunStatusSkipped   StepRunStatus = "SKIPPED"
)

// String returns the string representation of the StepRunStatus.
func (s StepRunStatus) String() string { return string(s) }

// IsFinished checks if the StepRunStatus represents a finished run.
func (s StepRunStatus) IsFinished() bool {
	return s == StepRunStatusCompleted || s == StepRunStatusFailed || s == StepRunStatusSkipped
}

// ConfigurationStatus represents the state of an uploaded master configuration.
type ConfigurationStatus string

const (
	ConfigurationStatusNew     ConfigurationStatus = "NEW"
	ConfigurationStatusValid   ConfigurationStatus = "VALID"
	ConfigurationStatusInvalid ConfigurationStatus = "INVALID"
	ConfigurationStatusActive  ConfigurationStatus = "ACTIVE"
	ConfigurationStatusError   ConfigurationStatus = "ERROR"
)

// String returns the string representation of the ConfigurationStatus.
func (s ConfigurationStatus) String() string { return string(s) }

// BatchStatus represents the aggregate state of a batch.
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusFailed    BatchStatus = "FAILED"
	BatchStatusCancelled BatchStatus = "CANCELLED"
	BatchStatusError     BatchStatus = "ERROR"
)

// String returns the string representation of the BatchStatus.
func (s BatchStatus) String() string { return string(s) }

// IsTerminal checks if the BatchStatus represents a finished batch.
func (s BatchStatus) IsTerminal() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusCancelled, BatchStatusError:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the known batch statuses.
func (s BatchStatus) IsValid() bool {
	return s == BatchStatusActive || s.IsTerminal()
}

// JobConfigurationStatus mirrors the skipped/overridden flags of a job configuration.
type JobConfigurationStatus string

const (
	// JobConfigurationStatusActive marks a configuration produced by a transformer that is still current.
	JobConfigurationStatusActive JobConfigurationStatus = "ACTIVE"
	// JobConfigurationStatusOverridden marks a current configuration created by an override on resubmission.
	JobConfigurationStatusOverridden JobConfigurationStatus = "OVERRIDDEN"
	// JobConfigurationStatusSkipped marks a configuration that was skipped or superseded.
	JobConfigurationStatusSkipped JobConfigurationStatus = "SKIPPED"
)

// String returns the string representation of the JobConfigurationStatus.
func (s JobConfigurationStatus) String() string { return string(s) }

// JobStatus represents the state of one submission to the external execution system.
type JobStatus string

const (
	JobStatusInitiated JobStatus = "INITIATED"
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusSubmitted JobStatus = "SUBMITTED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusFinished  JobStatus = "FINISHED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusError     JobStatus = "ERROR"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// AllJobStatuses lists every job status in lifecycle order.
var AllJobStatuses = []JobStatus{
	JobStatusInitiated,
	JobStatusQueued,
	JobStatusSubmitted,
	JobStatusRunning,
	JobStatusFinished,
	JobStatusFailed,
	JobStatusError,
	JobStatusCancelled,
}

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string { return string(s) }

// IsTerminal checks if the JobStatus represents a finished job.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusFinished, JobStatusFailed, JobStatusError, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// IsInFlight reports whether the job has been handed to the external system and has not finished.
func (s JobStatus) IsInFlight() bool {
	switch s {
	case JobStatusQueued, JobStatusSubmitted, JobStatusRunning:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the job finished unsuccessfully because of an error.
func (s JobStatus) IsFailure() bool {
	return s == JobStatusFailed || s == JobStatusError
}

// IsValid reports whether s is one of the known job statuses.
func (s JobStatus) IsValid() bool {
	for _, known := range AllJobStatuses {
		if s == known {
			return true
		}
	}
	return false
}
