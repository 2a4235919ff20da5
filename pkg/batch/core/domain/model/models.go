package model

import (
	"time"
)

// Cycle is the top-level unit of recurring work, e.g. one quarterly analysis run.
// At most one cycle is ACTIVE at a time.
type Cycle struct {
	ID         int64
	Name       string
	Status     CycleStatus
	CreatedTS  time.Time
	ArchivedTS *time.Time
}

// IsActive reports whether the cycle is the current one.
func (c *Cycle) IsActive() bool {
	return c != nil && c.Status == CycleStatusActive
}

// Stage is an ordered phase within a cycle.
type Stage struct {
	ID        int64
	CycleID   int64
	StageNum  int
	StageName string
	CreatedTS time.Time
}

// Step is an ordered unit of work within a stage, backed by one notebook.
type Step struct {
	ID           int64
	StageID      int64
	StepNum      int
	StepName     string
	NotebookPath string
	CreatedTS    time.Time
}

// StepRun is one execution attempt of a step.
type StepRun struct {
	ID           int64
	StepID       int64
	RunNum       int
	Status       StepRunStatus
	StartedTS    time.Time
	CompletedTS  *time.Time
	ErrorMessage string
}

// Configuration is an uploaded master configuration bound to a cycle.
type Configuration struct {
	ID                int64
	CycleID           int64
	ConfigurationData Payload
	FileName          string
	FileLastUpdatedTS *time.Time
	Status            ConfigurationStatus
	CreatedTS         time.Time
	UpdatedTS         time.Time
}

// Batch is one execution of a transformer against a configuration, scoped to a step run.
type Batch struct {
	ID              int64
	ConfigurationID int64
	// StepID references the step run that created the batch.
	StepID      int64
	BatchType   string
	Status      BatchStatus
	CreatedTS   time.Time
	SubmittedTS *time.Time
	CompletedTS *time.Time
	UpdatedTS   time.Time
}

// JobConfiguration is one unit of transformer output belonging to a batch.
//
// Lineage is kept in nullable references: ParentJobConfigurationID points at the configuration an
// override was derived from, OverrideJobConfigurationID at the configuration that superseded this one.
// The current configurations of a batch are the rows with Skipped == false.
type JobConfiguration struct {
	ID                         int64
	BatchID                    int64
	ConfigurationID            int64
	JobConfigurationData       Payload
	Status                     JobConfigurationStatus
	Skipped                    bool
	SkippedReasonTxt           string
	Overridden                 bool
	OverrideReasonTxt          string
	ParentJobConfigurationID   *int64
	OverrideJobConfigurationID *int64
	CreatedTS                  time.Time
	UpdatedTS                  time.Time
}

// Job is one submission of a job configuration to the external execution system.
// ParentJobID is set on resubmission and links the job to the attempt it replaced.
type Job struct {
	ID                 int64
	BatchID            int64
	JobConfigurationID int64
	WorkflowID         string
	Status             JobStatus
	Skipped            bool
	SkippedReasonTxt   string
	ParentJobID        *int64
	Overridden         bool
	OverrideReasonTxt  string
	ErrorMessage       string
	ProgressPct        float64
	CreatedTS          time.Time
	SubmittedTS        *time.Time
	CompletedTS        *time.Time
	UpdatedTS          time.Time
}

// HasWorkflow reports whether the job was accepted by the external system.
func (j *Job) HasWorkflow() bool {
	return j.WorkflowID != ""
}

// BatchContext is the step/stage/cycle context of a batch, used by chain decisions.
type BatchContext struct {
	BatchID     int64
	BatchType   string
	BatchStatus BatchStatus
	StepRunID   int64
	StepID      int64
	StepNum     int
	StepName    string
	StageID     int64
	StageNum    int
	StageName   string
	CycleID     int64
	CycleName   string
	CycleStatus CycleStatus
}

// BatchSummary counts the jobs and job configurations of a batch.
// Totals include skipped rows; JobsByStatus counts current jobs only.
type BatchSummary struct {
	BatchID                  int64
	BatchType                string
	Status                   BatchStatus
	TotalJobs                int
	SkippedJobs              int
	JobsByStatus             map[JobStatus]int
	TotalConfigurations      int
	SkippedConfigurations    int
	OverriddenConfigurations int
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
