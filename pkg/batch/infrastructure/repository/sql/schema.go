package sql

import (
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

const (
	tableCycle            = "irp_cycle"
	tableStage            = "irp_stage"
	tableStep             = "irp_step"
	tableStepRun          = "irp_step_run"
	tableConfiguration    = "irp_configuration"
	tableBatch            = "irp_batch"
	tableJobConfiguration = "irp_job_configuration"
	tableJob              = "irp_job"
)

// CycleEntity is the persisted form of model.Cycle.
type CycleEntity struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement"`
	CycleName  string            `gorm:"column:cycle_name"`
	Status     model.CycleStatus `gorm:"column:status"`
	CreatedTS  time.Time         `gorm:"column:created_ts"`
	ArchivedTS *time.Time        `gorm:"column:archived_ts"`
}

func (CycleEntity) TableName() string    { return tableCycle }
func (e *CycleEntity) PrimaryKey() int64 { return e.ID }

// StageEntity is the persisted form of model.Stage.
type StageEntity struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CycleID   int64     `gorm:"column:cycle_id"`
	StageNum  int       `gorm:"column:stage_num"`
	StageName string    `gorm:"column:stage_name"`
	CreatedTS time.Time `gorm:"column:created_ts"`
}

func (StageEntity) TableName() string    { return tableStage }
func (e *StageEntity) PrimaryKey() int64 { return e.ID }

// StepEntity is the persisted form of model.Step.
type StepEntity struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StageID      int64     `gorm:"column:stage_id"`
	StepNum      int       `gorm:"column:step_num"`
	StepName     string    `gorm:"column:step_name"`
	NotebookPath *string   `gorm:"column:notebook_path"`
	CreatedTS    time.Time `gorm:"column:created_ts"`
}

func (StepEntity) TableName() string    { return tableStep }
func (e *StepEntity) PrimaryKey() int64 { return e.ID }

// StepRunEntity is the persisted form of model.StepRun.
type StepRunEntity struct {
	ID           int64               `gorm:"column:id;primaryKey;autoIncrement"`
	StepID       int64               `gorm:"column:step_id"`
	RunNum       int                 `gorm:"column:run_num"`
	Status       model.StepRunStatus `gorm:"column:status"`
	StartedTS    time.Time           `gorm:"column:started_ts"`
	CompletedTS  *time.Time          `gorm:"column:completed_ts"`
	ErrorMessage *string             `gorm:"column:error_message"`
}

func (StepRunEntity) TableName() string    { return tableStepRun }
func (e *StepRunEntity) PrimaryKey() int64 { return e.ID }

// ConfigurationEntity is the persisted form of model.Configuration.
type ConfigurationEntity struct {
	ID                int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	CycleID           int64                     `gorm:"column:cycle_id"`
	ConfigurationData model.Payload             `gorm:"column:configuration_data"`
	FileName          *string                   `gorm:"column:file_name"`
	FileLastUpdatedTS *time.Time                `gorm:"column:file_last_updated_ts"`
	Status            model.ConfigurationStatus `gorm:"column:status"`
	CreatedTS         time.Time                 `gorm:"column:created_ts"`
	UpdatedTS         time.Time                 `gorm:"column:updated_ts"`
}

func (ConfigurationEntity) TableName() string    { return tableConfiguration }
func (e *ConfigurationEntity) PrimaryKey() int64 { return e.ID }

// BatchEntity is the persisted form of model.Batch.
type BatchEntity struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	ConfigurationID int64             `gorm:"column:configuration_id"`
	StepID          int64             `gorm:"column:step_id"`
	BatchType       string            `gorm:"column:batch_type"`
	Status          model.BatchStatus `gorm:"column:status"`
	CreatedTS       time.Time         `gorm:"column:created_ts"`
	SubmittedTS     *time.Time        `gorm:"column:submitted_ts"`
	CompletedTS     *time.Time        `gorm:"column:completed_ts"`
	UpdatedTS       time.Time         `gorm:"column:updated_ts"`
}

func (BatchEntity) TableName() string    { return tableBatch }
func (e *BatchEntity) PrimaryKey() int64 { return e.ID }

// JobConfigurationEntity is the persisted form of model.JobConfiguration.
type JobConfigurationEntity struct {
	ID                         int64                        `gorm:"column:id;primaryKey;autoIncrement"`
	BatchID                    int64                        `gorm:"column:batch_id"`
	ConfigurationID            int64                        `gorm:"column:configuration_id"`
	JobConfigurationData       model.Payload                `gorm:"column:job_configuration_data"`
	Status                     model.JobConfigurationStatus `gorm:"column:status"`
	Skipped                    bool                         `gorm:"column:skipped"`
	SkippedReasonTxt           *string                      `gorm:"column:skipped_reason_txt"`
	Overridden                 bool                         `gorm:"column:overridden"`
	OverrideReasonTxt          *string                      `gorm:"column:override_reason_txt"`
	ParentJobConfigurationID   *int64                       `gorm:"column:parent_job_configuration_id"`
	OverrideJobConfigurationID *int64                       `gorm:"column:override_job_configuration_id"`
	CreatedTS                  time.Time                    `gorm:"column:created_ts"`
	UpdatedTS                  time.Time                    `gorm:"column:updated_ts"`
}

func (JobConfigurationEntity) TableName() string    { return tableJobConfiguration }
func (e *JobConfigurationEntity) PrimaryKey() int64 { return e.ID }

// JobEntity is the persisted form of model.Job.
type JobEntity struct {
	ID                 int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BatchID            int64           `gorm:"column:batch_id"`
	JobConfigurationID int64           `gorm:"column:job_configuration_id"`
	WorkflowID         *string         `gorm:"column:workflow_id"`
	Status             model.JobStatus `gorm:"column:status"`
	Skipped            bool            `gorm:"column:skipped"`
	SkippedReasonTxt   *string         `gorm:"column:skipped_reason_txt"`
	ParentJobID        *int64          `gorm:"column:parent_job_id"`
	Overridden         bool            `gorm:"column:overridden"`
	OverrideReasonTxt  *string         `gorm:"column:override_reason_txt"`
	ErrorMessage       *string         `gorm:"column:error_message"`
	ProgressPct        float64         `gorm:"column:progress_pct"`
	CreatedTS          time.Time       `gorm:"column:created_ts"`
	SubmittedTS        *time.Time      `gorm:"column:submitted_ts"`
	CompletedTS        *time.Time      `gorm:"column:completed_ts"`
	UpdatedTS          time.Time       `gorm:"column:updated_ts"`
}

func (JobEntity) TableName() string    { return tableJob }
func (e *JobEntity) PrimaryKey() int64 { return e.ID }

// batchContextRow is the result row of the batch → step run → step → stage → cycle join.
type batchContextRow struct {
	BatchID     int64             `gorm:"column:batch_id"`
	BatchType   string            `gorm:"column:batch_type"`
	BatchStatus model.BatchStatus `gorm:"column:batch_status"`
	StepRunID   int64             `gorm:"column:step_run_id"`
	StepID      int64             `gorm:"column:step_id"`
	StepNum     int               `gorm:"column:step_num"`
	StepName    string            `gorm:"column:step_name"`
	StageID     int64             `gorm:"column:stage_id"`
	StageNum    int               `gorm:"column:stage_num"`
	StageName   string            `gorm:"column:stage_name"`
	CycleID     int64             `gorm:"column:cycle_id"`
	CycleName   string            `gorm:"column:cycle_name"`
	CycleStatus model.CycleStatus `gorm:"column:cycle_status"`
}

type maxRunRow struct {
	MaxRun int `gorm:"column:max_run"`
}
