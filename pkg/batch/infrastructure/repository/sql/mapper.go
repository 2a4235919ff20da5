package sql

import (
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// --- Mapper functions ---

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fromDomainCycle(c *model.Cycle) *CycleEntity {
	return &CycleEntity{
		ID:         c.ID,
		CycleName:  c.Name,
		Status:     c.Status,
		CreatedTS:  c.CreatedTS,
		ArchivedTS: c.ArchivedTS,
	}
}

func toDomainCycle(e *CycleEntity) *model.Cycle {
	return &model.Cycle{
		ID:         e.ID,
		Name:       e.CycleName,
		Status:     e.Status,
		CreatedTS:  e.CreatedTS,
		ArchivedTS: e.ArchivedTS,
	}
}

func fromDomainStage(s *model.Stage) *StageEntity {
	return &StageEntity{
		ID:        s.ID,
		CycleID:   s.CycleID,
		StageNum:  s.StageNum,
		StageName: s.StageName,
		CreatedTS: s.CreatedTS,
	}
}

func toDomainStage(e *StageEntity) *model.Stage {
	return &model.Stage{
		ID:        e.ID,
		CycleID:   e.CycleID,
		StageNum:  e.StageNum,
		StageName: e.StageName,
		CreatedTS: e.CreatedTS,
	}
}

func fromDomainStep(s *model.Step) *StepEntity {
	return &StepEntity{
		ID:           s.ID,
		StageID:      s.StageID,
		StepNum:      s.StepNum,
		StepName:     s.StepName,
		NotebookPath: nullableString(s.NotebookPath),
		CreatedTS:    s.CreatedTS,
	}
}

func toDomainStep(e *StepEntity) *model.Step {
	return &model.Step{
		ID:           e.ID,
		StageID:      e.StageID,
		StepNum:      e.StepNum,
		StepName:     e.StepName,
		NotebookPath: stringValue(e.NotebookPath),
		CreatedTS:    e.CreatedTS,
	}
}

func fromDomainStepRun(r *model.StepRun) *StepRunEntity {
	return &StepRunEntity{
		ID:           r.ID,
		StepID:       r.StepID,
		RunNum:       r.RunNum,
		Status:       r.Status,
		StartedTS:    r.StartedTS,
		CompletedTS:  r.CompletedTS,
		ErrorMessage: nullableString(r.ErrorMessage),
	}
}

func toDomainStepRun(e *StepRunEntity) *model.StepRun {
	return &model.StepRun{
		ID:           e.ID,
		StepID:       e.StepID,
		RunNum:       e.RunNum,
		Status:       e.Status,
		StartedTS:    e.StartedTS,
		CompletedTS:  e.CompletedTS,
		ErrorMessage: stringValue(e.ErrorMessage),
	}
}

func fromDomainConfiguration(c *model.Configuration) *ConfigurationEntity {
	return &ConfigurationEntity{
		ID:                c.ID,
		CycleID:           c.CycleID,
		ConfigurationData: c.ConfigurationData,
		FileName:          nullableString(c.FileName),
		FileLastUpdatedTS: c.FileLastUpdatedTS,
		Status:            c.Status,
		CreatedTS:         c.CreatedTS,
		UpdatedTS:         c.UpdatedTS,
	}
}

func toDomainConfiguration(e *ConfigurationEntity) *model.Configuration {
	return &model.Configuration{
		ID:                e.ID,
		CycleID:           e.CycleID,
		ConfigurationData: e.ConfigurationData,
		FileName:          stringValue(e.FileName),
		FileLastUpdatedTS: e.FileLastUpdatedTS,
		Status:            e.Status,
		CreatedTS:         e.CreatedTS,
		UpdatedTS:         e.UpdatedTS,
	}
}

func fromDomainBatch(b *model.Batch) *BatchEntity {
	return &BatchEntity{
		ID:              b.ID,
		ConfigurationID: b.ConfigurationID,
		StepID:          b.StepID,
		BatchType:       b.BatchType,
		Status:          b.Status,
		CreatedTS:       b.CreatedTS,
		SubmittedTS:     b.SubmittedTS,
		CompletedTS:     b.CompletedTS,
		UpdatedTS:       b.UpdatedTS,
	}
}

func toDomainBatch(e *BatchEntity) *model.Batch {
	return &model.Batch{
		ID:              e.ID,
		ConfigurationID: e.ConfigurationID,
		StepID:          e.StepID,
		BatchType:       e.BatchType,
		Status:          e.Status,
		CreatedTS:       e.CreatedTS,
		SubmittedTS:     e.SubmittedTS,
		CompletedTS:     e.CompletedTS,
		UpdatedTS:       e.UpdatedTS,
	}
}

func fromDomainJobConfiguration(jc *model.JobConfiguration) *JobConfigurationEntity {
	return &JobConfigurationEntity{
		ID:                         jc.ID,
		BatchID:                    jc.BatchID,
		ConfigurationID:            jc.ConfigurationID,
		JobConfigurationData:       jc.JobConfigurationData,
		Status:                     jc.Status,
		Skipped:                    jc.Skipped,
		SkippedReasonTxt:           nullableString(jc.SkippedReasonTxt),
		Overridden:                 jc.Overridden,
		OverrideReasonTxt:          nullableString(jc.OverrideReasonTxt),
		ParentJobConfigurationID:   jc.ParentJobConfigurationID,
		OverrideJobConfigurationID: jc.OverrideJobConfigurationID,
		CreatedTS:                  jc.CreatedTS,
		UpdatedTS:                  jc.UpdatedTS,
	}
}

func toDomainJobConfiguration(e *JobConfigurationEntity) *model.JobConfiguration {
	return &model.JobConfiguration{
		ID:                         e.ID,
		BatchID:                    e.BatchID,
		ConfigurationID:            e.ConfigurationID,
		JobConfigurationData:       e.JobConfigurationData,
		Status:                     e.Status,
		Skipped:                    e.Skipped,
		SkippedReasonTxt:           stringValue(e.SkippedReasonTxt),
		Overridden:                 e.Overridden,
		OverrideReasonTxt:          stringValue(e.OverrideReasonTxt),
		ParentJobConfigurationID:   e.ParentJobConfigurationID,
		OverrideJobConfigurationID: e.OverrideJobConfigurationID,
		CreatedTS:                  e.CreatedTS,
		UpdatedTS:                  e.UpdatedTS,
	}
}

func fromDomainJob(j *model.Job) *JobEntity {
	return &JobEntity{
		ID:                 j.ID,
		BatchID:            j.BatchID,
		JobConfigurationID: j.JobConfigurationID,
		WorkflowID:         nullableString(j.WorkflowID),
		Status:             j.Status,
		Skipped:            j.Skipped,
		SkippedReasonTxt:   nullableString(j.SkippedReasonTxt),
		ParentJobID:        j.ParentJobID,
		Overridden:         j.Overridden,
		OverrideReasonTxt:  nullableString(j.OverrideReasonTxt),
		ErrorMessage:       nullableString(j.ErrorMessage),
		ProgressPct:        j.ProgressPct,
		CreatedTS:          j.CreatedTS,
		SubmittedTS:        j.SubmittedTS,
		CompletedTS:        j.CompletedTS,
		UpdatedTS:          j.UpdatedTS,
	}
}

func toDomainJob(e *JobEntity) *model.Job {
	return &model.Job{
		ID:                 e.ID,
		BatchID:            e.BatchID,
		JobConfigurationID: e.JobConfigurationID,
		WorkflowID:         stringValue(e.WorkflowID),
		Status:             e.Status,
		Skipped:            e.Skipped,
		SkippedReasonTxt:   stringValue(e.SkippedReasonTxt),
		ParentJobID:        e.ParentJobID,
		Overridden:         e.Overridden,
		OverrideReasonTxt:  stringValue(e.OverrideReasonTxt),
		ErrorMessage:       stringValue(e.ErrorMessage),
		ProgressPct:        e.ProgressPct,
		CreatedTS:          e.CreatedTS,
		SubmittedTS:        e.SubmittedTS,
		CompletedTS:        e.CompletedTS,
		UpdatedTS:          e.UpdatedTS,
	}
}

func toDomainBatchContext(r *batchContextRow) *model.BatchContext {
	return &model.BatchContext{
		BatchID:     r.BatchID,
		BatchType:   r.BatchType,
		BatchStatus: r.BatchStatus,
		StepRunID:   r.StepRunID,
		StepID:      r.StepID,
		StepNum:     r.StepNum,
		StepName:    r.StepName,
		StageID:     r.StageID,
		StageNum:    r.StageNum,
		StageName:   r.StageName,
		CycleID:     r.CycleID,
		CycleName:   r.CycleName,
		CycleStatus: r.CycleStatus,
	}
}
