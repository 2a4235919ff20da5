package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// Hierarchy is a cycle with one stage, step, step run and master configuration.
type Hierarchy struct {
	Cycle         *model.Cycle
	Stage         *model.Stage
	Step          *model.Step
	StepRun       *model.StepRun
	Configuration *model.Configuration
}

// SeedHierarchy stores an ACTIVE cycle named cycleName holding stageNum/stepNum and a
// configuration with data.
func SeedHierarchy(t *testing.T, repo repository.WorkflowRepository, cycleName string, stageNum, stepNum int, data model.Payload) *Hierarchy {
	t.Helper()
	ctx := context.Background()

	h := &Hierarchy{
		Cycle: &model.Cycle{Name: cycleName, Status: model.CycleStatusActive},
	}
	require.NoError(t, repo.SaveCycle(ctx, h.Cycle))

	h.Stage = &model.Stage{CycleID: h.Cycle.ID, StageNum: stageNum, StageName: "Stage"}
	require.NoError(t, repo.SaveStage(ctx, h.Stage))

	h.Step = &model.Step{StageID: h.Stage.ID, StepNum: stepNum, StepName: "Step", NotebookPath: "Step.ipynb"}
	require.NoError(t, repo.SaveStep(ctx, h.Step))

	h.StepRun = &model.StepRun{StepID: h.Step.ID, Status: model.StepRunStatusActive}
	require.NoError(t, repo.SaveStepRun(ctx, h.StepRun))

	h.Configuration = &model.Configuration{CycleID: h.Cycle.ID, ConfigurationData: data, FileName: "master.xlsx", Status: model.ConfigurationStatusValid}
	require.NoError(t, repo.SaveConfiguration(ctx, h.Configuration))
	return h
}

// MasterConfiguration returns a master configuration with the given database names.
func MasterConfiguration(databases ...string) model.Payload {
	rows := make([]interface{}, 0, len(databases))
	for _, db := range databases {
		rows = append(rows, map[string]interface{}{"Database": db})
	}
	return model.Payload{
		"Metadata":  map[string]interface{}{"Current Date Value": "202503"},
		"Databases": rows,
	}
}

// NewTimePtr returns a pointer to time.Time.
func NewTimePtr(t time.Time) *time.Time {
	return &t
}
