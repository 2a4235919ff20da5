package repository

import (
	"context"
	"errors"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

var (
	// ErrCycleNotFound is returned when a cycle is not found.
	ErrCycleNotFound = errors.New("cycle not found")
	// ErrStageNotFound is returned when a stage is not found.
	ErrStageNotFound = errors.New("stage not found")
	// ErrStepNotFound is returned when a step is not found.
	ErrStepNotFound = errors.New("step not found")
	// ErrStepRunNotFound is returned when a step run is not found.
	ErrStepRunNotFound = errors.New("step run not found")
)

// CycleRepository persists cycles and their stage/step/step-run hierarchy.
type CycleRepository interface {
	// SaveCycle inserts a new cycle and sets its ID.
	SaveCycle(ctx context.Context, cycle *model.Cycle) error
	FindCycleByID(ctx context.Context, id int64) (*model.Cycle, error)
	FindCycleByName(ctx context.Context, name string) (*model.Cycle, error)
	// FindActiveCycle returns the most recent ACTIVE cycle or ErrCycleNotFound.
	FindActiveCycle(ctx context.Context) (*model.Cycle, error)
	// ArchiveActiveCycles moves every ACTIVE cycle to ARCHIVED and returns the number archived.
	ArchiveActiveCycles(ctx context.Context) (int64, error)
	// ArchiveCycle archives one cycle; it returns ErrCycleNotFound when no row matches.
	ArchiveCycle(ctx context.Context, id int64) error

	SaveStage(ctx context.Context, stage *model.Stage) error
	FindStage(ctx context.Context, cycleID int64, stageNum int) (*model.Stage, error)
	FindStageByID(ctx context.Context, id int64) (*model.Stage, error)

	SaveStep(ctx context.Context, step *model.Step) error
	FindStep(ctx context.Context, stageID int64, stepNum int) (*model.Step, error)
	FindStepByID(ctx context.Context, id int64) (*model.Step, error)

	// SaveStepRun inserts a step run, numbering it after the highest existing run of the step.
	SaveStepRun(ctx context.Context, run *model.StepRun) error
	FindStepRunByID(ctx context.Context, id int64) (*model.StepRun, error)
	UpdateStepRun(ctx context.Context, run *model.StepRun) error
}
