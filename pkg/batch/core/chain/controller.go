package chain

import (
	"context"
	"errors"
	"path/filepath"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

const moduleName = "StepChain"

// BatchContextFinder loads the step, stage and cycle a batch belongs to.
type BatchContextFinder interface {
	FindBatchContext(ctx context.Context, id int64) (*model.BatchContext, error)
}

// Controller decides whether, and which, notebook runs after a batch finishes.
// It never launches anything itself.
type Controller struct {
	finder     BatchContextFinder
	definition *Definition
	rootDir    string
}

// NewController validates definition and returns a controller resolving notebooks under rootDir.
func NewController(finder BatchContextFinder, definition *Definition, rootDir string) (*Controller, error) {
	if err := definition.Validate(); err != nil {
		return nil, exception.NewBatchError(moduleName, "malformed chain definition", err)
	}
	return &Controller{finder: finder, definition: definition, rootDir: rootDir}, nil
}

// NotebookPath resolves the notebook of a step inside the cycle's working tree.
func (c *Controller) NotebookPath(cycleName string, stageNum, stepNum int) (string, bool) {
	stage, ok := c.definition.Stages[stageNum]
	if !ok {
		return "", false
	}
	notebook, ok := stage.Notebooks[stepNum]
	if !ok {
		return "", false
	}
	return filepath.Join(c.rootDir, "Active_"+cycleName, "notebooks", stage.Dir, notebook), true
}

// GetNextStepInfo returns the step that should follow batchID, or nil when the batch triggers nothing:
// the cycle is archived, the stage or step is not chained, the batch type is not the one the step
// produces, the batch status is not awaited, or the step is the last of its stage.
// Store failures and unknown batches are returned as errors.
func (c *Controller) GetNextStepInfo(ctx context.Context, batchID int64) (*model.NextStep, error) {
	bc, err := c.finder.FindBatchContext(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrBatchNotFound) {
			return nil, exception.NewBatchErrorf(moduleName, "batch %d not found", batchID, err)
		}
		return nil, err
	}

	if bc.CycleStatus != model.CycleStatusActive {
		logger.Debugf("Batch %d: cycle '%s' is %s, no chain action.", batchID, bc.CycleName, bc.CycleStatus)
		return nil, nil
	}
	stage, ok := c.definition.Stages[bc.StageNum]
	if !ok {
		logger.Debugf("Batch %d: stage %d has no chain.", batchID, bc.StageNum)
		return nil, nil
	}
	entry, ok := stage.Steps[bc.StepNum]
	if !ok {
		logger.Debugf("Batch %d: stage %d step %d has no chain entry.", batchID, bc.StageNum, bc.StepNum)
		return nil, nil
	}
	if bc.BatchType != entry.ExpectedBatchType {
		logger.Debugf("Batch %d: type '%s' does not match expected '%s'.", batchID, bc.BatchType, entry.ExpectedBatchType)
		return nil, nil
	}
	if !entry.Matches(bc.BatchStatus) {
		logger.Debugf("Batch %d: status %s is not in %v.", batchID, bc.BatchStatus, entry.WaitFor)
		return nil, nil
	}
	if entry.NextStep == nil {
		logger.Debugf("Batch %d: stage %d step %d is the last step of its chain.", batchID, bc.StageNum, bc.StepNum)
		return nil, nil
	}

	path, ok := c.NotebookPath(bc.CycleName, bc.StageNum, *entry.NextStep)
	if !ok {
		return nil, exception.NewBatchErrorf(moduleName, "no notebook for stage %d step %d", bc.StageNum, *entry.NextStep)
	}

	next := &model.NextStep{
		CycleName:    bc.CycleName,
		StageNum:     bc.StageNum,
		StepNum:      *entry.NextStep,
		NotebookPath: path,
		Description:  entry.Description,
		TriggeredBy:  batchID,
	}
	logger.Infof("Batch %d (%s, %s) chains to stage %d step %d: %s", batchID, bc.BatchType, bc.BatchStatus, next.StageNum, next.StepNum, path)
	return next, nil
}

// ShouldExecuteNextStep reports whether GetNextStepInfo yields a step.
//
// It does not check whether the next step has already run, so a re-triggered chain launches it
// again and SubmitBatch skips whatever still exists remotely.
// TODO: optionally suppress the launch when the next step already has a COMPLETED step run in the cycle.
func (c *Controller) ShouldExecuteNextStep(ctx context.Context, batchID int64) (bool, error) {
	next, err := c.GetNextStepInfo(ctx, batchID)
	if err != nil {
		return false, err
	}
	return next != nil, nil
}
