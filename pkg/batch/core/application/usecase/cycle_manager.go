package usecase

import (
	"context"
	"errors"
	"regexp"
	"time"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
	tx "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/tx"
	exception "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/exception"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

const cycleModule = "CycleManager"

// cycleNamePattern accepts names like "Analysis-2025-Q1" or "Analysis-2025-Q1-rerun_2".
var cycleNamePattern = regexp.MustCompile(`^Analysis-20\d{2}-Q[1-4](-[A-Za-z0-9_]+)?$`)

// ValidateCycleName reports whether name follows the cycle naming convention.
func ValidateCycleName(name string) error {
	if !cycleNamePattern.MatchString(name) {
		return exception.NewBatchErrorf(cycleModule, "invalid cycle name '%s', expected Analysis-YYYY-QN[-suffix]", name)
	}
	return nil
}

// CycleManager maintains cycles, their stage/step/step-run hierarchy and master configurations.
type CycleManager struct {
	repo      repository.WorkflowRepository
	txManager tx.TransactionManager
	now       func() time.Time
}

// NewCycleManager creates a new instance of CycleManager.
func NewCycleManager(repo repository.WorkflowRepository, txManager tx.TransactionManager) *CycleManager {
	return &CycleManager{repo: repo, txManager: txManager, now: time.Now}
}

// CreateCycle archives the active cycle and makes a new cycle named name the active one.
func (m *CycleManager) CreateCycle(ctx context.Context, name string) (*model.Cycle, error) {
	if err := ValidateCycleName(name); err != nil {
		return nil, err
	}
	cycle := &model.Cycle{Name: name, Status: model.CycleStatusActive}
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		existing, err := m.repo.FindCycleByName(ctx, name)
		if err != nil && !errors.Is(err, repository.ErrCycleNotFound) {
			return err
		}
		if existing != nil {
			return exception.NewBatchErrorf(cycleModule, "cycle '%s' already exists (id %d, %s)", name, existing.ID, existing.Status)
		}
		archived, err := m.repo.ArchiveActiveCycles(ctx)
		if err != nil {
			return err
		}
		if archived > 0 {
			logger.Infof("Archived %d active cycle(s).", archived)
		}
		return m.repo.SaveCycle(ctx, cycle)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("Created cycle '%s' (id %d).", cycle.Name, cycle.ID)
	return cycle, nil
}

// GetActiveCycle returns the active cycle, or nil when there is none.
func (m *CycleManager) GetActiveCycle(ctx context.Context) (*model.Cycle, error) {
	cycle, err := m.repo.FindActiveCycle(ctx)
	if errors.Is(err, repository.ErrCycleNotFound) {
		return nil, nil
	}
	return cycle, err
}

// ArchiveCycle marks a cycle ARCHIVED.
func (m *CycleManager) ArchiveCycle(ctx context.Context, cycleID int64) error {
	if err := m.repo.ArchiveCycle(ctx, cycleID); err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return exception.NewBatchErrorf(cycleModule, "cycle %d not found", cycleID, err)
		}
		return err
	}
	logger.Infof("Archived cycle %d.", cycleID)
	return nil
}

// GetOrCreateStage returns the stage numbered stageNum of a cycle, creating it when missing.
func (m *CycleManager) GetOrCreateStage(ctx context.Context, cycleID int64, stageNum int, stageName string) (*model.Stage, error) {
	var stage *model.Stage
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		var err error
		stage, err = m.repo.FindStage(ctx, cycleID, stageNum)
		if err == nil || !errors.Is(err, repository.ErrStageNotFound) {
			return err
		}
		stage = &model.Stage{CycleID: cycleID, StageNum: stageNum, StageName: stageName}
		return m.repo.SaveStage(ctx, stage)
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// GetOrCreateStep returns the step numbered stepNum of a stage, creating it when missing.
func (m *CycleManager) GetOrCreateStep(ctx context.Context, stageID int64, stepNum int, stepName, notebookPath string) (*model.Step, error) {
	var step *model.Step
	err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		var err error
		step, err = m.repo.FindStep(ctx, stageID, stepNum)
		if err == nil || !errors.Is(err, repository.ErrStepNotFound) {
			return err
		}
		step = &model.Step{StageID: stageID, StepNum: stepNum, StepName: stepName, NotebookPath: notebookPath}
		return m.repo.SaveStep(ctx, step)
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// StartStepRun records a new ACTIVE run of a step, numbered after its previous runs.
func (m *CycleManager) StartStepRun(ctx context.Context, stepID int64) (*model.StepRun, error) {
	run := &model.StepRun{StepID: stepID, Status: model.StepRunStatusActive, StartedTS: m.now()}
	if err := tx.Run(ctx, m.txManager, func(ctx context.Context) error {
		return m.repo.SaveStepRun(ctx, run)
	}); err != nil {
		return nil, err
	}
	logger.Infof("Started run %d of step %d (run id %d).", run.RunNum, stepID, run.ID)
	return run, nil
}

// CompleteStepRun finishes a run with COMPLETED, FAILED or SKIPPED.
func (m *CycleManager) CompleteStepRun(ctx context.Context, runID int64, status model.StepRunStatus, errorMessage string) error {
	if !status.IsFinished() {
		return exception.NewBatchErrorf(cycleModule, "step run status '%s' is not a finished status", status)
	}
	run, err := m.repo.FindStepRunByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repository.ErrStepRunNotFound) {
			return exception.NewBatchErrorf(cycleModule, "step run %d not found", runID, err)
		}
		return err
	}
	now := m.now()
	run.Status = status
	run.CompletedTS = &now
	run.ErrorMessage = errorMessage
	if err := m.repo.UpdateStepRun(ctx, run); err != nil {
		return err
	}
	logger.Infof("Step run %d finished: %s", runID, status)
	return nil
}

// CreateConfiguration stores a master configuration for a cycle with status VALID.
func (m *CycleManager) CreateConfiguration(ctx context.Context, cycleID int64, data model.Payload, fileName string) (*model.Configuration, error) {
	if _, err := m.repo.FindCycleByID(ctx, cycleID); err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return nil, exception.NewBatchErrorf(cycleModule, "cycle %d not found", cycleID, err)
		}
		return nil, err
	}
	cfg := &model.Configuration{
		CycleID:           cycleID,
		ConfigurationData: data,
		FileName:          fileName,
		Status:            model.ConfigurationStatusValid,
	}
	if err := m.repo.SaveConfiguration(ctx, cfg); err != nil {
		return nil, err
	}
	logger.Infof("Stored configuration %d ('%s') for cycle %d.", cfg.ID, fileName, cycleID)
	return cfg, nil
}
