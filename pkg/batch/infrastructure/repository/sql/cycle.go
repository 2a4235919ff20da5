package sql

import (
	"context"
	"fmt"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// --- Cycle implementation ---

func (r *SQLWorkflowRepository) SaveCycle(ctx context.Context, cycle *model.Cycle) error {
	if cycle.CreatedTS.IsZero() {
		cycle.CreatedTS = r.now()
	}
	id, err := r.insert(ctx, tableCycle, fromDomainCycle(cycle))
	if err != nil {
		return err
	}
	cycle.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindCycleByID(ctx context.Context, id int64) (*model.Cycle, error) {
	entity, _, err := findByID[CycleEntity](ctx, r, tableCycle, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrCycleNotFound
	}
	return toDomainCycle(entity), nil
}

func (r *SQLWorkflowRepository) FindCycleByName(ctx context.Context, name string) (*model.Cycle, error) {
	return r.findCycle(ctx, "cycle_name = ?", name)
}

func (r *SQLWorkflowRepository) FindActiveCycle(ctx context.Context) (*model.Cycle, error) {
	return r.findCycle(ctx, "status = ?", model.CycleStatusActive)
}

func (r *SQLWorkflowRepository) findCycle(ctx context.Context, where string, arg interface{}) (*model.Cycle, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY created_ts DESC, id DESC LIMIT 1", executor.Qualify(tableCycle), where)
	entity, err := queryOne[CycleEntity](ctx, executor, query, arg)
	if err != nil {
		return nil, r.storeError(executor, err, "failed to find cycle (%s)", where)
	}
	if entity == nil {
		return nil, repository.ErrCycleNotFound
	}
	return toDomainCycle(entity), nil
}

func (r *SQLWorkflowRepository) ArchiveActiveCycles(ctx context.Context) (int64, error) {
	return r.command(ctx, tableCycle,
		"UPDATE %s SET status = ?, archived_ts = ? WHERE status = ?",
		model.CycleStatusArchived, r.now(), model.CycleStatusActive)
}

func (r *SQLWorkflowRepository) ArchiveCycle(ctx context.Context, id int64) error {
	affected, err := r.command(ctx, tableCycle,
		"UPDATE %s SET status = ?, archived_ts = COALESCE(archived_ts, ?) WHERE id = ?",
		model.CycleStatusArchived, r.now(), id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrCycleNotFound
	}
	return nil
}

// --- Stage implementation ---

func (r *SQLWorkflowRepository) SaveStage(ctx context.Context, stage *model.Stage) error {
	if stage.CreatedTS.IsZero() {
		stage.CreatedTS = r.now()
	}
	id, err := r.insert(ctx, tableStage, fromDomainStage(stage))
	if err != nil {
		return err
	}
	stage.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindStage(ctx context.Context, cycleID int64, stageNum int) (*model.Stage, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE cycle_id = ? AND stage_num = ?", executor.Qualify(tableStage))
	entity, err := queryOne[StageEntity](ctx, executor, query, cycleID, stageNum)
	if err != nil {
		return nil, r.storeError(executor, err, "failed to find stage %d of cycle %d", stageNum, cycleID)
	}
	if entity == nil {
		return nil, repository.ErrStageNotFound
	}
	return toDomainStage(entity), nil
}

func (r *SQLWorkflowRepository) FindStageByID(ctx context.Context, id int64) (*model.Stage, error) {
	entity, _, err := findByID[StageEntity](ctx, r, tableStage, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrStageNotFound
	}
	return toDomainStage(entity), nil
}

// --- Step implementation ---

func (r *SQLWorkflowRepository) SaveStep(ctx context.Context, step *model.Step) error {
	if step.CreatedTS.IsZero() {
		step.CreatedTS = r.now()
	}
	id, err := r.insert(ctx, tableStep, fromDomainStep(step))
	if err != nil {
		return err
	}
	step.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindStep(ctx context.Context, stageID int64, stepNum int) (*model.Step, error) {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE stage_id = ? AND step_num = ?", executor.Qualify(tableStep))
	entity, err := queryOne[StepEntity](ctx, executor, query, stageID, stepNum)
	if err != nil {
		return nil, r.storeError(executor, err, "failed to find step %d of stage %d", stepNum, stageID)
	}
	if entity == nil {
		return nil, repository.ErrStepNotFound
	}
	return toDomainStep(entity), nil
}

func (r *SQLWorkflowRepository) FindStepByID(ctx context.Context, id int64) (*model.Step, error) {
	entity, _, err := findByID[StepEntity](ctx, r, tableStep, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrStepNotFound
	}
	return toDomainStep(entity), nil
}

// --- StepRun implementation ---

func (r *SQLWorkflowRepository) SaveStepRun(ctx context.Context, run *model.StepRun) error {
	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("SELECT COALESCE(MAX(run_num), 0) AS max_run FROM %s WHERE step_id = ?", executor.Qualify(tableStepRun))
	row, err := queryOne[maxRunRow](ctx, executor, query, run.StepID)
	if err != nil {
		return r.storeError(executor, err, "failed to number run of step %d", run.StepID)
	}
	run.RunNum = 1
	if row != nil {
		run.RunNum = row.MaxRun + 1
	}
	if run.StartedTS.IsZero() {
		run.StartedTS = r.now()
	}

	id, err := executor.ExecuteInsert(ctx, tableStepRun, fromDomainStepRun(run))
	if err != nil {
		return r.storeError(executor, err, "failed to insert run %d of step %d", run.RunNum, run.StepID)
	}
	run.ID = id
	return nil
}

func (r *SQLWorkflowRepository) FindStepRunByID(ctx context.Context, id int64) (*model.StepRun, error) {
	entity, _, err := findByID[StepRunEntity](ctx, r, tableStepRun, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, repository.ErrStepRunNotFound
	}
	return toDomainStepRun(entity), nil
}

func (r *SQLWorkflowRepository) UpdateStepRun(ctx context.Context, run *model.StepRun) error {
	affected, err := r.command(ctx, tableStepRun,
		"UPDATE %s SET status = ?, completed_ts = ?, error_message = ? WHERE id = ?",
		run.Status, run.CompletedTS, nullableString(run.ErrorMessage), run.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrStepRunNotFound
	}
	return nil
}
