// Package chain decides whether a finished batch triggers the next notebook of its stage.
package chain

import (
	"fmt"
	"sort"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// Entry is the chain rule of one step: once a batch of ExpectedBatchType created by this step
// reaches one of the WaitFor statuses, NextStep should run. A nil NextStep ends the stage's chain.
type Entry struct {
	NextStep          *int
	ExpectedBatchType string
	WaitFor           []model.BatchStatus
	Description       string
}

// Matches reports whether status satisfies WaitFor.
func (e Entry) Matches(status model.BatchStatus) bool {
	for _, s := range e.WaitFor {
		if s == status {
			return true
		}
	}
	return false
}

// Stage is the chain table and notebook layout of one stage.
type Stage struct {
	// Dir is the stage's notebook directory, e.g. "Stage_03_Data_Import".
	Dir string
	// Steps maps a step number to its chain rule.
	Steps map[int]Entry
	// Notebooks maps a step number to its notebook file name.
	Notebooks map[int]string
}

// Definition holds the chain tables of every chained stage, keyed by stage number.
type Definition struct {
	Stages map[int]Stage
}

func step(n int) *int { return &n }

func waitFor(statuses ...model.BatchStatus) []model.BatchStatus { return statuses }

// DefaultDefinition returns the chains of stages 03 (data import), 04 (analysis) and 05 (export).
func DefaultDefinition() *Definition {
	return &Definition{Stages: map[int]Stage{
		3: {
			Dir: "Stage_03_Data_Import",
			Steps: map[int]Entry{
				1: {NextStep: step(2), ExpectedBatchType: model.BatchTypeEDMCreation, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Create portfolios after EDM creation"},
				2: {NextStep: step(3), ExpectedBatchType: model.BatchTypePortfolioCreation, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Import MRI data after portfolio creation"},
				3: {NextStep: step(4), ExpectedBatchType: model.BatchTypeMRIImport, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Create reinsurance treaties after MRI import"},
				4: {NextStep: step(5), ExpectedBatchType: model.BatchTypeCreateReinsuranceTreaties, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Upgrade EDM versions after treaty creation"},
				5: {NextStep: step(6), ExpectedBatchType: model.BatchTypeEDMDBUpgradeVersion, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Run GeoHaz after EDM upgrade"},
				6: {NextStep: step(7), ExpectedBatchType: model.BatchTypeGeoHaz, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Map portfolios after GeoHaz"},
				7: {NextStep: nil, ExpectedBatchType: model.BatchTypePortfolioMapping, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Data import complete"},
			},
			Notebooks: map[int]string{
				1: "Step_01_Create_EDMs.ipynb",
				2: "Step_02_Create_Portfolios.ipynb",
				3: "Step_03_MRI_Import.ipynb",
				4: "Step_04_Create_Reinsurance_Treaties.ipynb",
				5: "Step_05_Upgrade_EDM_Version.ipynb",
				6: "Step_06_GeoHaz.ipynb",
				7: "Step_07_Portfolio_Mapping.ipynb",
			},
		},
		4: {
			Dir: "Stage_04_Run_Analysis",
			Steps: map[int]Entry{
				// Grouping runs on whatever analyses succeeded.
				1: {NextStep: step(2), ExpectedBatchType: model.BatchTypeAnalysis, WaitFor: waitFor(model.BatchStatusCompleted, model.BatchStatusFailed), Description: "Create groupings after analysis"},
				2: {NextStep: step(3), ExpectedBatchType: model.BatchTypeGrouping, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Roll up groupings"},
				3: {NextStep: nil, ExpectedBatchType: model.BatchTypeGroupingRollup, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Analysis complete"},
			},
			Notebooks: map[int]string{
				1: "Step_01_Execute_Analysis.ipynb",
				2: "Step_02_Create_Groupings.ipynb",
				3: "Step_03_Group_Rollup.ipynb",
			},
		},
		5: {
			Dir: "Stage_05_Export",
			Steps: map[int]Entry{
				1: {NextStep: nil, ExpectedBatchType: model.BatchTypeExportToRDM, WaitFor: waitFor(model.BatchStatusCompleted), Description: "Export complete"},
			},
			Notebooks: map[int]string{
				1: "Step_01_Export_to_RDM.ipynb",
			},
		},
	}}
}

// Validate rejects tables that could loop or point at unknown notebooks.
func (d *Definition) Validate() error {
	if d == nil || len(d.Stages) == 0 {
		return fmt.Errorf("chain definition is empty")
	}
	for _, stageNum := range sortedKeys(d.Stages) {
		stage := d.Stages[stageNum]
		if stage.Dir == "" {
			return fmt.Errorf("stage %d: notebook directory is empty", stageNum)
		}
		for _, stepNum := range sortedKeys(stage.Steps) {
			entry := stage.Steps[stepNum]
			if entry.ExpectedBatchType == "" {
				return fmt.Errorf("stage %d step %d: expected batch type is empty", stageNum, stepNum)
			}
			if len(entry.WaitFor) == 0 {
				return fmt.Errorf("stage %d step %d: wait_for is empty", stageNum, stepNum)
			}
			for _, s := range entry.WaitFor {
				if !s.IsValid() {
					return fmt.Errorf("stage %d step %d: invalid wait_for status '%s'", stageNum, stepNum, s)
				}
			}
			if entry.NextStep == nil {
				continue
			}
			if *entry.NextStep <= stepNum {
				return fmt.Errorf("stage %d step %d: next step %d does not advance", stageNum, stepNum, *entry.NextStep)
			}
			if _, ok := stage.Notebooks[*entry.NextStep]; !ok {
				return fmt.Errorf("stage %d step %d: no notebook for next step %d", stageNum, stepNum, *entry.NextStep)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
