package transformer

import (
	"fmt"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/configbinder"
)

// MasterConfiguration is the parsed master workbook: one key per sheet, rows as maps.
type MasterConfiguration struct {
	Metadata            map[string]interface{}   `yaml:"Metadata"`
	Databases           []map[string]interface{} `yaml:"Databases"`
	Portfolios          []map[string]interface{} `yaml:"Portfolios"`
	ReinsuranceTreaties []map[string]interface{} `yaml:"Reinsurance Treaties"`
	Analyses            []map[string]interface{} `yaml:"Analysis Table"`
	Groupings           []map[string]interface{} `yaml:"Groupings"`
}

// DecodeMasterConfiguration binds a configuration payload to MasterConfiguration.
func DecodeMasterConfiguration(configuration model.Payload) (*MasterConfiguration, error) {
	var master MasterConfiguration
	if err := configbinder.BindProperties(configuration, &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// RegisterBuiltins registers the transformers of every batch type the stage chains expect,
// plus BatchTypeDefault.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		batchType string
		fn        Transformer
	}{
		{model.BatchTypeEDMCreation, perRow("Databases", func(m *MasterConfiguration) []map[string]interface{} { return m.Databases })},
		{model.BatchTypePortfolioCreation, perRow("Portfolios", func(m *MasterConfiguration) []map[string]interface{} { return m.Portfolios })},
		{model.BatchTypeMRIImport, perRow("Portfolios", func(m *MasterConfiguration) []map[string]interface{} { return m.Portfolios })},
		{model.BatchTypeCreateReinsuranceTreaties, perRow("Reinsurance Treaties", func(m *MasterConfiguration) []map[string]interface{} { return m.ReinsuranceTreaties })},
		{model.BatchTypeEDMDBUpgradeVersion, perRow("Databases", func(m *MasterConfiguration) []map[string]interface{} { return m.Databases })},
		{model.BatchTypeGeoHaz, perRow("Portfolios", func(m *MasterConfiguration) []map[string]interface{} { return m.Portfolios })},
		{model.BatchTypePortfolioMapping, perRow("Portfolios", func(m *MasterConfiguration) []map[string]interface{} { return m.Portfolios })},
		{model.BatchTypeAnalysis, perRow("Analysis Table", func(m *MasterConfiguration) []map[string]interface{} { return m.Analyses })},
		{model.BatchTypeGrouping, perRow("Groupings", func(m *MasterConfiguration) []map[string]interface{} { return m.Groupings })},
		{model.BatchTypeGroupingRollup, perRow("Groupings", func(m *MasterConfiguration) []map[string]interface{} { return m.Groupings })},
		{model.BatchTypeExportToRDM, exportToRDM},
		{model.BatchTypeDefault, passThrough},
	}
	for _, b := range builtins {
		if err := r.Register(b.batchType, b.fn); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry holding the builtin transformers.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}
	return r, nil
}

// perRow emits one payload per row of sheet, each carrying the workbook metadata under "Metadata".
func perRow(sheet string, rows func(*MasterConfiguration) []map[string]interface{}) Transformer {
	return func(configuration model.Payload) ([]model.Payload, error) {
		master, err := DecodeMasterConfiguration(configuration)
		if err != nil {
			return nil, err
		}
		selected := rows(master)
		payloads := make([]model.Payload, 0, len(selected))
		for i, row := range selected {
			if len(row) == 0 {
				return nil, fmt.Errorf("sheet '%s' row %d is empty", sheet, i+1)
			}
			payload, err := model.Payload(row).Clone()
			if err != nil {
				return nil, fmt.Errorf("sheet '%s' row %d: %w", sheet, i+1, err)
			}
			if master.Metadata != nil {
				payload["Metadata"] = master.Metadata
			}
			payloads = append(payloads, payload)
		}
		return payloads, nil
	}
}

// exportToRDM emits a single job exporting every analysis and grouping to the results database.
func exportToRDM(configuration model.Payload) ([]model.Payload, error) {
	master, err := DecodeMasterConfiguration(configuration)
	if err != nil {
		return nil, err
	}
	names := make([]interface{}, 0, len(master.Analyses)+len(master.Groupings))
	for _, a := range master.Analyses {
		if name, ok := a["Analysis Name"]; ok {
			names = append(names, name)
		}
	}
	for _, g := range master.Groupings {
		if name, ok := g["Group_Name"]; ok {
			names = append(names, name)
		}
	}
	payload := model.Payload{"analysis_names": names}
	if master.Metadata != nil {
		payload["Metadata"] = master.Metadata
		if rdm, ok := master.Metadata["Export RDM Name"]; ok {
			payload["rdm_name"] = rdm
		}
	}
	return []model.Payload{payload}, nil
}

func passThrough(configuration model.Payload) ([]model.Payload, error) {
	payload, err := configuration.Clone()
	if err != nil {
		return nil, err
	}
	return []model.Payload{payload}, nil
}
