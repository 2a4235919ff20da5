package transformer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/transformer"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := transformer.NewRegistry()
	require.NoError(t, r.Register("double", func(cfg model.Payload) ([]model.Payload, error) {
		return []model.Payload{{"n": 1}, {"n": 2}}, nil
	}))

	assert.True(t, r.Has("double"))
	assert.False(t, r.Has("triple"))
	assert.Equal(t, []string{"double"}, r.BatchTypes())

	out, err := r.JobConfigurations("double", model.Payload{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestRegistry_Errors(t *testing.T) {
	r := transformer.NewRegistry()
	noop := func(model.Payload) ([]model.Payload, error) { return nil, nil }

	assert.Error(t, r.Register("", noop))
	assert.Error(t, r.Register("nil", nil))
	require.NoError(t, r.Register("x", noop))
	assert.ErrorIs(t, r.Register("x", noop), transformer.ErrDuplicateBatchType)
	assert.Panics(t, func() { r.MustRegister("x", noop) })

	_, err := r.JobConfigurations("missing", model.Payload{})
	assert.ErrorIs(t, err, transformer.ErrUnknownBatchType)

	boom := errors.New("boom")
	require.NoError(t, r.Register("failing", func(model.Payload) ([]model.Payload, error) { return nil, boom }))
	_, err = r.JobConfigurations("failing", model.Payload{})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_IsolatedInstances(t *testing.T) {
	a := transformer.NewRegistry()
	b := transformer.NewRegistry()
	a.MustRegister("only-in-a", func(model.Payload) ([]model.Payload, error) { return nil, nil })
	assert.False(t, b.Has("only-in-a"))
}

func masterConfiguration() model.Payload {
	return model.Payload{
		"Metadata": map[string]interface{}{"Current Date Value": "202503", "Export RDM Name": "RDM_2025Q1"},
		"Databases": []interface{}{
			map[string]interface{}{"Database": "EDM_A"},
			map[string]interface{}{"Database": "EDM_B"},
			map[string]interface{}{"Database": "EDM_C"},
		},
		"Portfolios": []interface{}{
			map[string]interface{}{"Portfolio": "P1", "Database": "EDM_A"},
		},
		"Analysis Table": []interface{}{
			map[string]interface{}{"Analysis Name": "AN_1"},
			map[string]interface{}{"Analysis Name": "AN_2"},
		},
		"Groupings": []interface{}{
			map[string]interface{}{"Group_Name": "G_1"},
		},
	}
}

func TestBuiltins(t *testing.T) {
	r, err := transformer.NewDefaultRegistry()
	require.NoError(t, err)

	for _, bt := range []string{
		model.BatchTypeEDMCreation, model.BatchTypePortfolioCreation, model.BatchTypeMRIImport,
		model.BatchTypeCreateReinsuranceTreaties, model.BatchTypeEDMDBUpgradeVersion, model.BatchTypeGeoHaz,
		model.BatchTypePortfolioMapping, model.BatchTypeAnalysis, model.BatchTypeGrouping,
		model.BatchTypeGroupingRollup, model.BatchTypeExportToRDM, model.BatchTypeDefault,
	} {
		assert.True(t, r.Has(bt), bt)
	}

	cfg := masterConfiguration()

	edm, err := r.JobConfigurations(model.BatchTypeEDMCreation, cfg)
	require.NoError(t, err)
	require.Len(t, edm, 3)
	assert.Equal(t, "EDM_B", edm[1].GetString("Database"))
	assert.NotNil(t, edm[0]["Metadata"])

	treaties, err := r.JobConfigurations(model.BatchTypeCreateReinsuranceTreaties, cfg)
	require.NoError(t, err)
	assert.Empty(t, treaties)

	export, err := r.JobConfigurations(model.BatchTypeExportToRDM, cfg)
	require.NoError(t, err)
	require.Len(t, export, 1)
	assert.Equal(t, "RDM_2025Q1", export[0].GetString("rdm_name"))
	assert.Equal(t, []interface{}{"AN_1", "AN_2", "G_1"}, export[0]["analysis_names"])

	def, err := r.JobConfigurations(model.BatchTypeDefault, cfg)
	require.NoError(t, err)
	require.Len(t, def, 1)
	def[0]["Metadata"] = "changed"
	assert.NotEqual(t, "changed", cfg["Metadata"], "transformers must not alias their input")
}

func TestBuiltins_MalformedSheet(t *testing.T) {
	r, err := transformer.NewDefaultRegistry()
	require.NoError(t, err)

	_, err = r.JobConfigurations(model.BatchTypeEDMCreation, model.Payload{"Databases": "not a list"})
	assert.Error(t, err)

	_, err = r.JobConfigurations(model.BatchTypeEDMCreation, model.Payload{"Databases": []interface{}{map[string]interface{}{}}})
	assert.Error(t, err)
}
