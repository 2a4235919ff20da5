package app_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

func sqliteConfig(path string) config.EmbeddedConfig {
	return config.EmbeddedConfig(fmt.Sprintf(`
irp:
  system:
    logging:
      level: WARN
  store:
    connection_ref: irp
    migrate_on_start: true
  workflow:
    root_dir: /irp
  risk_api:
    dry_run: true
  monitor:
    polling_interval_seconds: 1
  metrics:
    enabled: false
    namespace: irp
  database:
    irp:
      type: sqlite
      database: %s
`, path))
}

func TestDBProviderOptions(t *testing.T) {
	t.Setenv("DB_ADAPTORS", "sqlite, unknown,,postgres")
	assert.Len(t, app.DBProviderOptions(), 2)

	t.Setenv("DB_ADAPTORS", "")
	assert.Len(t, app.DBProviderOptions(), len(app.DBProviderMap))
}

func TestRun_WiresComponents(t *testing.T) {
	t.Setenv("DB_ADAPTORS", "sqlite")
	dbPath := filepath.Join(t.TempDir(), "irp.db")

	err := app.Run(context.Background(), "", sqliteConfig(dbPath), func(ctx context.Context, c app.Components) error {
		assert.Nil(t, c.Prometheus)

		version, _, applied, err := c.Migrator.Version(ctx)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.NotZero(t, version)

		cycle, err := c.Cycles.CreateCycle(ctx, "Analysis-2025-Q1")
		require.NoError(t, err)
		assert.Equal(t, model.CycleStatusActive, cycle.Status)

		report, err := c.Monitor.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Analysis-2025-Q1", report.CycleName)
		assert.Zero(t, report.Batches)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	t.Setenv("DB_ADAPTORS", "sqlite")
	embedded := config.EmbeddedConfig(`
irp:
  store:
    connection_ref: missing
`)
	called := false
	err := app.Run(context.Background(), "", embedded, func(context.Context, app.Components) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
