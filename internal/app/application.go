// Package app assembles the workflow core into an Fx application.
package app

import (
	"context"
	"os"
	"strings"

	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database"
	gormadapter "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm/mysql"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm/postgres"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/adapter/database/gorm/sqlite"
	usecase "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/usecase"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/chain"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/transformer"
	inframetrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/metrics"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/migration"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/notify"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/remote"
	sqlrepo "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/repository/sql"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// DBProviderMap is used to select providers by database type.
var DBProviderMap = map[string]func(cfg *config.Config) database.DBProvider{
	"postgres": postgres.NewProvider,
	"mysql":    mysql.NewProvider,
	"sqlite":   sqlite.NewProvider,
}

// DBProviderOptions registers the providers named in the comma-separated DB_ADAPTORS
// environment variable, or all of them when it is unset.
func DBProviderOptions() []fx.Option {
	adaptors := os.Getenv("DB_ADAPTORS")
	if adaptors == "" {
		adaptors = "postgres,mysql,sqlite"
	}

	options := make([]fx.Option, 0)
	for _, name := range strings.Split(adaptors, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		provider, ok := DBProviderMap[name]
		if !ok {
			logger.Warnf("DB Provider '%s' is configured but not recognized/supported. Skipping.", name)
			continue
		}
		options = append(options, fx.Provide(fx.Annotate(provider, fx.ResultTags(`group:"`+database.DBProviderGroup+`"`))))
		logger.Debugf("DB Provider '%s' selected and registered.", name)
	}
	return options
}

// Components are the services the commands operate on.
type Components struct {
	fx.In

	Config   *config.Config
	Migrator *migration.Migrator
	Cycles   *usecase.CycleManager
	Batches  usecase.BatchOperator
	Jobs     usecase.JobOperator
	Chain    *chain.Controller
	Monitor  *usecase.Monitor
	// Prometheus is nil when irp.metrics.enabled is false.
	Prometheus *inframetrics.PrometheusRecorder
}

// Options returns the Fx options of the workflow core.
func Options(envFilePath string, embeddedConfig config.EmbeddedConfig) []fx.Option {
	return []fx.Option{
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),
		fx.Options(DBProviderOptions()...),
		logger.Module,
		config.Module,
		gormadapter.Module,
		migration.Module,
		sqlrepo.Module,
		metrics.Module,
		inframetrics.Module,
		transformer.Module,
		chain.Module,
		remote.Module,
		notify.Module,
		usecase.Module,
	}
}

// Run starts the application, hands its components to action and stops the application
// once action returns.
func Run(ctx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, action func(ctx context.Context, c Components) error) error {
	var components Components
	fxApp := fx.New(append(Options(envFilePath, embeddedConfig), fx.Invoke(func(c Components) { components = c }))...)
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			logger.Errorf("Failed to stop application: %v", err)
		}
		logger.Infof("Application is shutting down.")
	}()

	return action(ctx, components)
}
