package remote

import (
	"go.uber.org/fx"

	port "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/port"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// RiskAPI is the client serving both the execution and the entity-existence ports.
type RiskAPI interface {
	port.RiskModelingClient
	port.EntityChecker
}

// NewConfiguredRiskAPI returns the dry-run client when irp.risk_api.dry_run is set, the HTTP client otherwise.
func NewConfiguredRiskAPI(cfg *config.Config) RiskAPI {
	if cfg.IRP.RiskAPI.DryRun {
		logger.Warnf("Risk API dry run enabled: no job reaches the execution system.")
		return NewDryRunClient()
	}
	return NewHTTPClient(cfg.IRP.RiskAPI)
}

// Module provides port.RiskModelingClient and port.EntityChecker.
var Module = fx.Options(
	fx.Provide(NewConfiguredRiskAPI),
	fx.Provide(func(api RiskAPI) port.RiskModelingClient { return api }),
	fx.Provide(func(api RiskAPI) port.EntityChecker { return api }),
)
