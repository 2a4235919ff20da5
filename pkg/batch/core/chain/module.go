package chain

import (
	"go.uber.org/fx"

	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
	repository "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/repository"
)

// NewConfiguredController builds a Controller over the default chains rooted at irp.workflow.root_dir.
func NewConfiguredController(repo repository.WorkflowRepository, cfg *config.Config) (*Controller, error) {
	return NewController(repo, DefaultDefinition(), cfg.IRP.Workflow.RootDir)
}

// Module provides the step-chain *Controller.
var Module = fx.Options(
	fx.Provide(NewConfiguredController),
)
