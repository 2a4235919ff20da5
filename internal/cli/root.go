// Package cli provides the irp command-line interface.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
	config "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/config"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	envFilePath    string
	embeddedConfig config.EmbeddedConfig
)

var rootCmd = &cobra.Command{
	Use:   "irp",
	Short: "IRP notebook workflow core",
	Long: `irp manages analysis cycles, the batches of jobs notebooks submit to the
risk-modeling platform, and the chaining of notebook steps once a batch finishes.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the given configuration sources.
func Execute(ctx context.Context, envFile string, embedded []byte) error {
	envFilePath = envFile
	embeddedConfig = config.EmbeddedConfig(embedded)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(monitorCmd)
}

// withApp starts the application for the duration of action.
func withApp(cmd *cobra.Command, action func(ctx context.Context, c app.Components) error) error {
	return app.Run(cmd.Context(), envFilePath, embeddedConfig, action)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
