package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

var (
	monitorOnce        bool
	monitorMetricsAddr string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll in-flight jobs, reconcile batches and launch next steps",
	Long: `Poll the jobs of the active cycle, reconcile their batches and launch the next
notebook of every batch that finished. Runs until interrupted unless --once is set.

Examples:
  irp monitor --once
  irp monitor --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			if monitorOnce {
				report, err := c.Monitor.RunOnce(ctx)
				if report != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "cycle %q: %d batches, %d jobs tracked, %d finished, %d steps launched\n",
						report.CycleName, report.Batches, report.Tracked, len(report.Finished), len(report.Launched))
				}
				return err
			}

			if monitorMetricsAddr != "" && c.Prometheus != nil {
				srv := &http.Server{Addr: monitorMetricsAddr, Handler: c.Prometheus.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					logger.Infof("Serving metrics on %s.", monitorMetricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Errorf("Metrics server failed: %v", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}
			return c.Monitor.Run(ctx)
		})
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "run a single pass and exit")
	monitorCmd.Flags().StringVar(&monitorMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}
