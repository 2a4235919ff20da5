package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
	usecase "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/application/usecase"
	"github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/infrastructure/notify"
)

var (
	batchConfigurationID int64
	batchStepRunID       int64
	batchType            string
	batchSubmit          bool
	batchIncludeSkipped  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Create, submit and reconcile batches",
}

var batchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a batch from a configuration",
	Long: `Create a batch by running the transformer of --type over a configuration.

Examples:
  irp batch create --configuration 3 --step-run 12 --type "EDM Creation"
  irp batch create --configuration 3 --step-run 12 --type "Portfolio Creation" --submit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			id, err := c.Batches.CreateBatch(ctx, batchConfigurationID, batchStepRunID, batchType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "batch %d created\n", id)
			if !batchSubmit {
				return nil
			}
			report, err := c.Batches.SubmitBatch(ctx, id)
			printSubmitReport(cmd.OutOrStdout(), report)
			return err
		})
	},
}

var batchSubmitCmd = &cobra.Command{
	Use:   "submit <batch-id>",
	Short: "Create and submit the jobs of a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			report, err := c.Batches.SubmitBatch(ctx, id)
			printSubmitReport(cmd.OutOrStdout(), report)
			return err
		})
	},
}

var batchSubmitPendingCmd = &cobra.Command{
	Use:   "submit-pending <batch-id>",
	Short: "Submit the INITIATED jobs of a batch, including resubmitted ones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			report, err := c.Batches.SubmitPendingJobs(ctx, id)
			printSubmitReport(cmd.OutOrStdout(), report)
			return err
		})
	},
}

var batchReconCmd = &cobra.Command{
	Use:   "recon <batch-id>",
	Short: "Derive the batch status from its current jobs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			status, err := c.Batches.ReconBatch(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "batch %d is %s\n", id, status)
			return nil
		})
	},
}

var batchSummaryCmd = &cobra.Command{
	Use:   "summary <batch-id>",
	Short: "Print job and configuration counts of a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			summary, err := c.Batches.GetBatchSummary(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notify.FormatSummary(summary))
			return nil
		})
	},
}

var batchJobsCmd = &cobra.Command{
	Use:   "jobs <batch-id>",
	Short: "List the jobs of a batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			jobs, err := c.Batches.GetBatchJobs(ctx, id, batchIncludeSkipped)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, j := range jobs {
				line := fmt.Sprintf("%d\t%s\t%s", j.ID, j.Status, j.WorkflowID)
				if j.Skipped {
					line += "\tskipped: " + j.SkippedReasonTxt
				}
				fmt.Fprintln(out, line)
			}
			return nil
		})
	},
}

var batchNextStepCmd = &cobra.Command{
	Use:   "next-step <batch-id>",
	Short: "Print the notebook that follows a batch, if any",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			next, err := c.Chain.GetNextStepInfo(ctx, id)
			if err != nil {
				return err
			}
			if next == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no next step")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stage %d step %d: %s\n", next.StageNum, next.StepNum, next.NotebookPath)
			return nil
		})
	},
}

func printSubmitReport(w io.Writer, report *usecase.SubmitReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(w, "batch %d: %d submitted, %d existing, %d failed, %d unchanged\n",
		report.BatchID, len(report.Submitted), len(report.Existing), len(report.Failed), report.Unchanged)
}

func init() {
	batchCreateCmd.Flags().Int64Var(&batchConfigurationID, "configuration", 0, "configuration id")
	batchCreateCmd.Flags().Int64Var(&batchStepRunID, "step-run", 0, "id of the step run creating the batch")
	batchCreateCmd.Flags().StringVar(&batchType, "type", "", "batch type, e.g. \"EDM Creation\"")
	batchCreateCmd.Flags().BoolVar(&batchSubmit, "submit", false, "submit the batch once created")
	_ = batchCreateCmd.MarkFlagRequired("configuration")
	_ = batchCreateCmd.MarkFlagRequired("step-run")
	_ = batchCreateCmd.MarkFlagRequired("type")

	batchJobsCmd.Flags().BoolVar(&batchIncludeSkipped, "all", false, "include skipped jobs")

	batchCmd.AddCommand(batchCreateCmd, batchSubmitCmd, batchSubmitPendingCmd, batchReconCmd,
		batchSummaryCmd, batchJobsCmd, batchNextStepCmd)
}
