package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

var (
	jobReason            string
	jobOverrideFile      string
	jobSkipConfiguration bool
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Track, resubmit and skip jobs",
}

var jobTrackCmd = &cobra.Command{
	Use:   "track <job-id>",
	Short: "Poll the workflow of a job and store its status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			status, err := c.Jobs.TrackJobStatus(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d is %s\n", id, status)
			return nil
		})
	},
}

var jobResubmitCmd = &cobra.Command{
	Use:   "resubmit <job-id>",
	Short: "Replace a terminal job with a new INITIATED one",
	Long: `Replace a job with a new INITIATED job. With --override the new job runs a new
job configuration read from a YAML or JSON file; the reason is required then.
Submit the new job with "irp batch submit-pending".

Examples:
  irp job resubmit 42
  irp job resubmit 42 --override fixed.json --reason "wrong peril"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}
		var override model.Payload
		if jobOverrideFile != "" {
			if override, err = readPayload(jobOverrideFile); err != nil {
				return err
			}
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			newID, err := c.Jobs.ResubmitJob(ctx, id, override, jobReason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d replaces job %d\n", newID, id)
			return nil
		})
	},
}

var jobSkipCmd = &cobra.Command{
	Use:   "skip <job-id>",
	Short: "Exclude a job from its batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			return c.Jobs.SkipJob(ctx, id, jobReason, jobSkipConfiguration)
		})
	},
}

var jobConfigCmd = &cobra.Command{
	Use:   "config <job-id>",
	Short: "Print the job configuration a job runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "job")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			payload, err := c.Jobs.GetJobConfig(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		})
	},
}

// readPayload reads a job configuration from a YAML file. JSON files parse as YAML.
func readPayload(path string) (model.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read override file: %w", err)
	}
	var payload model.Payload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse override file %s: %w", path, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("override file %s is empty", path)
	}
	return payload, nil
}

func init() {
	jobResubmitCmd.Flags().StringVar(&jobOverrideFile, "override", "", "YAML or JSON file holding the override job configuration")
	jobResubmitCmd.Flags().StringVar(&jobReason, "reason", "", "override reason")
	jobSkipCmd.Flags().StringVar(&jobReason, "reason", "", "skip reason")
	jobSkipCmd.Flags().BoolVar(&jobSkipConfiguration, "configuration", false, "skip the job configuration as well")

	jobCmd.AddCommand(jobTrackCmd, jobResubmitCmd, jobSkipCmd, jobConfigCmd)
}
