package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anilvenu/irp-notebook-framework-sub000/internal/app"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Manage analysis cycles",
}

var cycleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create the active cycle, archiving the previous one",
	Long: `Create a new active cycle. Names follow Analysis-YYYY-QN with an optional suffix.

Examples:
  irp cycle create Analysis-2025-Q1
  irp cycle create Analysis-2025-Q1-rerun`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			cycle, err := c.Cycles.CreateCycle(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cycle %d %s is active\n", cycle.ID, cycle.Name)
			return nil
		})
	},
}

var cycleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active cycle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			cycle, err := c.Cycles.GetActiveCycle(ctx)
			if err != nil {
				return err
			}
			if cycle == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no active cycle")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cycle %d %s (%s)\n", cycle.ID, cycle.Name, cycle.Status)
			return nil
		})
	},
}

var cycleArchiveCmd = &cobra.Command{
	Use:   "archive <cycle-id>",
	Short: "Archive a cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "cycle")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c app.Components) error {
			return c.Cycles.ArchiveCycle(ctx, id)
		})
	},
}

func init() {
	cycleCmd.AddCommand(cycleCreateCmd, cycleShowCmd, cycleArchiveCmd)
}
