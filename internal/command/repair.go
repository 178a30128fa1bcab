package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRepairCmd creates the repair command, recomputing denormalized
// conversation summaries from authoritative message rows.
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Recompute conversation summaries from message rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()

			if err := ctx.Repo.ReconcileSummaries(ctx.Session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Summaries reconciled")
			return nil
		},
	}
	return cmd
}
