package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDestroyCmd creates the destroy command, the bulk clear-all operation.
func NewDestroyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete all users, conversations, participants, and messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("this deletes all data. Re-run with --force to confirm")
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()

			if err := ctx.Repo.ClearAllData(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data deleted")
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "confirm deletion")
	return cmd
}
