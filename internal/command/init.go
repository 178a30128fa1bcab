package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/logger"
	"github.com/ripplechat/ripple/internal/repo"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a ripple store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")

			store, err := core.InitStore(dir, force)
			if err != nil {
				return err
			}
			repository, err := repo.Open(store.DBPath, logger.Log)
			if err != nil {
				return err
			}
			defer repository.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ripple store at %s\n", store.DBPath)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "reinitialize an existing store")
	return cmd
}
