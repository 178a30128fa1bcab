package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/seed"
)

// NewSeedCmd creates the seed command.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with a synthetic demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()

			users, _ := cmd.Flags().GetInt("users")
			convs, _ := cmd.Flags().GetInt("conversations")
			messages, _ := cmd.Flags().GetInt("messages")
			seedValue, _ := cmd.Flags().GetInt64("seed")
			reset, _ := cmd.Flags().GetBool("reset")

			if reset {
				if err := ctx.Repo.ClearAllData(); err != nil {
					return err
				}
			}

			currentUserID := ctx.Session.UserID
			if currentUserID == "" {
				currentUserID, err = core.NewUserID()
				if err != nil {
					return err
				}
				if err := ctx.Repo.SetMeta(metaCurrentUser, currentUserID); err != nil {
					return err
				}
			}

			opts := seed.DefaultOptions(currentUserID)
			if users > 0 {
				opts.Users = users
			}
			if convs > 0 {
				opts.Conversations = convs
			}
			if messages > 0 {
				opts.MessagesPerConversation = messages
			}
			opts.Seed = seedValue

			dataset, err := seed.Generate(opts)
			if err != nil {
				return err
			}
			if err := seed.Apply(ctx.Repo, dataset); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d conversations, %d messages\n",
				len(dataset.Users), len(dataset.Conversations), len(dataset.Messages))
			return nil
		},
	}
	cmd.Flags().Int("users", 0, "number of users")
	cmd.Flags().Int("conversations", 0, "number of conversations")
	cmd.Flags().Int("messages", 0, "messages per conversation")
	cmd.Flags().Int64("seed", 0, "random seed (0 = time-based)")
	cmd.Flags().Bool("reset", false, "clear all data before seeding")
	return cmd
}
