package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/types"
	"github.com/ripplechat/ripple/internal/view"
)

// NewHistoryCmd creates the history command showing a conversation's
// messages.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <conversation>",
		Short: "Show messages in a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()
			if err := ctx.RequireSession(); err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			before, _ := cmd.Flags().GetInt64("before")

			var messages []types.Message
			if before > 0 {
				messages, err = ctx.Repo.GetMessagesBefore(args[0], before, limit)
			} else {
				messages, err = ctx.Repo.GetConversationMessages(args[0], &types.MessageQueryOptions{Limit: limit})
			}
			if err != nil {
				return err
			}

			if ctx.JSONMode {
				return writeJSON(cmd, messages)
			}

			out := cmd.OutOrStdout()
			chatView, err := view.NewChatView(ctx.Repo, ctx.Session, args[0])
			if err != nil {
				return err
			}
			defer chatView.Close()
			unread := chatView.Unread()

			for _, message := range messages {
				marker := " "
				if unread.FirstUnreadMessageID == message.ID {
					marker = ">"
				}
				when := time.UnixMilli(message.TS).Format("15:04")
				fmt.Fprintf(out, "%s [%s] %s: %s (%s)\n", marker, when, message.SenderID, message.Body, message.Status())
			}
			if unread.Count > 0 {
				fmt.Fprintf(out, "\n%d unread\n", unread.Count)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "maximum messages to show")
	cmd.Flags().Int64("before", 0, "show messages before this unix ms timestamp")
	return cmd
}
