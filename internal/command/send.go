package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/types"
)

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <conversation> <text...>",
		Short: "Send a message as the session user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()
			if err := ctx.RequireSession(); err != nil {
				return err
			}

			message, err := ctx.Repo.SendMessage(ctx.Session, types.Message{
				ConversationID: args[0],
				Body:           strings.Join(args[1:], " "),
				Type:           types.MessageTypeText,
				Delivered:      true,
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode {
				return writeJSON(cmd, message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s\n", message.ID)
			return nil
		},
	}
	return cmd
}
