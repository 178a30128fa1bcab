package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search message text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			messages, err := ctx.Repo.SearchMessages(args[0], limit)
			if err != nil {
				return err
			}

			if ctx.JSONMode {
				return writeJSON(cmd, messages)
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for _, message := range messages {
				when := time.UnixMilli(message.TS).Format("Jan 2 15:04")
				fmt.Fprintf(out, "%s  %s  [%s] %s\n", message.ConversationID, when, message.SenderID, message.Body)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "maximum results")
	return cmd
}
