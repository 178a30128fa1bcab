package command

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/view"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	pinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	unreadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewLsCmd creates the ls command showing the ordered chat list.
func NewLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List conversations, pinned first then by recency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return err
			}
			defer ctx.Close()
			if err := ctx.RequireSession(); err != nil {
				return err
			}

			items, err := view.BuildChatList(ctx.Repo, ctx.Session)
			if err != nil {
				return err
			}

			if ctx.JSONMode {
				return writeJSON(cmd, items)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No conversations")
				return nil
			}
			for _, item := range items {
				line := titleStyle.Render(item.Title)
				if item.Pinned {
					line = pinStyle.Render("📌 ") + line
				}
				if item.Muted {
					line = line + mutedStyle.Render(" (muted)")
				}
				if item.UnreadCount > 0 {
					line = line + " " + unreadStyle.Render(fmt.Sprintf("%d", item.UnreadCount))
				}
				fmt.Fprintln(out, line)

				preview := item.Preview
				if preview == "" {
					preview = "No messages yet"
				}
				when := ""
				if item.LastMessageTS > 0 {
					when = time.UnixMilli(item.LastMessageTS).Format("Jan 2 15:04")
				}
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(fmt.Sprintf("%s  %s  %s", item.ConversationID, preview, when)))
			}
			return nil
		},
	}
	return cmd
}
