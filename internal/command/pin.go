package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewPinCmd creates the pin command.
func NewPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin <conversation> [true|false]",
		Short: "Pin or unpin a conversation",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleFlag(cmd, args, "pinned", func(ctx *Context, id string, value bool) error {
				return ctx.Repo.SetConversationPinned(id, value)
			})
		},
	}
	return cmd
}

// NewMuteCmd creates the mute command.
func NewMuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mute <conversation> [true|false]",
		Short: "Mute or unmute a conversation",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleFlag(cmd, args, "muted", func(ctx *Context, id string, value bool) error {
				return ctx.Repo.SetConversationMuted(id, value)
			})
		},
	}
	return cmd
}

func toggleFlag(cmd *cobra.Command, args []string, name string, apply func(*Context, string, bool) error) error {
	ctx, err := GetContext(cmd)
	if err != nil {
		return err
	}
	defer ctx.Close()

	value := true
	if len(args) == 2 {
		value, err = strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", args[1])
		}
	}

	conv, err := ctx.Repo.GetConversation(args[0])
	if err != nil {
		return err
	}
	if conv == nil {
		return fmt.Errorf("conversation not found: %s", args[0])
	}

	if err := apply(ctx, args[0], value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %v\n", args[0], name, value)
	return nil
}
