package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ripplechat/ripple/internal/assistant"
	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/types"
)

// NewAssistantCmd creates the assistant command. The prior assistant
// conversation is replayed as turn history on every request.
func NewAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant <conversation> <text...>",
		Short: "Send a message to the assistant and store the reply",
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

			config, err := core.ReadConfig()
			if err != nil {
				return err
			}
			if config.AssistantAPIKey == "" {
				return fmt.Errorf("assistant API key not configured. Set assistant_api_key in the ripple config")
			}

			var opts []assistant.Option
			if config.AssistantBaseURL != "" {
				opts = append(opts, assistant.WithBaseURL(config.AssistantBaseURL))
			}
			if config.AssistantModel != "" {
				opts = append(opts, assistant.WithModel(config.AssistantModel))
			}
			client := assistant.NewClient(config.AssistantAPIKey, opts...)

			conversationID := args[0]
			text := strings.Join(args[1:], " ")

			messages, err := ctx.Repo.GetConversationMessages(conversationID, nil)
			if err != nil {
				return err
			}
			history := make([]assistant.ChatMessage, 0, len(messages))
			for _, message := range messages {
				role := assistant.RoleAssistant
				if message.SenderID == ctx.Session.UserID {
					role = assistant.RoleUser
				}
				history = append(history, assistant.ChatMessage{Role: role, Content: message.Body})
			}

			if _, err := ctx.Repo.SendMessage(ctx.Session, types.Message{
				ConversationID: conversationID,
				Body:           text,
				Type:           types.MessageTypeText,
				Delivered:      true,
			}); err != nil {
				return err
			}

			reply, err := client.Complete(cmd.Context(), history, text)
			if err != nil {
				return err
			}

			assistantID, err := assistantUserID(ctx)
			if err != nil {
				return err
			}
			if _, err := ctx.Repo.SendMessage(ctx.Session, types.Message{
				ConversationID: conversationID,
				SenderID:       assistantID,
				Body:           reply.Content,
				Type:           types.MessageTypeText,
				Delivered:      true,
			}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}
	return cmd
}

const metaAssistantUser = "assistant_user_id"

// assistantUserID returns the stable assistant user, creating it on first
// use.
func assistantUserID(ctx *Context) (string, error) {
	id, err := ctx.Repo.GetMeta(metaAssistantUser)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id, err = core.NewUserID()
	if err != nil {
		return "", err
	}
	if err := ctx.Repo.UpsertUser(types.User{
		ID:          id,
		Username:    "assistant",
		DisplayName: "Assistant",
		IsOnline:    true,
	}); err != nil {
		return "", err
	}
	if err := ctx.Repo.SetMeta(metaAssistantUser, id); err != nil {
		return "", err
	}
	return id, nil
}
