package view

import (
	"sort"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/repo"
	"github.com/ripplechat/ripple/internal/types"
)

// ComputeUnread derives the unread projection for an open conversation:
// messages from other senders newer than lastViewedAt, soft-deleted rows
// excluded. The first unread message is the chronologically earliest member.
func ComputeUnread(messages []types.Message, lastViewedAt int64, viewerID string) types.UnreadState {
	unread := make([]types.Message, 0)
	for _, message := range messages {
		if message.Deleted {
			continue
		}
		if message.SenderID == viewerID {
			continue
		}
		if message.TS <= lastViewedAt {
			continue
		}
		unread = append(unread, message)
	}
	if len(unread) == 0 {
		return types.UnreadState{}
	}
	sort.SliceStable(unread, func(i, j int) bool {
		return unread[i].TS < unread[j].TS
	})
	return types.UnreadState{
		Count:                len(unread),
		FirstUnreadMessageID: unread[0].ID,
	}
}

// ChatView is the view model for one open conversation.
type ChatView struct {
	repo           *repo.Repository
	session        core.Session
	conversationID string
	sub            *repo.Subscription

	messages []types.Message
	unread   types.UnreadState
}

// NewChatView opens a conversation view. Opening does not clear unread
// state; that happens only on an explicit MarkRead.
func NewChatView(r *repo.Repository, session core.Session, conversationID string) (*ChatView, error) {
	view := &ChatView{
		repo:           r,
		session:        session,
		conversationID: conversationID,
		sub:            r.Subscribe(repo.MessageTopic(conversationID)),
	}
	if err := view.Reload(); err != nil {
		view.sub.Cancel()
		return nil, err
	}
	return view, nil
}

// Reload re-queries messages and recomputes the unread projection.
func (v *ChatView) Reload() error {
	conv, err := v.repo.GetConversation(v.conversationID)
	if err != nil {
		return err
	}
	messages, err := v.repo.GetConversationMessages(v.conversationID, nil)
	if err != nil {
		return err
	}
	v.messages = messages

	lastViewedAt := int64(0)
	if conv != nil {
		lastViewedAt = conv.LastViewedAt
	}
	v.unread = ComputeUnread(messages, lastViewedAt, v.session.UserID)
	return nil
}

// Messages returns the loaded messages in chronological order.
func (v *ChatView) Messages() []types.Message {
	return v.messages
}

// Unread returns the current unread projection.
func (v *ChatView) Unread() types.UnreadState {
	return v.unread
}

// Changes returns the invalidation signal channel; callers Reload on each
// signal.
func (v *ChatView) Changes() <-chan struct{} {
	return v.sub.C
}

// MarkRead clears the unread state explicitly: persists the advance of
// last_viewed_at and zeroes the in-memory projection.
func (v *ChatView) MarkRead() error {
	if err := v.repo.MarkConversationRead(v.session, v.conversationID); err != nil {
		return err
	}
	v.unread = types.UnreadState{}
	return nil
}

// Close cancels the subscription.
func (v *ChatView) Close() {
	v.sub.Cancel()
}
