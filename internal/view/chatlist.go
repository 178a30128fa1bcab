package view

import (
	"sort"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/repo"
	"github.com/ripplechat/ripple/internal/types"
)

// UnknownUserLabel is the fallback title when a 1:1 peer cannot be resolved.
const UnknownUserLabel = "Unknown User"

// ChatListItem is the display projection of one conversation.
type ChatListItem struct {
	ConversationID string
	Title          string
	AvatarURL      string
	Preview        string
	PreviewKind    PreviewKind
	LastMessageTS  int64
	UnreadCount    int
	Pinned         bool
	Muted          bool
	IsGroup        bool
	PeerOnline     bool
}

// OrderConversations partitions conversations into pinned and unpinned,
// sorts the unpinned by last-message timestamp descending, and returns
// pinned (relative order preserved) followed by sorted unpinned. The sort is
// stable so equal timestamps keep their prior relative order.
func OrderConversations(convs []types.Conversation) []types.Conversation {
	var pinned, unpinned []types.Conversation
	for _, conv := range convs {
		if conv.Pinned {
			pinned = append(pinned, conv)
		} else {
			unpinned = append(unpinned, conv)
		}
	}
	sort.SliceStable(unpinned, func(i, j int) bool {
		return lastMessageTS(unpinned[i]) > lastMessageTS(unpinned[j])
	})
	return append(pinned, unpinned...)
}

func lastMessageTS(conv types.Conversation) int64 {
	if conv.LastMessageTS == nil {
		return 0
	}
	return *conv.LastMessageTS
}

// ResolveTitle resolves the display title and avatar of a conversation. An
// explicit title wins (group chats); otherwise the sole other participant's
// user record is used, degrading to a placeholder when it cannot be found.
func ResolveTitle(conv types.Conversation, peer *types.User) (title, avatarURL string) {
	if conv.Title != nil && *conv.Title != "" {
		title = *conv.Title
		if conv.AvatarURL != nil {
			avatarURL = *conv.AvatarURL
		}
		return title, avatarURL
	}
	if peer == nil {
		return UnknownUserLabel, ""
	}
	if peer.AvatarURL != nil {
		avatarURL = *peer.AvatarURL
	}
	return peer.DisplayName, avatarURL
}

// BuildChatList produces the ordered display projection of every
// conversation for the session user.
func BuildChatList(r *repo.Repository, session core.Session) ([]ChatListItem, error) {
	convs, err := r.ListConversations()
	if err != nil {
		return nil, err
	}
	ordered := OrderConversations(convs)

	items := make([]ChatListItem, 0, len(ordered))
	for _, conv := range ordered {
		item := ChatListItem{
			ConversationID: conv.ID,
			UnreadCount:    conv.UnreadCount,
			Pinned:         conv.Pinned,
			Muted:          conv.Muted,
			IsGroup:        conv.IsGroup,
			LastMessageTS:  lastMessageTS(conv),
		}

		var peer *types.User
		if !conv.IsGroup {
			peer, err = r.GetOtherParticipantUser(conv.ID, session.UserID)
			if err != nil {
				return nil, err
			}
			if peer != nil {
				item.PeerOnline = peer.IsOnline
			}
		}
		item.Title, item.AvatarURL = ResolveTitle(conv, peer)

		item.Preview, item.PreviewKind = resolvePreview(r, conv)
		items = append(items, item)
	}
	return items, nil
}

// resolvePreview classifies the list preview. The authoritative message row
// is preferred; when the summary points at a missing row only the
// denormalized text is left, so the marker heuristic takes over.
func resolvePreview(r *repo.Repository, conv types.Conversation) (string, PreviewKind) {
	text := ""
	if conv.LastMessageText != nil {
		text = *conv.LastMessageText
	}

	if conv.LastMessageID != nil {
		if message, err := r.GetMessage(*conv.LastMessageID); err == nil && message != nil {
			kind := ClassifyMessage(*message)
			if label := PreviewLabel(kind); label != "" && kind != PreviewText {
				return label, kind
			}
			return message.Body, kind
		}
	}

	kind := ClassifyText(text)
	if label := PreviewLabel(kind); label != "" && kind != PreviewText {
		return label, kind
	}
	return text, kind
}

// ChatList is a live view model over the conversation list. It re-queries
// whenever the repository signals a change.
type ChatList struct {
	repo    *repo.Repository
	session core.Session
	sub     *repo.Subscription

	updates chan []ChatListItem
	done    chan struct{}
}

// NewChatList starts a chat-list view model. Updates delivers a fresh
// projection after every change signal; Close tears the subscription down.
func NewChatList(r *repo.Repository, session core.Session) *ChatList {
	list := &ChatList{
		repo:    r,
		session: session,
		sub:     r.Subscribe(repo.TopicConversations),
		updates: make(chan []ChatListItem, 1),
		done:    make(chan struct{}),
	}
	go list.run()
	return list
}

// Updates returns the projection stream.
func (l *ChatList) Updates() <-chan []ChatListItem {
	return l.updates
}

// Load computes the current projection one-shot.
func (l *ChatList) Load() ([]ChatListItem, error) {
	return BuildChatList(l.repo, l.session)
}

// Close cancels the subscription and stops the update loop.
func (l *ChatList) Close() {
	l.sub.Cancel()
	close(l.done)
}

func (l *ChatList) run() {
	defer close(l.updates)
	for {
		select {
		case <-l.done:
			return
		case _, ok := <-l.sub.C:
			if !ok {
				return
			}
			items, err := l.Load()
			if err != nil {
				continue
			}
			select {
			case l.updates <- items:
			case <-l.done:
				return
			default:
				// Consumer is behind; drop this snapshot, a newer one follows.
			}
		}
	}
}
