package types

// MessageType represents the authoritative content kind of a message.
type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeImage     MessageType = "image"
	MessageTypeVideo     MessageType = "video"
	MessageTypeAudio     MessageType = "audio"
	MessageTypeFile      MessageType = "file"
	MessageTypeLink      MessageType = "link"
	MessageTypeLocation  MessageType = "location"
	MessageTypeSticker   MessageType = "sticker"
	MessageTypeGif       MessageType = "gif"
	MessageTypeVoiceNote MessageType = "voice"
	MessageTypeSystem    MessageType = "system"
)

// AllMessageTypes lists every message type, used by the seed generator.
var AllMessageTypes = []MessageType{
	MessageTypeText,
	MessageTypeImage,
	MessageTypeVideo,
	MessageTypeAudio,
	MessageTypeFile,
	MessageTypeLink,
	MessageTypeLocation,
	MessageTypeSticker,
	MessageTypeGif,
	MessageTypeVoiceNote,
	MessageTypeSystem,
}

// MessageStatus is derived from the delivery flags, never persisted.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

// ParticipantRole represents a member's role in a conversation.
type ParticipantRole string

const (
	RoleAdmin     ParticipantRole = "admin"
	RoleModerator ParticipantRole = "moderator"
	RoleMember    ParticipantRole = "member"
)

// User represents a chat user.
type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	IsOnline    bool    `json:"is_online"`
	LastSeen    int64   `json:"last_seen"`
	StatusText  *string `json:"status_text,omitempty"`
}

// Conversation represents a chat thread, 1:1 or group.
//
// The last_message_* fields are a denormalized summary of the latest
// non-deleted message. Message rows stay authoritative; the summary is a
// cache repaired by reconciliation.
type Conversation struct {
	ID              string  `json:"id"`
	Title           *string `json:"title,omitempty"`
	IsGroup         bool    `json:"is_group"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
	LastMessageID   *string `json:"last_message_id,omitempty"`
	LastMessageText *string `json:"last_message_text,omitempty"`
	LastMessageTS   *int64  `json:"last_message_ts,omitempty"`
	UnreadCount     int     `json:"unread_count"`
	Pinned          bool    `json:"pinned"`
	Muted           bool    `json:"muted"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	LastViewedAt    int64   `json:"last_viewed_at"`
}

// Participant records membership of a user in a conversation.
type Participant struct {
	ConversationID    string          `json:"conversation_id"`
	UserID            string          `json:"user_id"`
	JoinedAt          int64           `json:"joined_at"`
	Role              ParticipantRole `json:"role"`
	LastReadMessageID *string         `json:"last_read_message_id,omitempty"`
	LastReadAt        *int64          `json:"last_read_at,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	Body           string              `json:"body"`
	TS             int64               `json:"ts"`
	Type           MessageType         `json:"type"`
	MediaURL       *string             `json:"media_url,omitempty"`
	ThumbnailURL   *string             `json:"thumbnail_url,omitempty"`
	FileName       *string             `json:"file_name,omitempty"`
	FileSize       *int64              `json:"file_size,omitempty"`
	DurationMS     *int64              `json:"duration_ms,omitempty"`
	LinkURL        *string             `json:"link_url,omitempty"`
	LinkTitle      *string             `json:"link_title,omitempty"`
	LinkImageURL   *string             `json:"link_image_url,omitempty"`
	ReplyTo        *string             `json:"reply_to,omitempty"`
	Delivered      bool                `json:"delivered"`
	Read           bool                `json:"read"`
	Failed         bool                `json:"failed"`
	Edited         bool                `json:"edited"`
	Deleted        bool                `json:"deleted"`
	EditedAt       *int64              `json:"edited_at,omitempty"`
	Reactions      map[string][]string `json:"reactions,omitempty"`
}

// Status derives the lifecycle state from the delivery flags. The flags are
// the single source of truth; no status column exists in storage.
func (m Message) Status() MessageStatus {
	switch {
	case m.Failed:
		return MessageStatusFailed
	case m.Read:
		return MessageStatusRead
	case m.Delivered:
		return MessageStatusDelivered
	default:
		return MessageStatusSent
	}
}

// MessageQueryOptions controls message collection queries.
type MessageQueryOptions struct {
	Limit          int
	BeforeTS       *int64
	Search         string
	IncludeDeleted bool
}

// ConversationSummary is the denormalized last-message snapshot written back
// onto a conversation after a send or a reconciliation pass.
type ConversationSummary struct {
	LastMessageID   *string
	LastMessageText *string
	LastMessageTS   *int64
	UnreadCount     int
}

// UnreadState is the derived unread projection for an open conversation.
type UnreadState struct {
	Count                int
	FirstUnreadMessageID string
}
