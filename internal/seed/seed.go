package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/repo"
	"github.com/ripplechat/ripple/internal/types"
)

// Options controls dataset size and shape.
type Options struct {
	Users                   int
	Conversations           int
	MessagesPerConversation int
	GroupRatio              float64 // fraction of conversations that are groups
	Seed                    int64   // rand seed; 0 means time-based
	CurrentUserID           string  // required; participates in every conversation
}

// DefaultOptions is the first-run demo dataset shape.
func DefaultOptions(currentUserID string) Options {
	return Options{
		Users:                   20,
		Conversations:           12,
		MessagesPerConversation: 30,
		GroupRatio:              0.3,
		CurrentUserID:           currentUserID,
	}
}

// Dataset is a self-consistent generated dataset.
type Dataset struct {
	Users         []types.User
	Conversations []types.Conversation
	Participants  []types.Participant
	Messages      []types.Message
}

var firstNames = []string{
	"Ava", "Ben", "Chloe", "Dev", "Elena", "Felix", "Grace", "Hassan",
	"Iris", "Jonas", "Kira", "Liam", "Mara", "Noor", "Oscar", "Priya",
	"Quinn", "Rosa", "Sam", "Tessa", "Umar", "Vera", "Wes", "Yara", "Zane",
}

var statusTexts = []string{
	"Hey there! I am using ripple.",
	"Busy",
	"At the gym",
	"Available",
	"In a meeting",
}

var textBodies = []string{
	"Hey, how's it going?",
	"Did you see the game last night?",
	"Running a bit late, sorry!",
	"Sounds good to me",
	"Let's catch up this weekend",
	"Can you send me that file?",
	"That's hilarious 😂",
	"On my way",
	"Thanks a lot!",
	"What do you think about this?",
}

var groupTitles = []string{
	"Weekend Plans", "Project Alpha", "Family", "Book Club",
	"Road Trip 2026", "Lunch Crew", "Design Team", "Quiz Night",
}

// markerBodies carry the emoji/keyword prefixes that the legacy preview
// heuristic matches on.
var markerBodies = map[types.MessageType]string{
	types.MessageTypeImage:     "📷 Photo",
	types.MessageTypeVideo:     "🎥 Video",
	types.MessageTypeAudio:     "🎵 Audio",
	types.MessageTypeVoiceNote: "🎤 Voice note",
	types.MessageTypeFile:      "📎 Document",
	types.MessageTypeLocation:  "📍 Location",
	types.MessageTypeLink:      "🔗 https://example.com/article",
	types.MessageTypeGif:       "GIF",
	types.MessageTypeSticker:   "Sticker",
}

// Generate produces a self-consistent dataset. The exact content varies with
// the seed, but the structural invariants hold for any seed: the requested
// user count, at least two distinct participants per conversation, the
// current user in every conversation, and per-conversation monotonically
// increasing message timestamps.
func Generate(opts Options) (Dataset, error) {
	if opts.CurrentUserID == "" {
		return Dataset{}, fmt.Errorf("seed: current user id required")
	}
	if opts.Users < 2 {
		opts.Users = 2
	}
	if opts.Conversations < 1 {
		opts.Conversations = 1
	}
	if opts.MessagesPerConversation < 1 {
		opts.MessagesPerConversation = 1
	}
	seedValue := opts.Seed
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seedValue))
	now := time.Now().UnixMilli()

	var dataset Dataset

	current := types.User{
		ID:          opts.CurrentUserID,
		Username:    "you",
		DisplayName: "You",
		IsOnline:    true,
		LastSeen:    now,
	}
	dataset.Users = append(dataset.Users, current)

	for i := 1; i < opts.Users; i++ {
		name := firstNames[rng.Intn(len(firstNames))]
		username := fmt.Sprintf("%s%d", lower(name), i)
		id, err := core.NewUserID()
		if err != nil {
			return Dataset{}, err
		}
		user := types.User{
			ID:          id,
			Username:    username,
			DisplayName: name,
			IsOnline:    rng.Float64() < 0.4,
			LastSeen:    now - int64(rng.Intn(72))*3600_000,
		}
		if rng.Float64() < 0.6 {
			status := statusTexts[rng.Intn(len(statusTexts))]
			user.StatusText = &status
		}
		if rng.Float64() < 0.7 {
			avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username)
			user.AvatarURL = &avatar
		}
		dataset.Users = append(dataset.Users, user)
	}

	others := dataset.Users[1:]

	for i := 0; i < opts.Conversations; i++ {
		convID, err := core.NewConversationID()
		if err != nil {
			return Dataset{}, err
		}
		isGroup := rng.Float64() < opts.GroupRatio
		createdAt := now - int64(30+rng.Intn(60))*86_400_000

		conv := types.Conversation{
			ID:        convID,
			IsGroup:   isGroup,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
			Pinned:    rng.Float64() < 0.15,
			Muted:     rng.Float64() < 0.1,
		}

		members := []types.User{current}
		if isGroup {
			title := groupTitles[rng.Intn(len(groupTitles))]
			conv.Title = &title
			avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=group-%d", i)
			conv.AvatarURL = &avatar
			count := 2 + rng.Intn(4)
			if count > len(others) {
				count = len(others)
			}
			for _, pick := range rng.Perm(len(others))[:count] {
				members = append(members, others[pick])
			}
		} else {
			members = append(members, others[rng.Intn(len(others))])
		}

		for j, member := range members {
			role := types.RoleMember
			if isGroup && j == 0 {
				role = types.RoleAdmin
			}
			dataset.Participants = append(dataset.Participants, types.Participant{
				ConversationID: convID,
				UserID:         member.ID,
				JoinedAt:       createdAt,
				Role:           role,
			})
		}

		// lastViewedAt lands somewhere inside the message window so some
		// conversations come up with unread messages.
		messages, err := generateMessages(rng, convID, members, createdAt, now, opts.MessagesPerConversation)
		if err != nil {
			return Dataset{}, err
		}
		if len(messages) > 0 {
			pivot := messages[rng.Intn(len(messages))]
			conv.LastViewedAt = pivot.TS
		}
		dataset.Messages = append(dataset.Messages, messages...)
		dataset.Conversations = append(dataset.Conversations, conv)
	}

	Reconcile(&dataset, opts.CurrentUserID)
	return dataset, nil
}

func generateMessages(rng *rand.Rand, convID string, members []types.User, since, until int64, count int) ([]types.Message, error) {
	window := until - since
	if window < int64(count) {
		window = int64(count)
	}
	step := window / int64(count+1)

	messages := make([]types.Message, 0, count)
	ts := since
	for i := 0; i < count; i++ {
		ts += step/2 + rng.Int63n(step+1)/2 + 1
		sender := members[rng.Intn(len(members))]

		msgType := types.MessageTypeText
		if rng.Float64() < 0.25 {
			msgType = types.AllMessageTypes[rng.Intn(len(types.AllMessageTypes))]
		}

		id, err := core.NewMessageID()
		if err != nil {
			return nil, err
		}
		message := types.Message{
			ID:             id,
			ConversationID: convID,
			SenderID:       sender.ID,
			TS:             ts,
			Type:           msgType,
			Delivered:      true,
			Read:           rng.Float64() < 0.8,
			Deleted:        rng.Float64() < 0.03,
		}

		if body, ok := markerBodies[msgType]; ok {
			message.Body = body
			attachMetadata(&message, msgType, rng)
		} else if msgType == types.MessageTypeSystem {
			message.Body = fmt.Sprintf("%s joined the conversation", sender.DisplayName)
		} else {
			message.Body = textBodies[rng.Intn(len(textBodies))]
		}

		messages = append(messages, message)
	}
	// Every conversation must end up with a valid last message, so at least
	// one row survives soft deletion.
	if len(messages) > 0 {
		messages[len(messages)-1].Deleted = false
	}
	return messages, nil
}

func attachMetadata(message *types.Message, msgType types.MessageType, rng *rand.Rand) {
	assetID := uuid.NewString()
	switch msgType {
	case types.MessageTypeImage, types.MessageTypeVideo, types.MessageTypeGif, types.MessageTypeSticker:
		mediaURL := fmt.Sprintf("https://cdn.ripple.example/media/%s", assetID)
		thumbURL := fmt.Sprintf("https://cdn.ripple.example/thumb/%s", assetID)
		message.MediaURL = &mediaURL
		message.ThumbnailURL = &thumbURL
	case types.MessageTypeAudio, types.MessageTypeVoiceNote:
		mediaURL := fmt.Sprintf("https://cdn.ripple.example/audio/%s", assetID)
		duration := int64(3000 + rng.Intn(120_000))
		message.MediaURL = &mediaURL
		message.DurationMS = &duration
	case types.MessageTypeFile:
		mediaURL := fmt.Sprintf("https://cdn.ripple.example/files/%s", assetID)
		fileName := fmt.Sprintf("document-%s.pdf", assetID[:8])
		fileSize := int64(10_000 + rng.Intn(5_000_000))
		message.MediaURL = &mediaURL
		message.FileName = &fileName
		message.FileSize = &fileSize
	case types.MessageTypeLink:
		linkURL := "https://example.com/article"
		linkTitle := "An interesting read"
		message.LinkURL = &linkURL
		message.LinkTitle = &linkTitle
	}
}

// Reconcile recomputes each conversation's denormalized last-message fields
// and unread count from the generated messages: the last message is the
// latest non-deleted one, and unread counts messages from other senders
// newer than lastViewedAt.
func Reconcile(dataset *Dataset, currentUserID string) {
	type summary struct {
		last   *types.Message
		unread int
	}
	byConv := make(map[string]*summary, len(dataset.Conversations))
	for i := range dataset.Conversations {
		byConv[dataset.Conversations[i].ID] = &summary{}
	}

	for i := range dataset.Messages {
		message := &dataset.Messages[i]
		entry, ok := byConv[message.ConversationID]
		if !ok || message.Deleted {
			continue
		}
		if entry.last == nil || message.TS > entry.last.TS {
			entry.last = message
		}
	}

	for i := range dataset.Conversations {
		conv := &dataset.Conversations[i]
		entry := byConv[conv.ID]
		if entry.last != nil {
			conv.LastMessageID = &entry.last.ID
			conv.LastMessageText = &entry.last.Body
			conv.LastMessageTS = &entry.last.TS
			conv.UpdatedAt = entry.last.TS
		}
	}

	for i := range dataset.Conversations {
		conv := &dataset.Conversations[i]
		unread := 0
		for j := range dataset.Messages {
			message := &dataset.Messages[j]
			if message.ConversationID != conv.ID || message.Deleted {
				continue
			}
			if message.SenderID != currentUserID && message.TS > conv.LastViewedAt {
				unread++
			}
		}
		conv.UnreadCount = unread
	}
}

// Apply writes the dataset into the repository: users, conversations,
// participants, then messages.
func Apply(r *repo.Repository, dataset Dataset) error {
	if err := r.UpsertUsers(dataset.Users); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := r.UpsertConversations(dataset.Conversations); err != nil {
		return fmt.Errorf("seed conversations: %w", err)
	}
	if err := r.UpsertParticipants(dataset.Participants); err != nil {
		return fmt.Errorf("seed participants: %w", err)
	}
	if err := r.UpsertMessages(dataset.Messages); err != nil {
		return fmt.Errorf("seed messages: %w", err)
	}
	return nil
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
