package repo

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ripplechat/ripple/internal/core"
	"github.com/ripplechat/ripple/internal/db"
	"github.com/ripplechat/ripple/internal/types"
)

// Repository is the single facade over the data access layer. It adds no
// business logic beyond delegation, the send path, bulk reset, and summary
// reconciliation; view-state derivation lives in the view package.
type Repository struct {
	conn *sql.DB
	bus  *Bus
	log  *zap.Logger
}

// New wraps an open database connection.
func New(conn *sql.DB, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{conn: conn, bus: NewBus(), log: log}
}

// Open opens the database at path, ensures the schema, and reconciles
// conversation summaries as a startup safety net.
func Open(path string, log *zap.Logger) (*Repository, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	r := New(conn, log)
	if err := r.ReconcileSummaries(core.Session{}); err != nil {
		r.log.Warn("summary reconciliation at open failed", zap.Error(err))
	}
	return r, nil
}

// DB exposes the underlying connection for read-only callers.
func (r *Repository) DB() *sql.DB {
	return r.conn
}

// Close closes the underlying connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

// Subscribe registers a change subscription on topic.
func (r *Repository) Subscribe(topic string) *Subscription {
	return r.bus.Subscribe(topic)
}

// GetMeta reads a metadata key ("" when unset).
func (r *Repository) GetMeta(key string) (string, error) {
	return db.GetMeta(r.conn, key)
}

// SetMeta writes a metadata key.
func (r *Repository) SetMeta(key, value string) error {
	return db.SetMeta(r.conn, key, value)
}

// Users.

func (r *Repository) UpsertUser(user types.User) error {
	if err := db.UpsertUser(r.conn, user); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) UpsertUsers(users []types.User) error {
	if err := db.UpsertUsers(r.conn, users); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) GetUser(id string) (*types.User, error) {
	return db.GetUser(r.conn, id)
}

func (r *Repository) ListUsers() ([]types.User, error) {
	return db.ListUsers(r.conn)
}

func (r *Repository) SetUserPresence(id string, online bool, lastSeen int64) error {
	if err := db.SetUserPresence(r.conn, id, online, lastSeen); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

// Conversations.

func (r *Repository) UpsertConversation(conv types.Conversation) error {
	if err := db.UpsertConversation(r.conn, conv); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) UpsertConversations(convs []types.Conversation) error {
	if err := db.UpsertConversations(r.conn, convs); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) GetConversation(id string) (*types.Conversation, error) {
	return db.GetConversation(r.conn, id)
}

func (r *Repository) ListConversations() ([]types.Conversation, error) {
	return db.ListConversations(r.conn)
}

func (r *Repository) ListUnreadConversations() ([]types.Conversation, error) {
	return db.ListUnreadConversations(r.conn)
}

func (r *Repository) SetConversationPinned(id string, pinned bool) error {
	if err := db.SetConversationPinned(r.conn, id, pinned); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) SetConversationMuted(id string, muted bool) error {
	if err := db.SetConversationMuted(r.conn, id, muted); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) DeleteConversation(id string) error {
	if err := db.DeleteConversation(r.conn, id); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	r.bus.Publish(MessageTopic(id))
	return nil
}

// Participants.

func (r *Repository) UpsertParticipant(participant types.Participant) error {
	if err := db.UpsertParticipant(r.conn, participant); err != nil {
		return err
	}
	// 1:1 title and avatar resolution reads membership rows.
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) UpsertParticipants(participants []types.Participant) error {
	if err := db.UpsertParticipants(r.conn, participants); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) GetParticipants(conversationID string) ([]types.Participant, error) {
	return db.GetParticipants(r.conn, conversationID)
}

func (r *Repository) GetOtherParticipantUser(conversationID, selfID string) (*types.User, error) {
	return db.GetOtherParticipantUser(r.conn, conversationID, selfID)
}

func (r *Repository) RemoveParticipant(conversationID, userID string) error {
	if err := db.RemoveParticipant(r.conn, conversationID, userID); err != nil {
		return err
	}
	r.notifyMessageChange(conversationID)
	return nil
}

// Messages.

func (r *Repository) GetMessage(id string) (*types.Message, error) {
	return db.GetMessage(r.conn, id)
}

func (r *Repository) GetConversationMessages(conversationID string, options *types.MessageQueryOptions) ([]types.Message, error) {
	return db.GetConversationMessages(r.conn, conversationID, options)
}

func (r *Repository) GetMessagesBefore(conversationID string, beforeTS int64, limit int) ([]types.Message, error) {
	return db.GetMessagesBefore(r.conn, conversationID, beforeTS, limit)
}

func (r *Repository) SearchMessages(term string, limit int) ([]types.Message, error) {
	return db.SearchMessages(r.conn, term, limit)
}

func (r *Repository) UpsertMessages(messages []types.Message) error {
	if err := db.UpsertMessages(r.conn, messages); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) EditMessage(id string, body string) error {
	message, err := db.GetMessage(r.conn, id)
	if err != nil {
		return err
	}
	if message == nil {
		return fmt.Errorf("message not found: %s", id)
	}
	if err := db.EditMessage(r.conn, id, body, time.Now().UnixMilli()); err != nil {
		return err
	}
	r.notifyMessageChange(message.ConversationID)
	return nil
}

func (r *Repository) MarkMessageDelivered(id string) error {
	return r.flagMessage(id, db.MarkMessageDelivered)
}

func (r *Repository) MarkMessageRead(id string) error {
	return r.flagMessage(id, db.MarkMessageRead)
}

func (r *Repository) MarkMessageFailed(id string) error {
	return r.flagMessage(id, db.MarkMessageFailed)
}

func (r *Repository) flagMessage(id string, update func(db.DBTX, string) error) error {
	message, err := db.GetMessage(r.conn, id)
	if err != nil {
		return err
	}
	if message == nil {
		return fmt.Errorf("message not found: %s", id)
	}
	if err := update(r.conn, id); err != nil {
		return err
	}
	r.notifyMessageChange(message.ConversationID)
	return nil
}

// SoftDeleteMessage marks a message deleted and repairs the owning
// conversation's summary, since the deleted row may have been the last
// message or part of the unread count.
func (r *Repository) SoftDeleteMessage(id string, session core.Session) error {
	message, err := db.GetMessage(r.conn, id)
	if err != nil {
		return err
	}
	if message == nil {
		return fmt.Errorf("message not found: %s", id)
	}
	if err := db.SoftDeleteMessage(r.conn, id); err != nil {
		return err
	}
	if err := r.reconcileConversation(message.ConversationID, session); err != nil {
		r.log.Warn("summary repair after delete failed",
			zap.String("conversation", message.ConversationID), zap.Error(err))
	}
	r.notifyMessageChange(message.ConversationID)
	return nil
}

// SendMessage inserts a message and updates the owning conversation's
// denormalized last-message fields in one logical unit. If the summary step
// fails after the insert succeeded the message is retained; durability wins,
// and reconciliation repairs the summary later.
func (r *Repository) SendMessage(session core.Session, message types.Message) (types.Message, error) {
	if !session.Valid() {
		return types.Message{}, core.ErrNoSession
	}
	if message.ConversationID == "" {
		return types.Message{}, fmt.Errorf("send message: conversation id required")
	}
	if message.SenderID == "" {
		message.SenderID = session.UserID
	}
	if message.ID == "" {
		id, err := core.NewMessageID()
		if err != nil {
			return types.Message{}, err
		}
		message.ID = id
	}

	sent, err := db.UpsertMessage(r.conn, message)
	if err != nil {
		return types.Message{}, err
	}

	if err := r.updateSummaryAfterSend(session, sent); err != nil {
		// Message row is durable; the stale summary self-heals on the next
		// reconciliation pass.
		r.log.Warn("conversation summary update failed after send",
			zap.String("conversation", sent.ConversationID),
			zap.String("message", sent.ID),
			zap.Error(err))
	}

	r.notifyMessageChange(sent.ConversationID)
	return sent, nil
}

func (r *Repository) updateSummaryAfterSend(session core.Session, message types.Message) error {
	conv, err := db.GetConversation(r.conn, message.ConversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return fmt.Errorf("conversation not found: %s", message.ConversationID)
	}

	unread, err := db.CountUnread(r.conn, conv.ID, session.UserID, conv.LastViewedAt)
	if err != nil {
		return err
	}

	summary := types.ConversationSummary{
		LastMessageID:   &message.ID,
		LastMessageText: &message.Body,
		LastMessageTS:   &message.TS,
		UnreadCount:     unread,
	}
	return db.UpdateConversationSummary(r.conn, conv.ID, summary, time.Now().UnixMilli())
}

// MarkConversationRead advances last_viewed_at to now, zeroes the unread
// counter, marks other senders' messages read, and records the member's
// read position. Persisted so a reload reflects the cleared state.
func (r *Repository) MarkConversationRead(session core.Session, conversationID string) error {
	if !session.Valid() {
		return core.ErrNoSession
	}
	now := time.Now().UnixMilli()
	if err := db.AdvanceLastViewedAt(r.conn, conversationID, now); err != nil {
		return err
	}
	if err := db.SetUnreadCount(r.conn, conversationID, 0); err != nil {
		return err
	}
	if err := db.MarkAllRead(r.conn, conversationID, session.UserID); err != nil {
		return err
	}
	if latest, err := db.LatestActiveMessage(r.conn, conversationID); err == nil && latest != nil {
		if err := db.UpdateParticipantReadPosition(r.conn, conversationID, session.UserID, latest.ID, now); err != nil {
			r.log.Warn("read position update failed",
				zap.String("conversation", conversationID), zap.Error(err))
		}
	}
	r.notifyMessageChange(conversationID)
	return nil
}

// ReconcileSummaries recomputes every conversation's denormalized summary
// from authoritative message rows. Safe to run any time a summary is
// suspected stale; runs at open.
func (r *Repository) ReconcileSummaries(session core.Session) error {
	convs, err := db.ListConversations(r.conn)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if err := r.reconcileConversation(conv.ID, session); err != nil {
			return fmt.Errorf("reconcile %s: %w", conv.ID, err)
		}
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) reconcileConversation(conversationID string, session core.Session) error {
	conv, err := db.GetConversation(r.conn, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil
	}

	latest, err := db.LatestActiveMessage(r.conn, conversationID)
	if err != nil {
		return err
	}

	// Without a session there is no viewer to count unread against; keep the
	// stored counter and repair only the last-message fields.
	unread := conv.UnreadCount
	if session.Valid() {
		unread, err = db.CountUnread(r.conn, conversationID, session.UserID, conv.LastViewedAt)
		if err != nil {
			return err
		}
	}

	summary := types.ConversationSummary{UnreadCount: unread}
	if latest != nil {
		summary.LastMessageID = &latest.ID
		summary.LastMessageText = &latest.Body
		summary.LastMessageTS = &latest.TS
	}
	return db.UpdateConversationSummary(r.conn, conversationID, summary, time.Now().UnixMilli())
}

// ClearAllData deletes messages, participants, conversations, and users in
// dependency order inside one transaction. Used by reset/reseed.
func (r *Repository) ClearAllData() error {
	tx, err := r.conn.Begin()
	if err != nil {
		return err
	}
	steps := []func(db.DBTX) error{
		db.DeleteAllMessages,
		db.DeleteAllParticipants,
		db.DeleteAllConversations,
		db.DeleteAllUsers,
	}
	for _, step := range steps {
		if err := step(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.bus.Publish(TopicConversations)
	return nil
}

func (r *Repository) notifyMessageChange(conversationID string) {
	r.bus.Publish(MessageTopic(conversationID))
	r.bus.Publish(TopicConversations)
}
