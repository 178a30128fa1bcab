package db

import (
	"database/sql"
	"fmt"

	"github.com/ripplechat/ripple/internal/types"
)

// conversationColumns is the explicit column list for SELECT queries.
const conversationColumns = `id, title, is_group, created_at, updated_at, last_message_id, last_message_text, last_message_ts, unread_count, pinned, muted, avatar_url, last_viewed_at`

// UpsertConversation inserts a conversation, fully replacing any existing
// row with the same id. Upsert via ON CONFLICT, not INSERT OR REPLACE:
// REPLACE runs as delete+insert and would cascade-delete the conversation's
// messages and participants.
func UpsertConversation(db DBTX, conv types.Conversation) error {
	_, err := db.Exec(`
		INSERT INTO ripple_conversations
			(id, title, is_group, created_at, updated_at, last_message_id, last_message_text, last_message_ts, unread_count, pinned, muted, avatar_url, last_viewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			is_group = excluded.is_group,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			last_message_id = excluded.last_message_id,
			last_message_text = excluded.last_message_text,
			last_message_ts = excluded.last_message_ts,
			unread_count = excluded.unread_count,
			pinned = excluded.pinned,
			muted = excluded.muted,
			avatar_url = excluded.avatar_url,
			last_viewed_at = excluded.last_viewed_at
	`, conv.ID, conv.Title, boolToInt(conv.IsGroup), conv.CreatedAt, conv.UpdatedAt,
		conv.LastMessageID, conv.LastMessageText, conv.LastMessageTS, conv.UnreadCount,
		boolToInt(conv.Pinned), boolToInt(conv.Muted), conv.AvatarURL, conv.LastViewedAt)
	if err != nil {
		return fmt.Errorf("upsert conversation %s: %w", conv.ID, err)
	}
	return nil
}

// UpsertConversations inserts many conversations in one transaction.
func UpsertConversations(db *sql.DB, convs []types.Conversation) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if err := UpsertConversation(tx, conv); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetConversation returns the conversation with id, or nil when absent.
func GetConversation(db DBTX, id string) (*types.Conversation, error) {
	row := db.QueryRow(`SELECT `+conversationColumns+` FROM ripple_conversations WHERE id = ?`, id)
	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all conversations by last-message recency,
// newest first. Conversations without messages sort last.
func ListConversations(db DBTX) ([]types.Conversation, error) {
	rows, err := db.Query(`
		SELECT ` + conversationColumns + ` FROM ripple_conversations
		ORDER BY last_message_ts IS NULL, last_message_ts DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConversations(rows)
}

// ListUnreadConversations returns conversations with unread messages.
func ListUnreadConversations(db DBTX) ([]types.Conversation, error) {
	rows, err := db.Query(`
		SELECT ` + conversationColumns + ` FROM ripple_conversations
		WHERE unread_count > 0
		ORDER BY last_message_ts IS NULL, last_message_ts DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConversations(rows)
}

// UpdateConversationSummary writes the denormalized last-message fields and
// unread counter.
func UpdateConversationSummary(db DBTX, id string, summary types.ConversationSummary, updatedAt int64) error {
	result, err := db.Exec(`
		UPDATE ripple_conversations
		SET last_message_id = ?, last_message_text = ?, last_message_ts = ?, unread_count = ?, updated_at = ?
		WHERE id = ?
	`, summary.LastMessageID, summary.LastMessageText, summary.LastMessageTS, summary.UnreadCount, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update summary for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("conversation not found: %s", id)
	}
	return nil
}

// SetUnreadCount writes the unread counter.
func SetUnreadCount(db DBTX, id string, count int) error {
	_, err := db.Exec(`UPDATE ripple_conversations SET unread_count = ? WHERE id = ?`, count, id)
	return err
}

// SetConversationPinned updates the pinned flag.
func SetConversationPinned(db DBTX, id string, pinned bool) error {
	_, err := db.Exec(`UPDATE ripple_conversations SET pinned = ? WHERE id = ?`, boolToInt(pinned), id)
	return err
}

// SetConversationMuted updates the muted flag.
func SetConversationMuted(db DBTX, id string, muted bool) error {
	_, err := db.Exec(`UPDATE ripple_conversations SET muted = ? WHERE id = ?`, boolToInt(muted), id)
	return err
}

// AdvanceLastViewedAt moves last_viewed_at forward to ts. It never moves the
// timestamp backward; use ResetLastViewedAt for an explicit reset.
func AdvanceLastViewedAt(db DBTX, id string, ts int64) error {
	_, err := db.Exec(`
		UPDATE ripple_conversations SET last_viewed_at = MAX(last_viewed_at, ?) WHERE id = ?
	`, ts, id)
	return err
}

// ResetLastViewedAt clears last_viewed_at, making every message unread again.
func ResetLastViewedAt(db DBTX, id string) error {
	_, err := db.Exec(`UPDATE ripple_conversations SET last_viewed_at = 0 WHERE id = ?`, id)
	return err
}

// DeleteConversation removes a conversation. Participants and messages go
// with it via cascade.
func DeleteConversation(db DBTX, id string) error {
	_, err := db.Exec(`DELETE FROM ripple_conversations WHERE id = ?`, id)
	return err
}

// DeleteAllConversations removes every conversation row. Used only by
// reset/reseed.
func DeleteAllConversations(db DBTX) error {
	_, err := db.Exec(`DELETE FROM ripple_conversations`)
	return err
}

func scanConversation(row rowScanner) (types.Conversation, error) {
	var conv types.Conversation
	var isGroup, pinned, muted int
	err := row.Scan(&conv.ID, &conv.Title, &isGroup, &conv.CreatedAt, &conv.UpdatedAt,
		&conv.LastMessageID, &conv.LastMessageText, &conv.LastMessageTS, &conv.UnreadCount,
		&pinned, &muted, &conv.AvatarURL, &conv.LastViewedAt)
	if err != nil {
		return types.Conversation{}, err
	}
	conv.IsGroup = isGroup != 0
	conv.Pinned = pinned != 0
	conv.Muted = muted != 0
	return conv, nil
}

func scanConversations(rows *sql.Rows) ([]types.Conversation, error) {
	var convs []types.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return convs, nil
}
