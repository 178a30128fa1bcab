package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ripplechat/ripple/internal/types"
)

// messageColumns is the explicit column list for SELECT queries.
const messageColumns = `id, conversation_id, sender_id, body, ts, msg_type, media_url, thumbnail_url, file_name, file_size, duration_ms, link_url, link_title, link_image_url, reply_to, delivered, read, failed, edited, deleted, edited_at, reactions`

// UpsertMessage inserts a message, fully replacing any existing row with the
// same id. A zero timestamp defaults to now; an empty type defaults to text.
func UpsertMessage(db DBTX, message types.Message) (types.Message, error) {
	if message.TS == 0 {
		message.TS = time.Now().UnixMilli()
	}
	if message.Type == "" {
		message.Type = types.MessageTypeText
	}
	if message.Reactions == nil {
		message.Reactions = map[string][]string{}
	}

	reactionsJSON, err := json.Marshal(message.Reactions)
	if err != nil {
		return types.Message{}, err
	}

	_, err = db.Exec(`
		INSERT OR REPLACE INTO ripple_messages
			(id, conversation_id, sender_id, body, ts, msg_type, media_url, thumbnail_url, file_name, file_size, duration_ms, link_url, link_title, link_image_url, reply_to, delivered, read, failed, edited, deleted, edited_at, reactions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, message.ID, message.ConversationID, message.SenderID, message.Body, message.TS, message.Type,
		message.MediaURL, message.ThumbnailURL, message.FileName, message.FileSize, message.DurationMS,
		message.LinkURL, message.LinkTitle, message.LinkImageURL, message.ReplyTo,
		boolToInt(message.Delivered), boolToInt(message.Read), boolToInt(message.Failed),
		boolToInt(message.Edited), boolToInt(message.Deleted), message.EditedAt, string(reactionsJSON))
	if err != nil {
		return types.Message{}, fmt.Errorf("upsert message %s: %w", message.ID, err)
	}
	return message, nil
}

// UpsertMessages inserts many messages in one transaction.
func UpsertMessages(db *sql.DB, messages []types.Message) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, message := range messages {
		if _, err := UpsertMessage(tx, message); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetMessage returns the message with id, or nil when absent.
func GetMessage(db DBTX, id string) (*types.Message, error) {
	row := db.QueryRow(`SELECT `+messageColumns+` FROM ripple_messages WHERE id = ?`, id)
	message, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// GetConversationMessages returns a conversation's messages in chronological
// order. Soft-deleted rows are excluded unless IncludeDeleted is set.
func GetConversationMessages(db DBTX, conversationID string, options *types.MessageQueryOptions) ([]types.Message, error) {
	conditions := []string{"conversation_id = ?"}
	params := []any{conversationID}

	limit := 0
	if options != nil {
		limit = options.Limit
		if !options.IncludeDeleted {
			conditions = append(conditions, "deleted = 0")
		}
		if options.BeforeTS != nil {
			conditions = append(conditions, "ts < ?")
			params = append(params, *options.BeforeTS)
		}
	} else {
		conditions = append(conditions, "deleted = 0")
	}

	query := `SELECT ` + messageColumns + ` FROM ripple_messages WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY ts ASC, id ASC`
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessagesBefore returns up to limit messages with ts < beforeTS,
// most-recent-first. Used for backward pagination.
func GetMessagesBefore(db DBTX, conversationID string, beforeTS int64, limit int) ([]types.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM ripple_messages
		WHERE conversation_id = ? AND deleted = 0 AND ts < ?
		ORDER BY ts DESC, id DESC
	`
	params := []any{conversationID, beforeTS}
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// SearchMessages returns non-deleted messages whose body contains term,
// mirroring SQL LIKE '%term%'. SQLite LIKE is case-insensitive for ASCII,
// which is the documented behavior here.
func SearchMessages(db DBTX, term string, limit int) ([]types.Message, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := `
		SELECT ` + messageColumns + ` FROM ripple_messages
		WHERE deleted = 0 AND body LIKE ? ESCAPE '\'
		ORDER BY ts DESC, id DESC
	`
	params := []any{pattern}
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// MarkMessageDelivered sets the delivered flag.
func MarkMessageDelivered(db DBTX, id string) error {
	_, err := db.Exec(`UPDATE ripple_messages SET delivered = 1, failed = 0 WHERE id = ?`, id)
	return err
}

// MarkMessageRead sets the read flag. A read message is implicitly delivered.
func MarkMessageRead(db DBTX, id string) error {
	_, err := db.Exec(`UPDATE ripple_messages SET read = 1, delivered = 1, failed = 0 WHERE id = ?`, id)
	return err
}

// MarkMessageFailed sets the failed flag on an undelivered message.
func MarkMessageFailed(db DBTX, id string) error {
	_, err := db.Exec(`UPDATE ripple_messages SET failed = 1 WHERE id = ? AND delivered = 0`, id)
	return err
}

// EditMessage replaces the body and records the edit timestamp.
func EditMessage(db DBTX, id string, body string, editedAt int64) error {
	result, err := db.Exec(`
		UPDATE ripple_messages SET body = ?, edited = 1, edited_at = ? WHERE id = ?
	`, body, editedAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("message not found: %s", id)
	}
	return nil
}

// SoftDeleteMessage marks a message deleted without removing the row.
func SoftDeleteMessage(db DBTX, id string) error {
	_, err := db.Exec(`UPDATE ripple_messages SET deleted = 1 WHERE id = ?`, id)
	return err
}

// MarkAllRead sets the read flag on every message in a conversation not sent
// by viewerID.
func MarkAllRead(db DBTX, conversationID string, viewerID string) error {
	_, err := db.Exec(`
		UPDATE ripple_messages SET read = 1, delivered = 1
		WHERE conversation_id = ? AND sender_id != ? AND deleted = 0
	`, conversationID, viewerID)
	return err
}

// LatestActiveMessage returns the most recent non-deleted message of a
// conversation, or nil when it has none. This is the authoritative input for
// summary reconciliation.
func LatestActiveMessage(db DBTX, conversationID string) (*types.Message, error) {
	row := db.QueryRow(`
		SELECT `+messageColumns+` FROM ripple_messages
		WHERE conversation_id = ? AND deleted = 0
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`, conversationID)
	message, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// CountUnread counts non-deleted messages from other senders newer than
// lastViewedAt.
func CountUnread(db DBTX, conversationID string, viewerID string, lastViewedAt int64) (int, error) {
	row := db.QueryRow(`
		SELECT COUNT(*) FROM ripple_messages
		WHERE conversation_id = ? AND sender_id != ? AND ts > ? AND deleted = 0
	`, conversationID, viewerID, lastViewedAt)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAllMessages removes every message row. Used only by reset/reseed.
func DeleteAllMessages(db DBTX) error {
	_, err := db.Exec(`DELETE FROM ripple_messages`)
	return err
}

func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

func scanMessage(row rowScanner) (types.Message, error) {
	var message types.Message
	var delivered, read, failed, edited, deleted int
	var reactionsJSON string
	err := row.Scan(&message.ID, &message.ConversationID, &message.SenderID, &message.Body, &message.TS,
		&message.Type, &message.MediaURL, &message.ThumbnailURL, &message.FileName, &message.FileSize,
		&message.DurationMS, &message.LinkURL, &message.LinkTitle, &message.LinkImageURL, &message.ReplyTo,
		&delivered, &read, &failed, &edited, &deleted, &message.EditedAt, &reactionsJSON)
	if err != nil {
		return types.Message{}, err
	}
	message.Delivered = delivered != 0
	message.Read = read != 0
	message.Failed = failed != 0
	message.Edited = edited != 0
	message.Deleted = deleted != 0
	message.Reactions = map[string][]string{}
	if reactionsJSON != "" {
		if err := json.Unmarshal([]byte(reactionsJSON), &message.Reactions); err != nil {
			return types.Message{}, fmt.Errorf("decode reactions for %s: %w", message.ID, err)
		}
	}
	return message, nil
}

func scanMessages(rows *sql.Rows) ([]types.Message, error) {
	var messages []types.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
