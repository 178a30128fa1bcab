package db

import (
	"database/sql"
	"fmt"

	"github.com/ripplechat/ripple/internal/types"
)

// participantColumns is the explicit column list for SELECT queries.
const participantColumns = `conversation_id, user_id, joined_at, role, last_read_message_id, last_read_at`

// UpsertParticipant inserts a membership row, replacing any existing row for
// the same (conversation, user) pair.
func UpsertParticipant(db DBTX, participant types.Participant) error {
	role := participant.Role
	if role == "" {
		role = types.RoleMember
	}
	_, err := db.Exec(`
		INSERT OR REPLACE INTO ripple_conversation_participants
			(conversation_id, user_id, joined_at, role, last_read_message_id, last_read_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, participant.ConversationID, participant.UserID, participant.JoinedAt, role,
		participant.LastReadMessageID, participant.LastReadAt)
	if err != nil {
		return fmt.Errorf("upsert participant %s/%s: %w", participant.ConversationID, participant.UserID, err)
	}
	return nil
}

// UpsertParticipants inserts many membership rows in one transaction.
func UpsertParticipants(db *sql.DB, participants []types.Participant) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, participant := range participants {
		if err := UpsertParticipant(tx, participant); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetParticipant returns the membership row for (conversationID, userID), or
// nil when absent.
func GetParticipant(db DBTX, conversationID, userID string) (*types.Participant, error) {
	row := db.QueryRow(`
		SELECT `+participantColumns+` FROM ripple_conversation_participants
		WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID)
	participant, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// GetParticipants returns a conversation's membership rows in join order.
func GetParticipants(db DBTX, conversationID string) ([]types.Participant, error) {
	rows, err := db.Query(`
		SELECT `+participantColumns+` FROM ripple_conversation_participants
		WHERE conversation_id = ?
		ORDER BY joined_at ASC, user_id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParticipants(rows)
}

// GetOtherParticipantUser returns the user record of the sole participant
// other than selfID. Used to resolve 1:1 conversation titles; returns nil
// when no such user exists.
func GetOtherParticipantUser(db DBTX, conversationID, selfID string) (*types.User, error) {
	row := db.QueryRow(`
		SELECT `+userColumns+` FROM ripple_users
		WHERE id = (
			SELECT user_id FROM ripple_conversation_participants
			WHERE conversation_id = ? AND user_id != ?
			ORDER BY joined_at ASC, user_id ASC
			LIMIT 1
		)
	`, conversationID, selfID)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListConversationIDsForUser returns ids of conversations the user belongs to.
func ListConversationIDsForUser(db DBTX, userID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT conversation_id FROM ripple_conversation_participants
		WHERE user_id = ?
		ORDER BY conversation_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateParticipantReadPosition records the last message a member has read.
func UpdateParticipantReadPosition(db DBTX, conversationID, userID, messageID string, readAt int64) error {
	_, err := db.Exec(`
		UPDATE ripple_conversation_participants
		SET last_read_message_id = ?, last_read_at = ?
		WHERE conversation_id = ? AND user_id = ?
	`, messageID, readAt, conversationID, userID)
	return err
}

// RemoveParticipant deletes a membership row.
func RemoveParticipant(db DBTX, conversationID, userID string) error {
	_, err := db.Exec(`
		DELETE FROM ripple_conversation_participants
		WHERE conversation_id = ? AND user_id = ?
	`, conversationID, userID)
	return err
}

// DeleteAllParticipants removes every membership row. Used only by
// reset/reseed.
func DeleteAllParticipants(db DBTX) error {
	_, err := db.Exec(`DELETE FROM ripple_conversation_participants`)
	return err
}

func scanParticipant(row rowScanner) (types.Participant, error) {
	var participant types.Participant
	err := row.Scan(&participant.ConversationID, &participant.UserID, &participant.JoinedAt,
		&participant.Role, &participant.LastReadMessageID, &participant.LastReadAt)
	if err != nil {
		return types.Participant{}, err
	}
	return participant, nil
}

func scanParticipants(rows *sql.Rows) ([]types.Participant, error) {
	var participants []types.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
