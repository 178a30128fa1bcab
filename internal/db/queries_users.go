package db

import (
	"database/sql"
	"fmt"

	"github.com/ripplechat/ripple/internal/types"
)

// userColumns is the explicit column list for SELECT queries.
const userColumns = `id, username, display_name, avatar_url, is_online, last_seen, status_text`

// UpsertUser inserts a user, fully replacing any existing row with the same
// id (last-write-wins, no merge). Upsert via ON CONFLICT, not INSERT OR
// REPLACE: REPLACE runs as delete+insert and would cascade-delete every
// message the user ever sent.
func UpsertUser(db DBTX, user types.User) error {
	_, err := db.Exec(`
		INSERT INTO ripple_users (id, username, display_name, avatar_url, is_online, last_seen, status_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			is_online = excluded.is_online,
			last_seen = excluded.last_seen,
			status_text = excluded.status_text
	`, user.ID, user.Username, user.DisplayName, user.AvatarURL, boolToInt(user.IsOnline), user.LastSeen, user.StatusText)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

// UpsertUsers inserts many users in one transaction.
func UpsertUsers(db *sql.DB, users []types.User) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, user := range users {
		if err := UpsertUser(tx, user); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetUser returns the user with id, or nil when absent.
func GetUser(db DBTX, id string) (*types.User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM ripple_users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by display name.
func ListUsers(db DBTX) ([]types.User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM ripple_users ORDER BY display_name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// SetUserPresence updates the online flag and last-seen timestamp.
func SetUserPresence(db DBTX, id string, online bool, lastSeen int64) error {
	_, err := db.Exec(`
		UPDATE ripple_users SET is_online = ?, last_seen = ? WHERE id = ?
	`, boolToInt(online), lastSeen, id)
	return err
}

// DeleteAllUsers removes every user row. Used only by reset/reseed.
func DeleteAllUsers(db DBTX) error {
	_, err := db.Exec(`DELETE FROM ripple_users`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var online int
	err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.AvatarURL, &online, &user.LastSeen, &user.StatusText)
	if err != nil {
		return types.User{}, err
	}
	user.IsOnline = online != 0
	return user, nil
}

func scanUsers(rows *sql.Rows) ([]types.User, error) {
	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
