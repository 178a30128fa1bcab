package db

import "database/sql"

const schemaSQL = `
-- Users
CREATE TABLE IF NOT EXISTS ripple_users (
  id TEXT PRIMARY KEY,                 -- e.g., "usr-x9y8z7w6"
  username TEXT NOT NULL,
  display_name TEXT NOT NULL,
  avatar_url TEXT,
  is_online INTEGER NOT NULL DEFAULT 0,
  last_seen INTEGER NOT NULL,          -- unix ms
  status_text TEXT
);

-- Conversations (1:1 and group)
CREATE TABLE IF NOT EXISTS ripple_conversations (
  id TEXT PRIMARY KEY,                 -- e.g., "cnv-a1b2c3d4"
  title TEXT,                          -- null for 1:1, resolved from the other participant
  is_group INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  last_message_id TEXT,                -- denormalized summary, messages stay authoritative
  last_message_text TEXT,
  last_message_ts INTEGER,
  unread_count INTEGER NOT NULL DEFAULT 0,
  pinned INTEGER NOT NULL DEFAULT 0,
  muted INTEGER NOT NULL DEFAULT 0,
  avatar_url TEXT,
  last_viewed_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ripple_conversations_last_ts ON ripple_conversations(last_message_ts);
CREATE INDEX IF NOT EXISTS idx_ripple_conversations_pinned ON ripple_conversations(pinned);

-- Messages
CREATE TABLE IF NOT EXISTS ripple_messages (
  id TEXT PRIMARY KEY,                 -- e.g., "msg-a1b2c3d4"
  conversation_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  body TEXT NOT NULL,
  ts INTEGER NOT NULL,                 -- unix ms
  msg_type TEXT NOT NULL DEFAULT 'text',
  media_url TEXT,
  thumbnail_url TEXT,
  file_name TEXT,
  file_size INTEGER,
  duration_ms INTEGER,
  link_url TEXT,
  link_title TEXT,
  link_image_url TEXT,
  reply_to TEXT,                       -- parent message id
  delivered INTEGER NOT NULL DEFAULT 0,
  read INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  edited INTEGER NOT NULL DEFAULT 0,
  deleted INTEGER NOT NULL DEFAULT 0,  -- soft delete, row persists
  edited_at INTEGER,
  reactions TEXT NOT NULL DEFAULT '{}',
  FOREIGN KEY (conversation_id) REFERENCES ripple_conversations(id) ON DELETE CASCADE,
  FOREIGN KEY (sender_id) REFERENCES ripple_users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ripple_messages_conversation_ts ON ripple_messages(conversation_id, ts);
CREATE INDEX IF NOT EXISTS idx_ripple_messages_sender ON ripple_messages(sender_id);
CREATE INDEX IF NOT EXISTS idx_ripple_messages_deleted ON ripple_messages(deleted);

-- Conversation membership
CREATE TABLE IF NOT EXISTS ripple_conversation_participants (
  conversation_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  joined_at INTEGER NOT NULL,
  role TEXT NOT NULL DEFAULT 'member',
  last_read_message_id TEXT,
  last_read_at INTEGER,
  PRIMARY KEY (conversation_id, user_id),
  FOREIGN KEY (conversation_id) REFERENCES ripple_conversations(id) ON DELETE CASCADE,
  FOREIGN KEY (user_id) REFERENCES ripple_users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ripple_participants_user ON ripple_conversation_participants(user_id);

-- Store metadata (session user, seed bookkeeping)
CREATE TABLE IF NOT EXISTS ripple_meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema initializes the ripple schema.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SchemaExists reports whether the ripple schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='ripple_conversations'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}
