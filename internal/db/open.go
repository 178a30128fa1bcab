package db

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at path. The pragmas ride in the DSN so the
// driver applies them to every pooled connection, not just the one that
// happens to serve a one-off Exec.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
