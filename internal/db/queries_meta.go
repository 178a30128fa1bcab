package db

import "database/sql"

// GetMeta returns the value for key, or "" when unset.
func GetMeta(db DBTX, key string) (string, error) {
	row := db.QueryRow(`SELECT value FROM ripple_meta WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMeta writes a metadata key.
func SetMeta(db DBTX, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO ripple_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
