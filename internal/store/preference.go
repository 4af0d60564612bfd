package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GetPreference looks up the saved preference for a user.
// The second return value is false when the user has no saved preference.
// A store error is returned as such so callers can distinguish "no
// preference found" from "store unreachable".
func (db *DB) GetPreference(userID string) (string, bool, error) {
	row := db.QueryRow(`SELECT preference FROM preferences WHERE user_id = ?`, userID)

	var preference string
	err := row.Scan(&preference)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference for %s: %w", userID, err)
	}
	return preference, true, nil
}

// SetPreference creates or overwrites the preference for a user.
// The upsert is a single atomic statement; concurrent writers to the same
// key serialize on it with last-write-wins semantics.
func (db *DB) SetPreference(userID, preference string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (user_id, preference, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preference = excluded.preference,
			updated_at = excluded.updated_at
	`, userID, preference, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set preference for %s: %w", userID, err)
	}
	return nil
}
