package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveCheckpoint stores the snapshot for a thread, overwriting any previous
// version. One current checkpoint exists per thread.
func (db *DB) SaveCheckpoint(threadID string, snapshot []byte) error {
	_, err := db.Exec(`
		INSERT INTO checkpoints (thread_id, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, threadID, snapshot, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", threadID, err)
	}
	return nil
}

// LoadCheckpoint retrieves the current snapshot for a thread.
// The second return value is false when no checkpoint exists; an error means
// the store itself is unreachable, which callers must not treat as absence.
func (db *DB) LoadCheckpoint(threadID string) ([]byte, bool, error) {
	row := db.QueryRow(`SELECT snapshot FROM checkpoints WHERE thread_id = ?`, threadID)

	var snapshot []byte
	err := row.Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	return snapshot, true, nil
}

// DeleteCheckpoint removes the checkpoint for a thread, if any.
func (db *DB) DeleteCheckpoint(threadID string) error {
	_, err := db.Exec(`DELETE FROM checkpoints WHERE thread_id = ?`, threadID)
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", threadID, err)
	}
	return nil
}

// PurgeOldCheckpoints deletes checkpoints not touched within the given
// duration. Returns the number of checkpoints deleted.
func (db *DB) PurgeOldCheckpoints(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM checkpoints WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old checkpoints: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}
