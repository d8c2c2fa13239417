package db

import (
	"database/sql"
	"fmt"
)

// RebuildDatabaseFromJSONL replaces the wolf_events table with the contents of
// events.jsonl in dir. Duplicate digests keep their first position.
func RebuildDatabaseFromJSONL(conn *sql.DB, dir string) error {
	records, err := readEventRecords(dir)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM wolf_events"); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = 'wolf_events'"); err != nil {
		return fmt.Errorf("reset sequence: %w", err)
	}
	for _, record := range records {
		if _, err := insertEvent(tx, record); err != nil {
			return err
		}
	}
	return tx.Commit()
}
