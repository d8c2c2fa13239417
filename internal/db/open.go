package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	databaseFile = "events.db"
	eventsFile   = "events.jsonl"
)

// OpenDatabase opens the archive database in dir. The JSONL log is the source of
// truth: when it is newer than the database, the database is rebuilt from it.
func OpenDatabase(dir string) (*sql.DB, error) {
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dir, databaseFile)

	dbExists := true
	var dbMtime int64
	if info, err := os.Stat(dbPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		dbExists = false
	} else {
		dbMtime = info.ModTime().UnixMilli()
	}

	jsonlMtime := getJSONLMtime(dir)
	shouldRebuild := jsonlMtime > 0 && (!dbExists || jsonlMtime > dbMtime)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if shouldRebuild {
		if err := RebuildDatabaseFromJSONL(conn, dir); err != nil {
			_ = conn.Close()
			return nil, err
		}
		touchDatabaseFile(dir)
	}

	return conn, nil
}

func getJSONLMtime(dir string) int64 {
	info, err := os.Stat(filepath.Join(dir, eventsFile))
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}

func ensureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0o755)
}

// touchDatabaseFile bumps the database mtime past the JSONL it was just synced with.
// WAL writes do not always touch the main file.
func touchDatabaseFile(dir string) {
	path := filepath.Join(dir, databaseFile)
	if _, err := os.Stat(path); err != nil {
		return
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)
}
