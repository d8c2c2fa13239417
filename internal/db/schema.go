package db

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
-- Events received from the game server's event bus
CREATE TABLE IF NOT EXISTS wolf_events (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- arrival order
  digest TEXT NOT NULL UNIQUE,           -- sha256 of the event JSON, dedupes replays
  type TEXT NOT NULL,                    -- event type tag, e.g. "agent_message"
  game_id TEXT,                          -- gameId, null when absent
  ts INTEGER NOT NULL,                   -- event timestamp (ms), received_at when absent
  received_at INTEGER NOT NULL,          -- when the client stored it (ms)
  payload TEXT NOT NULL                  -- event JSON
);

CREATE INDEX IF NOT EXISTS idx_wolf_events_game ON wolf_events(game_id, ts);
CREATE INDEX IF NOT EXISTS idx_wolf_events_ts ON wolf_events(ts);
`

// InitSchema creates the archive tables if they do not exist.
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
