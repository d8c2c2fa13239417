// Package db archives the game server's event stream: a sqlite table for queries
// and an append-only events.jsonl that the table can always be rebuilt from.
package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/adamavenir/wolfwatch/internal/types"
)

// Archive records events received from the event bus.
type Archive struct {
	dir  string
	conn *sql.DB
	now  func() time.Time
	mu   sync.Mutex
}

// Open opens (or creates) the archive stored in dir.
func Open(dir string) (*Archive, error) {
	conn, err := OpenDatabase(dir)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{dir: dir, conn: conn, now: time.Now}, nil
}

// Dir returns the directory holding events.db and events.jsonl.
func (a *Archive) Dir() string {
	return a.dir
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.conn.Close()
}

// Record stores one event. It reports false when an identical event is already
// archived, which is the normal case for the historical batch sent on reconnect.
func (a *Archive) Record(evt types.Event) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	added, err := a.record(evt)
	if err != nil {
		return false, err
	}
	if added {
		touchDatabaseFile(a.dir)
	}
	return added, nil
}

// RecordBatch stores a historical batch given newest-first, preserving event order
// in the archive. It returns how many events were new.
func (a *Archive) RecordBatch(events []types.Event) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for i := len(events) - 1; i >= 0; i-- {
		ok, err := a.record(events[i])
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		touchDatabaseFile(a.dir)
	}
	return added, nil
}

func (a *Archive) record(evt types.Event) (bool, error) {
	digest, err := eventDigest(evt)
	if err != nil {
		return false, err
	}

	var exists int
	err = a.conn.QueryRow("SELECT 1 FROM wolf_events WHERE digest = ?", digest).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup event: %w", err)
	}

	record := eventRecord{
		Type:       recordTypeEvent,
		Digest:     digest,
		ReceivedAt: a.now().UnixMilli(),
		Event:      evt,
	}
	if err := appendJSONLine(filepath.Join(a.dir, eventsFile), record); err != nil {
		return false, fmt.Errorf("append event: %w", err)
	}
	return insertEvent(a.conn, record)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertEvent(conn execer, record eventRecord) (bool, error) {
	payload, err := json.Marshal(record.Event)
	if err != nil {
		return false, fmt.Errorf("encode event: %w", err)
	}
	ts := record.Event.When()
	if ts == 0 {
		ts = record.ReceivedAt
	}
	var gameID any
	if record.Event.GameID != "" {
		gameID = record.Event.GameID
	}

	res, err := conn.Exec(`
		INSERT OR IGNORE INTO wolf_events (digest, type, game_id, ts, received_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.Digest, record.Event.Type, gameID, ts, record.ReceivedAt, string(payload))
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecentEvents returns up to limit archived events newest-first, the shape of a
// historical batch. A non-empty gameID restricts the result to that game.
// limit <= 0 returns everything.
func (a *Archive) RecentEvents(limit int, gameID string) ([]types.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	query := "SELECT payload FROM wolf_events"
	args := []any{}
	if gameID != "" {
		query += " WHERE game_id = ?"
		args = append(args, gameID)
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := a.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var evt types.Event
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// GameSummary describes the archived events of one game.
type GameSummary struct {
	GameID  string `json:"game_id"`
	Events  int    `json:"events"`
	FirstTS int64  `json:"first_ts"`
	LastTS  int64  `json:"last_ts"`
}

// Games lists archived games, most recently active first. Events without a
// gameId are not listed.
func (a *Archive) Games() ([]GameSummary, error) {
	rows, err := a.conn.Query(`
		SELECT game_id, COUNT(*), MIN(ts), MAX(ts)
		FROM wolf_events
		WHERE game_id IS NOT NULL
		GROUP BY game_id
		ORDER BY MAX(ts) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []GameSummary
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.GameID, &g.Events, &g.FirstTS, &g.LastTS); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Count returns the number of archived events.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.conn.QueryRow("SELECT COUNT(*) FROM wolf_events").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func eventDigest(evt types.Event) (string, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Rebuild discards the database rows and reloads them from events.jsonl.
func (a *Archive) Rebuild() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := RebuildDatabaseFromJSONL(a.conn, a.dir); err != nil {
		return fmt.Errorf("rebuild archive: %w", err)
	}
	touchDatabaseFile(a.dir)
	return nil
}
