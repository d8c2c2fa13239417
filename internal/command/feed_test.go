package command

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/adamavenir/wolfwatch/internal/db"
	"github.com/adamavenir/wolfwatch/internal/types"
	"golang.org/x/net/websocket"
)

func historicalBatch() []types.Event {
	return []types.Event{
		{Type: types.EventAgentMessage, AgentID: "player_2", Speech: "白天好", Timestamp: 5, GameID: "g1"},
		{Type: types.EventConferenceEnd, ConferenceID: "c1", Timestamp: 4, GameID: "g1"},
		{Type: types.EventConferenceMessage, AgentID: "player_1", Content: "刀2号", Timestamp: 3, GameID: "g1"},
		{Type: types.EventConferenceStart, ConferenceID: "c1", Title: "狼人夜聊", Timestamp: 2, GameID: "g1"},
		{Type: types.EventSystem, Content: "游戏开始", Timestamp: 1, GameID: "g1",
			Players: []byte(`[{"name":"Player1","role":"狼人"},{"name":"Player2","role":"预言家"}]`)},
	}
}

func TestFeedFollowsStreamAndArchives(t *testing.T) {
	testEnv(t)
	live := types.Event{Type: types.EventAgentMessage, AgentID: "player_1", Speech: "我是好人", Timestamp: 6, GameID: "g1"}

	mux := http.NewServeMux()
	mux.Handle("/ws/game", websocket.Handler(func(ws *websocket.Conn) {
		_ = websocket.JSON.Send(ws, types.HistoricalEnvelope{Type: types.EventHistorical, Events: historicalBatch()})
		_ = websocket.JSON.Send(ws, live)
	}))
	srv := httptest.NewServer(mux)
	defer srv.Close()
	t.Setenv("WOLFWATCH_API_URL", srv.URL)

	output, err := run(t, "feed", "--once", "--archive", "--json")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	for _, want := range []string{`"type":"conference"`, "狼人夜聊", "刀2号", `"agent":"Player1"`, "我是好人", `"role":"预言家"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	archive, err := db.Open(os.Getenv("WOLFWATCH_DATA_DIR"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()
	if n, _ := archive.Count(); n != 6 {
		t.Fatalf("archived %d events, want 6", n)
	}
}

func TestFeedReplayFromArchive(t *testing.T) {
	testEnv(t)
	archive, err := db.Open(os.Getenv("WOLFWATCH_DATA_DIR"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if _, err := archive.RecordBatch(historicalBatch()); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = archive.Close()

	output, err := run(t, "feed", "--replay")
	if err != nil {
		t.Fatalf("feed --replay: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 4 {
		t.Fatalf("unexpected replay output:\n%s", output)
	}
	if !strings.Contains(lines[0], "游戏开始") {
		t.Errorf("oldest item should print first, got %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "白天好") {
		t.Errorf("newest item should print last, got %q", lines[len(lines)-1])
	}
	if !strings.Contains(output, "狼人夜聊") || strings.Contains(output, "LIVE") {
		t.Errorf("closed conference rendered wrongly:\n%s", output)
	}
}

func TestArchiveCommands(t *testing.T) {
	testEnv(t)
	output, err := run(t, "archive", "games")
	if err != nil {
		t.Fatalf("archive games: %v", err)
	}
	if !strings.Contains(output, "No archived games") {
		t.Fatalf("unexpected output %q", output)
	}

	archive, err := db.Open(os.Getenv("WOLFWATCH_DATA_DIR"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if _, err := archive.RecordBatch(historicalBatch()); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = archive.Close()

	output, err = run(t, "archive", "games", "--json")
	if err != nil {
		t.Fatalf("archive games --json: %v", err)
	}
	if !strings.Contains(output, `"game_id": "g1"`) || !strings.Contains(output, `"events": 5`) {
		t.Fatalf("unexpected games output %q", output)
	}

	output, err = run(t, "archive", "rebuild")
	if err != nil {
		t.Fatalf("archive rebuild: %v", err)
	}
	if !strings.Contains(output, "Rebuilt archive with 5 events") || !strings.Contains(output, "events.db") {
		t.Fatalf("unexpected rebuild output %q", output)
	}
}
