package command

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
)

func TestLogsCommand(t *testing.T) {
	dir := testEnv(t)
	writeLog(t, dir, "game_a.log", fixture(t))
	writeLog(t, dir, "notes.md", "ignored")

	output, err := run(t, "logs", "--json")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	var logs []source.LogInfo
	if err := json.Unmarshal([]byte(output), &logs); err != nil {
		t.Fatalf("decode %q: %v", output, err)
	}
	if len(logs) != 1 || logs[0].Name != "game_a.log" {
		t.Fatalf("logs = %+v", logs)
	}

	output, err = run(t, "logs", "--match", "other_*")
	if err != nil {
		t.Fatalf("logs --match: %v", err)
	}
	if !strings.Contains(output, "No transcripts found") {
		t.Fatalf("expected empty listing, got %q", output)
	}
}

func TestParseCommand(t *testing.T) {
	dir := testEnv(t)
	writeLog(t, dir, "game_a.log", fixture(t))

	output, err := run(t, "parse", "--json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var game types.GameTranscript
	if err := json.Unmarshal([]byte(output), &game); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if game.GameID != "game_20250101_120000" || game.Status != "好人胜利" || len(game.Rounds) != 2 {
		t.Fatalf("unexpected transcript: %+v", game)
	}

	output, err = run(t, "parse", "game_a.log", "--rounds", "1")
	if err != nil {
		t.Fatalf("parse text: %v", err)
	}
	for _, want := range []string{"game_20250101_120000", "第2轮", "1 earlier rounds hidden"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestParseCommandMissingLog(t *testing.T) {
	testEnv(t)
	output, err := run(t, "parse", "missing.log")
	if err == nil {
		t.Fatal("expected error for missing log")
	}
	if !strings.Contains(output, "wolfwatch logs") {
		t.Fatalf("expected hint, got %q", output)
	}
}

func TestReflectionsCommand(t *testing.T) {
	dir := testEnv(t)
	writeLog(t, dir, "game_a.log", fixture(t))

	output, err := run(t, "reflections", "--json", "--player", "Player3")
	if err != nil {
		t.Fatalf("reflections: %v", err)
	}
	var insights []types.PlayerInsight
	if err := json.Unmarshal([]byte(output), &insights); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(insights) != 1 || insights[0].PlayerID != "player_3" || insights[0].Thinking != "结束了" {
		t.Fatalf("insights = %+v", insights)
	}

	if _, err := run(t, "reflections", "--player", "Player9"); err == nil {
		t.Fatal("expected error for unknown player")
	}
}

func TestFingerprintCommand(t *testing.T) {
	dir := testEnv(t)
	text := fixture(t)
	writeLog(t, dir, "game_a.log", text)
	want := transcript.Compute(text)

	output, err := run(t, "fingerprint")
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if strings.TrimSpace(output) != want.String() {
		t.Fatalf("fingerprint = %q, want %s", output, want)
	}

	output, err = run(t, "fingerprint", "--json", "--since", want.String())
	if err != nil {
		t.Fatalf("fingerprint --since: %v", err)
	}
	var result struct {
		Fingerprint int32 `json:"fingerprint"`
		Changed     bool  `json:"changed"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Changed || result.Fingerprint != int32(want) {
		t.Fatalf("result = %+v", result)
	}

	if _, err := run(t, "fingerprint", "--since", "abc"); err == nil {
		t.Fatal("expected error for invalid --since")
	}
}
