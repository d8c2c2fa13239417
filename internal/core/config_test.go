package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"WOLFWATCH_LOG_DIR", "WOLFWATCH_API_URL", "WOLFWATCH_WS_PATH", "WOLFWATCH_POLL_INTERVAL",
	"WOLFWATCH_DEBOUNCE", "WOLFWATCH_PING_INTERVAL", "WOLFWATCH_DATA_DIR", "WOLFWATCH_LOG_LEVEL",
	"WOLFWATCH_LOG_SINK",
}

// clearWolfwatchEnv unsets every config variable and restores it when the test ends,
// including values a dotenv file loads during the test.
func clearWolfwatchEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearWolfwatchEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogDir != "data/game_logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.PollInterval != 3*time.Second || cfg.Debounce != 500*time.Millisecond || cfg.PingInterval != 20*time.Second {
		t.Errorf("intervals = %s %s %s", cfg.PollInterval, cfg.Debounce, cfg.PingInterval)
	}
	if !strings.HasSuffix(cfg.DataDir, filepath.Join(".config", "wolfwatch")) {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigDotenvAndOverrides(t *testing.T) {
	clearWolfwatchEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "WOLFWATCH_LOG_DIR=/srv/logs\nWOLFWATCH_POLL_INTERVAL=10s\nWOLFWATCH_API_URL=http://file:9000\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("WOLFWATCH_API_URL", "https://game.example:8443/base/")
	t.Setenv("WOLFWATCH_DATA_DIR", dir)

	cfg, err := LoadConfig(envFile)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogDir != "/srv/logs" || cfg.PollInterval != 10*time.Second {
		t.Errorf("dotenv values not applied: %+v", cfg)
	}
	if cfg.APIURL != "https://game.example:8443/base/" {
		t.Errorf("environment should win over dotenv, got %q", cfg.APIURL)
	}

	ws, err := cfg.WebSocketURL()
	if err != nil {
		t.Fatalf("WebSocketURL: %v", err)
	}
	if ws != "wss://game.example:8443/base/ws/game" {
		t.Errorf("ws url = %q", ws)
	}
	if cfg.ArchivePath() != filepath.Join(dir, "events.db") {
		t.Errorf("archive path = %q", cfg.ArchivePath())
	}
}

func TestLoadConfigMissingDotenv(t *testing.T) {
	clearWolfwatchEnv(t)
	t.Setenv("WOLFWATCH_DATA_DIR", t.TempDir())
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing dotenv should be ignored: %v", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"WOLFWATCH_API_URL":       "not a url",
		"WOLFWATCH_POLL_INTERVAL": "0s",
		"WOLFWATCH_DEBOUNCE":      "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearWolfwatchEnv(t)
			t.Setenv("WOLFWATCH_DATA_DIR", t.TempDir())
			t.Setenv(key, value)
			if _, err := LoadConfig(""); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := expandHome("~/wolf"); got != filepath.Join(home, "wolf") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("absolute path changed: %q", got)
	}
}
