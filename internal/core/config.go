package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the environment-driven configuration shared by every command.
// Command-line flags override individual fields after loading.
type Config struct {
	LogDir       string        `env:"WOLFWATCH_LOG_DIR" envDefault:"data/game_logs"`
	APIURL       string        `env:"WOLFWATCH_API_URL" envDefault:"http://localhost:8000"`
	WSPath       string        `env:"WOLFWATCH_WS_PATH" envDefault:"/ws/game"`
	PollInterval time.Duration `env:"WOLFWATCH_POLL_INTERVAL" envDefault:"3s"`
	Debounce     time.Duration `env:"WOLFWATCH_DEBOUNCE" envDefault:"500ms"`
	PingInterval time.Duration `env:"WOLFWATCH_PING_INTERVAL" envDefault:"20s"`
	DataDir      string        `env:"WOLFWATCH_DATA_DIR"`
	LogLevel     string        `env:"WOLFWATCH_LOG_LEVEL" envDefault:"info"`
	LogSink      string        `env:"WOLFWATCH_LOG_SINK"`
}

// LoadConfig reads an optional dotenv file, then the environment. Variables already
// set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the collaborators cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid WOLFWATCH_API_URL %q", c.APIURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("WOLFWATCH_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("WOLFWATCH_DEBOUNCE must not be negative, got %s", c.Debounce)
	}
	return nil
}

// WebSocketURL derives the event stream endpoint from the API URL.
func (c Config) WebSocketURL() (string, error) {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(c.WSPath, "/")
	return u.String(), nil
}

// ArchivePath is where the event archive database lives.
func (c Config) ArchivePath() string {
	return filepath.Join(c.DataDir, "events.db")
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "wolfwatch"), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
