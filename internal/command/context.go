package command

import (
	"io"

	"github.com/adamavenir/wolfwatch/internal/core"
	"github.com/adamavenir/wolfwatch/internal/logging"
	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/spf13/cobra"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Config   core.Config
	JSONMode bool

	logCloser io.Closer
}

// GetContext loads configuration, applies flag overrides and installs the logger.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	jsonMode, _ := cmd.Flags().GetBool("json")

	cfg, err := core.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	if logDir, _ := cmd.Flags().GetString("log-dir"); logDir != "" {
		cfg.LogDir = logDir
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.APIURL = api
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return &CommandContext{
		Config:    cfg,
		JSONMode:  jsonMode,
		logCloser: logging.Init(cfg.LogLevel, cfg.LogSink),
	}, nil
}

// Close releases the log sink.
func (c *CommandContext) Close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// LogDir opens the configured transcript directory.
func (c *CommandContext) LogDir(pattern string) (*source.LogDir, error) {
	return source.NewLogDir(c.Config.LogDir, pattern)
}

// Remote returns a client for the configured game server.
func (c *CommandContext) Remote() *source.HTTPSource {
	return source.NewHTTPSource(c.Config.APIURL, nil)
}
