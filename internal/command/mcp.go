package command

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamavenir/wolfwatch/internal/mcp"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve game timelines to agents over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			logs, err := ctx.LogDir("")
			if err != nil {
				return writeCommandError(cmd, err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := mcp.Serve(runCtx, logs, cmd.Root().Version); err != nil && !errors.Is(err, context.Canceled) {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
}
