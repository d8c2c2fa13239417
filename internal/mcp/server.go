// Package mcp exposes reconstructed game timelines to agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"log/slog"

	"github.com/adamavenir/wolfwatch/internal/source"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "wolfwatch"

// NewServer builds an MCP server with the wolfwatch tools registered.
func NewServer(logs *source.LogDir, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	RegisterTools(server, &ToolContext{Logs: logs})
	return server
}

// Serve runs the server on stdio until the client disconnects or ctx is done.
func Serve(ctx context.Context, logs *source.LogDir, version string) error {
	slog.Info("mcp server starting", "log_dir", logs.Root)
	err := NewServer(logs, version).Run(ctx, &mcp.StdioTransport{})
	slog.Info("mcp server stopped")
	return err
}
