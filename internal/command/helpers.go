package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/spf13/cobra"
)

// loadedLog is a transcript read from disk or from the game server.
type loadedLog struct {
	Name string
	Text string
}

// loadLog reads the transcript named by args (or the latest one). With --remote
// it is fetched from the game server instead of the log directory.
func loadLog(cmd *cobra.Command, ctx *CommandContext, args []string) (loadedLog, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	remote, _ := cmd.Flags().GetBool("remote")
	if remote {
		client := ctx.Remote()
		if name == "" {
			logs, err := client.List(cmd.Context())
			if err != nil {
				return loadedLog{}, err
			}
			if len(logs) == 0 {
				return loadedLog{}, source.ErrLogNotFound
			}
			name = logs[0].Name
		}
		text, err := client.Fetch(cmd.Context(), name)
		if err != nil {
			return loadedLog{}, err
		}
		return loadedLog{Name: name, Text: text}, nil
	}

	dir, err := ctx.LogDir("")
	if err != nil {
		return loadedLog{}, err
	}
	path, err := dir.Resolve(name)
	if err != nil {
		return loadedLog{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return loadedLog{}, fmt.Errorf("%w: %s", source.ErrLogNotFound, path)
		}
		return loadedLog{}, fmt.Errorf("read log: %w", err)
	}
	return loadedLog{Name: path, Text: string(data)}, nil
}

func addRemoteFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("remote", false, "fetch the transcript from the game server")
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
