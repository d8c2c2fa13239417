package command

import (
	"fmt"

	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the logs command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List game transcripts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			match, _ := cmd.Flags().GetString("match")
			remote, _ := cmd.Flags().GetBool("remote")
			limit, _ := cmd.Flags().GetInt("limit")

			var logs []source.LogInfo
			if remote {
				logs, err = ctx.Remote().List(cmd.Context())
			} else {
				var dir *source.LogDir
				dir, err = ctx.LogDir(match)
				if err == nil {
					logs, err = dir.List()
				}
			}
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if limit > 0 && len(logs) > limit {
				logs = logs[:limit]
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				if logs == nil {
					logs = []source.LogInfo{}
				}
				return writeJSON(out, logs)
			}
			if len(logs) == 0 {
				fmt.Fprintln(out, "No transcripts found")
				return nil
			}
			for _, log := range logs {
				fmt.Fprintf(out, "%s  %s\n", dimStyle.Render(log.Time), log.Name)
			}
			return nil
		},
	}

	cmd.Flags().String("match", "", "glob filter on file names, e.g. 'game_2025*'")
	cmd.Flags().Int("limit", 0, "show at most this many transcripts")
	addRemoteFlag(cmd)
	return cmd
}
