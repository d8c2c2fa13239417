package command

import (
	"fmt"
	"sort"

	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
	"github.com/spf13/cobra"
)

// NewReflectionsCmd creates the reflections command.
func NewReflectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflections [log]",
		Short: "Show each player's latest reflection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			log, err := loadLog(cmd, ctx, args)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			player, _ := cmd.Flags().GetString("player")

			reflections := transcript.ExtractReflections(log.Text)
			if player != "" {
				r, ok := reflections[player]
				if !ok {
					return writeCommandError(cmd, fmt.Errorf("no reflection for %s", player))
				}
				reflections = map[string]types.Reflection{player: r}
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				return writeJSON(out, transcript.Insights(reflections))
			}
			if len(reflections) == 0 {
				fmt.Fprintln(out, "No reflections yet")
				return nil
			}
			names := make([]string, 0, len(reflections))
			for name := range reflections {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				printLines(out, FormatReflection(reflections[name]))
			}
			return nil
		},
	}

	cmd.Flags().String("player", "", "only show this player, e.g. Player3")
	addRemoteFlag(cmd)
	return cmd
}
