package command

import (
	"fmt"

	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
	"github.com/spf13/cobra"
)

// NewParseCmd creates the parse command.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [log]",
		Short: "Reconstruct a game timeline from a transcript",
		Long:  "Reconstruct a game timeline from a transcript. Without a log, the latest transcript is used.",
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
			all, _ := cmd.Flags().GetBool("all")
			rounds, _ := cmd.Flags().GetInt("rounds")
			if all {
				rounds = 0
			}

			game := transcript.Parse(log.Text)
			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				return writeJSON(out, game)
			}
			printTranscript(cmd, game, rounds)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "show every round")
	cmd.Flags().Int("rounds", transcript.DefaultRecentRounds, "number of recent rounds to show")
	addRemoteFlag(cmd)
	return cmd
}

func printTranscript(cmd *cobra.Command, game *types.GameTranscript, rounds int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, FormatHeader(game))
	if game.StartTime != "" {
		fmt.Fprintln(out, dimStyle.Render("开始 "+game.StartTime))
	}
	printLines(out, FormatPlayers(game.Players))

	recent := transcript.RecentRounds(game, rounds)
	if hidden := len(game.Rounds) - len(recent); hidden > 0 {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("(%d earlier rounds hidden, use --all)", hidden)))
	}
	for _, round := range recent {
		printLines(out, FormatRound(round))
	}
	if game.EndTime != "" {
		fmt.Fprintln(out, dimStyle.Render("结束 "+game.EndTime))
	}
}
