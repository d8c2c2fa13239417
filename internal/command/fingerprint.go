package command

import (
	"fmt"
	"strconv"

	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/spf13/cobra"
)

// NewFingerprintCmd creates the fingerprint command.
func NewFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [log]",
		Short: "Print a transcript's content fingerprint",
		Long:  "Print a transcript's content fingerprint. With --since, also report whether it differs from an earlier one.",
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
			fp := transcript.Compute(log.Text)

			changed := true
			since, _ := cmd.Flags().GetString("since")
			if since != "" {
				prev, err := strconv.ParseInt(since, 10, 32)
				if err != nil {
					return writeCommandError(cmd, fmt.Errorf("invalid --since fingerprint %q", since))
				}
				changed = transcript.HasChanged(transcript.Fingerprint(prev), fp)
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				return writeJSON(out, map[string]any{
					"log":         log.Name,
					"fingerprint": int32(fp),
					"changed":     changed,
				})
			}
			fmt.Fprintln(out, fp.String())
			if since != "" && !changed {
				fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("unchanged"))
			}
			return nil
		},
	}

	cmd.Flags().String("since", "", "previous fingerprint to compare against")
	addRemoteFlag(cmd)
	return cmd
}
