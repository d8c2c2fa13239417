package command

import (
	"fmt"
	"time"

	"github.com/adamavenir/wolfwatch/internal/db"
	"github.com/spf13/cobra"
)

// NewArchiveCmd creates the archive command group.
func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the local event archive",
	}
	cmd.AddCommand(newArchiveGamesCmd(), newArchiveRebuildCmd())
	return cmd
}

func newArchiveGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games recorded in the event archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			archive, err := db.Open(ctx.Config.DataDir)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer archive.Close()

			games, err := archive.Games()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				if games == nil {
					games = []db.GameSummary{}
				}
				return writeJSON(out, games)
			}
			if len(games) == 0 {
				fmt.Fprintln(out, "No archived games")
				return nil
			}
			for _, g := range games {
				last := time.UnixMilli(g.LastTS).Format("2006-01-02 15:04:05")
				fmt.Fprintf(out, "%s  %s %s\n", dimStyle.Render(last), g.GameID, dimStyle.Render(fmt.Sprintf("(%d events)", g.Events)))
			}
			return nil
		},
	}
}

func newArchiveRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the archive database from events.jsonl",
		Long: `Rebuild the SQLite archive from the authoritative events.jsonl.

Use this command when:
- You see schema errors (e.g., "no such column")
- The database is corrupted
- After copying events.jsonl from another machine`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			archive, err := db.Open(ctx.Config.DataDir)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer archive.Close()

			if err := archive.Rebuild(); err != nil {
				return writeCommandError(cmd, err)
			}
			count, err := archive.Count()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			out := cmd.OutOrStdout()
			if ctx.JSONMode {
				return writeJSON(out, map[string]any{"events": count, "path": ctx.Config.ArchivePath()})
			}
			fmt.Fprintf(out, "Rebuilt archive with %d events %s\n", count, dimStyle.Render("("+ctx.Config.ArchivePath()+")"))
			return nil
		},
	}
}
