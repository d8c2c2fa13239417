package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
)

// notify sends a desktop notification. Tests replace it.
var notify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// snapshotLine is the --json shape of one watch update.
type snapshotLine struct {
	Log      string `json:"log"`
	GameOver bool   `json:"game_over"`
	transcript.Snapshot
}

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [log]",
		Short: "Follow a game transcript as it is written",
		Long: "Follow a game transcript as it is written. Updates are printed only when the transcript changes, " +
			"and watching stops when the game ends.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			poll, _ := cmd.Flags().GetBool("poll")
			notifyEnd, _ := cmd.Flags().GetBool("notify")

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &snapshotPrinter{cmd: cmd, jsonMode: ctx.JSONMode, notify: notifyEnd}
			if poll {
				err = watchRemote(runCtx, ctx, args, w)
			} else {
				err = watchLocal(runCtx, ctx, args, w)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("poll", false, "poll the game server instead of watching a local file")
	cmd.Flags().Bool("notify", false, "send a desktop notification when the game ends")
	return cmd
}

func watchLocal(runCtx context.Context, ctx *CommandContext, args []string, w *snapshotPrinter) error {
	dir, err := ctx.LogDir("")
	if err != nil {
		return err
	}
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	path, err := dir.Resolve(name)
	if err != nil {
		return err
	}

	watcher, err := source.NewWatcher(path, ctx.Config.Debounce)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if !w.jsonMode {
		fmt.Fprintf(w.cmd.OutOrStdout(), "--- watching %s (Ctrl+C to stop) ---\n", watcher.Path())
	}
	for {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case err := <-watcher.Errors():
			slog.Warn("watch error", "path", watcher.Path(), "error", err)
		case snap, ok := <-watcher.Snapshots():
			if !ok {
				return nil
			}
			if err := w.print(snap); err != nil {
				return err
			}
			if transcript.IsGameOver(snap.Transcript) {
				return nil
			}
		}
	}
}

func watchRemote(runCtx context.Context, ctx *CommandContext, args []string, w *snapshotPrinter) error {
	client := ctx.Remote()
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		logs, err := client.List(runCtx)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			return source.ErrLogNotFound
		}
		name = logs[0].Name
	}
	if !w.jsonMode {
		fmt.Fprintf(w.cmd.OutOrStdout(), "--- polling %s every %s (Ctrl+C to stop) ---\n", name, ctx.Config.PollInterval)
	}
	return client.Poll(runCtx, name, ctx.Config.PollInterval, w.print)
}

type snapshotPrinter struct {
	cmd      *cobra.Command
	jsonMode bool
	notify   bool
}

func (p *snapshotPrinter) print(snap source.Snapshot) error {
	out := p.cmd.OutOrStdout()
	over := transcript.IsGameOver(snap.Transcript)

	if p.jsonMode {
		line := snapshotLine{Log: snap.Path, GameOver: over, Snapshot: snap.Snapshot}
		if err := json.NewEncoder(out).Encode(line); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, FormatHeader(snap.Transcript))
		if rounds := transcript.RecentRounds(snap.Transcript, 1); len(rounds) > 0 {
			printLines(out, FormatRound(rounds[0]))
		}
	}

	if over && p.notify {
		title := "wolfwatch · " + transcript.DisplayStatus(snap.Transcript)
		body := firstNonEmpty(snap.Transcript.Status, snap.Transcript.GameID)
		if err := notify(title, body); err != nil {
			slog.Warn("notification failed", "error", err)
		}
	}
	return nil
}
