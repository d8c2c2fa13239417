package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adamavenir/wolfwatch/internal/db"
	"github.com/adamavenir/wolfwatch/internal/feed"
	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/adamavenir/wolfwatch/internal/types"
	"github.com/spf13/cobra"
)

// NewFeedCmd creates the feed command.
func NewFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Follow the game server's live event feed",
		Long: "Follow the game server's live event feed, grouping conference messages together. " +
			"With --replay, rebuild the feed from the local event archive instead of connecting.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			useArchive, _ := cmd.Flags().GetBool("archive")
			replay, _ := cmd.Flags().GetBool("replay")
			last, _ := cmd.Flags().GetInt("last")
			gameID, _ := cmd.Flags().GetString("game")
			once, _ := cmd.Flags().GetBool("once")

			sink := newFeedSink(cmd.OutOrStdout(), ctx.JSONMode, last)

			if replay {
				archive, err := db.Open(ctx.Config.DataDir)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer archive.Close()

				events, err := archive.RecentEvents(0, gameID)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				sink.Historical(events)
				return nil
			}

			if useArchive {
				archive, err := db.Open(ctx.Config.DataDir)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				defer archive.Close()
				sink.archive = archive
			}

			wsURL, err := ctx.Config.WebSocketURL()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			stream := source.NewEventStream(wsURL, ctx.Config.APIURL, ctx.Config.PingInterval)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = followStream(runCtx, stream, sink, ctx.Config.PollInterval, once)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("archive", false, "record received events in the local archive")
	cmd.Flags().Bool("replay", false, "rebuild the feed from the local archive without connecting")
	cmd.Flags().Int("last", 50, "number of feed items to show from the replay batch (0 for all)")
	cmd.Flags().String("game", "", "restrict --replay to one game ID")
	cmd.Flags().Bool("once", false, "exit when the connection drops instead of reconnecting")
	return cmd
}

// followStream runs the stream until ctx is done, reconnecting after each
// disconnect unless once is set.
func followStream(ctx context.Context, stream *source.EventStream, sink *feedSink, backoff time.Duration, once bool) error {
	for {
		err := stream.Run(ctx, sink)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if once {
			return err
		}
		if err != nil {
			slog.Warn("event stream disconnected", "error", err)
		}
		sink.system("connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		slog.Info("reconnecting")
	}
}

// feedSink folds stream frames into a reducer and prints what changed.
type feedSink struct {
	reducer  *feed.Reducer
	agents   feed.Directory
	archive  *db.Archive
	out      io.Writer
	jsonMode bool
	last     int
}

func newFeedSink(out io.Writer, jsonMode bool, last int) *feedSink {
	agents := feed.Directory{}
	return &feedSink{
		reducer:  feed.NewReducer(feed.WithAgents(agents)),
		agents:   agents,
		out:      out,
		jsonMode: jsonMode,
		last:     last,
	}
}

func (s *feedSink) Historical(events []types.Event) {
	if s.archive != nil {
		if added, err := s.archive.RecordBatch(events); err != nil {
			slog.Warn("archive historical batch", "error", err)
		} else if added > 0 {
			slog.Debug("archived historical events", "added", added)
		}
	}
	for i := len(events) - 1; i >= 0; i-- {
		s.agents.Learn(events[i])
	}
	s.reducer.Historical(events)

	items := s.reducer.Items()
	if s.last > 0 && len(items) > s.last {
		items = items[:s.last]
	}
	for i := len(items) - 1; i >= 0; i-- {
		s.printItem(items[i])
	}
}

func (s *feedSink) Live(evt types.Event) {
	if s.archive != nil {
		if _, err := s.archive.Record(evt); err != nil {
			slog.Warn("archive event", "type", evt.Type, "error", err)
		}
	}
	s.agents.Learn(evt)

	update, ok := s.reducer.Ingest(evt)
	if !ok {
		slog.Debug("event ignored", "type", evt.Type)
		return
	}

	switch {
	case update.Message != nil:
		s.printAppended(update.Item, *update.Message)
	case evt.Type == types.EventConferenceEnd:
		s.printEnded(update.Item)
	default:
		s.printItem(update.Item)
	}
}

func (s *feedSink) system(content string) {
	s.printItem(s.reducer.AddSystemMessage(content))
}

func (s *feedSink) printItem(item types.FeedItem) {
	if s.jsonMode {
		s.encode(item)
		return
	}
	printLines(s.out, FormatFeedItem(item))
}

func (s *feedSink) printAppended(item types.FeedItem, msg types.Message) {
	if s.jsonMode {
		s.encode(struct {
			Type       string        `json:"type"`
			Conference string        `json:"conference"`
			Message    types.Message `json:"message"`
		}{"conference_message", item.ItemID(), msg})
		return
	}
	fmt.Fprintln(s.out, indent(formatMessage(msg)))
}

func (s *feedSink) printEnded(item types.FeedItem) {
	if s.jsonMode {
		s.encode(item)
		return
	}
	conf, ok := item.(*types.ConferenceItem)
	if !ok {
		return
	}
	fmt.Fprintln(s.out, dimStyle.Render(fmt.Sprintf("── %s ended (%d messages)", conf.Conference.Title, len(conf.Conference.Messages))))
}

func (s *feedSink) encode(value any) {
	if err := json.NewEncoder(s.out).Encode(value); err != nil {
		slog.Warn("write feed item", "error", err)
	}
}
