package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/adamavenir/wolfwatch/internal/types"
	"golang.org/x/net/websocket"
)

// EventSink receives decoded frames from the event bus, in arrival order, on the
// goroutine that called EventStream.Run.
type EventSink interface {
	// Historical receives the replay batch, newest first.
	Historical(events []types.Event)
	// Live receives one event.
	Live(evt types.Event)
}

// EventStream is a client for the game server's websocket event bus.
type EventStream struct {
	url          string
	origin       string
	pingInterval time.Duration
}

// NewEventStream returns a client for wsURL. A non-positive ping interval disables pings.
func NewEventStream(wsURL, origin string, pingInterval time.Duration) *EventStream {
	return &EventStream{url: wsURL, origin: origin, pingInterval: pingInterval}
}

type frameHeader struct {
	Type string `json:"type"`
}

// Run connects, delivers frames to sink until the connection drops or ctx is done,
// then returns. A clean close by the server returns nil.
func (s *EventStream) Run(ctx context.Context, sink EventSink) error {
	cfg, err := websocket.NewConfig(s.url, s.origin)
	if err != nil {
		return fmt.Errorf("configure websocket: %w", err)
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	defer func() {
		close(stop)
		conn.Close()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if s.pingInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ping(conn, stop)
		}()
	}

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		if err := dispatch(raw, sink); err != nil {
			slog.Warn("event dropped", "error", err)
		}
	}
}

func dispatch(raw []byte, sink EventSink) error {
	var header frameHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	switch header.Type {
	case types.EventHistorical:
		var envelope types.HistoricalEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decode historical batch: %w", err)
		}
		sink.Historical(envelope.Events)
	case types.EventPong, types.EventPing, "":
	default:
		var evt types.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			return fmt.Errorf("decode %s event: %w", header.Type, err)
		}
		sink.Live(evt)
	}
	return nil
}

func (s *EventStream) ping(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := websocket.JSON.Send(conn, frameHeader{Type: types.EventPing}); err != nil {
				slog.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
