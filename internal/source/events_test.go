package source

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adamavenir/wolfwatch/internal/types"
	"golang.org/x/net/websocket"
)

type recordingSink struct {
	historical [][]types.Event
	live       []types.Event
}

func (r *recordingSink) Historical(events []types.Event) { r.historical = append(r.historical, events) }
func (r *recordingSink) Live(evt types.Event)            { r.live = append(r.live, evt) }

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestEventStreamDelivers(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		websocket.JSON.Send(conn, map[string]any{
			"type": "historical",
			"events": []map[string]any{
				{"type": "system", "content": "second", "timestamp": 2},
				{"type": "round_start", "round": 1, "timestamp": 1},
			},
		})
		websocket.JSON.Send(conn, map[string]any{"type": "pong"})
		websocket.Message.Send(conn, "not json")
		websocket.JSON.Send(conn, map[string]any{"type": "agent_message", "agentName": "Player1", "speech": "早上好", "ts": 3})
	}))
	defer srv.Close()

	sink := &recordingSink{}
	stream := NewEventStream(wsURL(srv), srv.URL, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := stream.Run(ctx, sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.historical) != 1 || len(sink.historical[0]) != 2 {
		t.Fatalf("historical = %+v", sink.historical)
	}
	if sink.historical[0][1].Type != types.EventRoundStart || sink.historical[0][1].Round != 1 {
		t.Errorf("historical events = %+v", sink.historical[0])
	}
	if len(sink.live) != 1 || sink.live[0].Speech != "早上好" || sink.live[0].When() != 3 {
		t.Fatalf("live = %+v", sink.live)
	}
}

func TestEventStreamPings(t *testing.T) {
	var mu sync.Mutex
	var frames []string
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		for {
			var msg string
			if err := websocket.Message.Receive(conn, &msg); err != nil {
				return
			}
			mu.Lock()
			frames = append(frames, msg)
			mu.Unlock()
			websocket.JSON.Send(conn, map[string]string{"type": "pong"})
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := NewEventStream(wsURL(srv), srv.URL, 20*time.Millisecond).Run(ctx, &recordingSink{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) == 0 {
		t.Fatal("expected at least one ping")
	}
	if frames[0] != `{"type":"ping"}`+"\n" && frames[0] != `{"type":"ping"}` {
		t.Errorf("ping frame = %q", frames[0])
	}
}

func TestEventStreamDialError(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := wsURL(srv)
	srv.Close()

	err := NewEventStream(url, "http://localhost", 0).Run(context.Background(), &recordingSink{})
	if err == nil {
		t.Fatal("expected dial error")
	}
}
