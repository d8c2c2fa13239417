package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adamavenir/wolfwatch/internal/transcript"
)

const maxLogBytes = 64 << 20

// HTTPSource reads transcripts from the viewer server's /api/logs endpoints.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source rooted at baseURL. A nil client uses a 10s timeout.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// List returns the server's transcripts, newest first.
func (s *HTTPSource) List(ctx context.Context) ([]LogInfo, error) {
	body, err := s.get(ctx, "/api/logs")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var logs []LogInfo
	if err := json.NewDecoder(body).Decode(&logs); err != nil {
		return nil, fmt.Errorf("decode log list: %w", err)
	}
	return logs, nil
}

// Fetch returns one transcript's text.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidLogName, name)
	}
	body, err := s.get(ctx, "/api/logs/"+url.PathEscape(name))
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxLogBytes))
	if err != nil {
		return "", fmt.Errorf("read log %s: %w", name, err)
	}
	return string(data), nil
}

func (s *HTTPSource) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, path)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %s", path, resp.Status)
	}
	return resp.Body, nil
}

// Poll fetches name every interval and calls fn with each snapshot whose content
// changed. It returns nil once a snapshot shows the game is over, the error fn
// returns, or the context's error. Fetch failures are logged and retried.
func (s *HTTPSource) Poll(ctx context.Context, name string, interval time.Duration, fn func(Snapshot) error) error {
	var gate transcript.Gate
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		text, err := s.Fetch(ctx, name)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			slog.Warn("poll failed", "log", name, "error", err)
		default:
			if _, changed := gate.Observe(text); changed {
				snap := Snapshot{Snapshot: transcript.Reconstruct(text), Path: name, At: time.Now()}
				if err := fn(snap); err != nil {
					return err
				}
				if transcript.IsGameOver(snap.Transcript) {
					return nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
