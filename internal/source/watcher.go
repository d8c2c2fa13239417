package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/fsnotify/fsnotify"
)

const minDebounce = 50 * time.Millisecond

// Snapshot is a reconstructed transcript emitted when its file changed.
type Snapshot struct {
	transcript.Snapshot
	Path string
	At   time.Time
}

// Watcher follows one transcript file and emits a Snapshot whenever its content changes.
// Writes are coalesced over the debounce interval, and unchanged content is skipped
// by fingerprint.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration

	mu      sync.Mutex
	gate    transcript.Gate
	pending bool

	snapshots chan Snapshot
	errors    chan error
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching path. The file may not exist yet; its directory must.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce < minDebounce {
		debounce = minDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so the file can appear or be replaced.
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		path:      abs,
		debounce:  debounce,
		snapshots: make(chan Snapshot, 1),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}
	if _, err := os.Stat(abs); err == nil {
		w.pending = true
	}

	go w.run()

	return w, nil
}

// Snapshots returns the channel of changed snapshots. Only the latest unread snapshot
// is kept. The channel is closed when the watcher stops.
func (w *Watcher) Snapshots() <-chan Snapshot {
	return w.snapshots
}

// Errors returns the channel for watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.snapshots)

	debounceTimer := time.NewTicker(w.debounce)
	defer debounceTimer.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)

		case <-debounceTimer.C:
			w.processPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Clean(event.Name) != w.path {
		return
	}
	w.mu.Lock()
	if event.Has(fsnotify.Create) {
		// A recreated transcript starts a new game; its first snapshot is always news.
		w.gate.Reset()
	}
	w.pending = true
	w.mu.Unlock()
}

func (w *Watcher) processPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.pending {
		return
	}
	w.pending = false

	data, err := os.ReadFile(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.reportError(fmt.Errorf("read %s: %w", w.path, err))
		}
		return
	}
	text := string(data)
	if _, changed := w.gate.Observe(text); !changed {
		slog.Debug("transcript unchanged", "path", w.path)
		return
	}

	w.emit(Snapshot{
		Snapshot: transcript.Reconstruct(text),
		Path:     w.path,
		At:       time.Now(),
	})
}

// emit replaces any unread snapshot with the newer one.
func (w *Watcher) emit(snap Snapshot) {
	select {
	case w.snapshots <- snap:
		return
	default:
	}
	select {
	case <-w.snapshots:
	default:
	}
	select {
	case w.snapshots <- snap:
	default:
		slog.Warn("snapshot dropped", "path", w.path)
	}
}

func (w *Watcher) reportError(err error) {
	select {
	case w.errors <- err:
	default:
		// Channel full, drop error
	}
}
