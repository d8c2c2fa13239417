package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func nextSnapshot(t *testing.T, w *Watcher) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-w.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed")
		}
		return snap
	case err := <-w.Errors():
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestWatcherEmitsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.log")
	if err := os.WriteFile(path, []byte("第 1 回合\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	first := nextSnapshot(t, w)
	if len(first.Transcript.Rounds) != 1 || first.Path != w.Path() {
		t.Fatalf("first snapshot = %+v", first)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("第 2 回合\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	second := nextSnapshot(t, w)
	if len(second.Transcript.Rounds) != 2 {
		t.Fatalf("second snapshot rounds = %d", len(second.Transcript.Rounds))
	}
	if second.Fingerprint == first.Fingerprint {
		t.Fatal("fingerprint did not change")
	}
}

func TestWatcherWaitsForFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "later.log")

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("游戏ID: later\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap := nextSnapshot(t, w)
	if snap.Transcript.GameID != "later" {
		t.Fatalf("game id = %q", snap.Transcript.GameID)
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "x.log"), 0)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	select {
	case _, ok := <-w.Snapshots():
		if ok {
			t.Fatal("unexpected snapshot")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot channel not closed")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "x.log"), 0); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcherReemitsRecreatedTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.log")
	content := []byte("游戏ID: again\n第 1 回合\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if snap := nextSnapshot(t, w); snap.Transcript.GameID != "again" {
		t.Fatalf("first snapshot = %+v", snap)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// The recreated file may be seen empty before its content lands.
	for i := 0; i < 3; i++ {
		if snap := nextSnapshot(t, w); snap.Transcript.GameID == "again" {
			return
		}
	}
	t.Fatal("recreated transcript with identical content was not re-emitted")
}
