package db

import (
	"testing"
	"time"
)

func openTestArchive(t *testing.T, dir string) *Archive {
	t.Helper()
	archive, err := Open(dir)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	clock := time.UnixMilli(1_700_000_000_000)
	archive.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	t.Cleanup(func() {
		_ = archive.Close()
	})
	return archive
}
