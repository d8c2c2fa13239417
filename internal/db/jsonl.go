package db

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adamavenir/wolfwatch/internal/types"
)

// eventRecord is one line of events.jsonl.
type eventRecord struct {
	Type       string      `json:"type"`
	Digest     string      `json:"digest"`
	ReceivedAt int64       `json:"received_at"`
	Event      types.Event `json:"event"`
}

const recordTypeEvent = "event"

func appendJSONLine(filePath string, record any) error {
	if err := ensureDir(filepath.Dir(filePath)); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return atomicAppend(filePath, data)
}

func atomicAppend(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}

	return f.Sync()
}

// readJSONLLines returns the non-empty lines of a JSONL file. A final line without
// a trailing newline is a write in progress and is dropped.
func readJSONLLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	truncated := false
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		buf := make([]byte, 1)
		if _, err := file.ReadAt(buf, info.Size()-1); err == nil {
			truncated = buf[0] != '\n'
		}
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if truncated && len(lines) > 0 {
		slog.Warn("truncated JSONL line skipped", "path", filePath)
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func readJSONLFile[T any](filePath string) ([]T, error) {
	lines, err := readJSONLLines(filePath)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(lines))
	for _, line := range lines {
		var record T
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// readEventRecords returns the archived event records in the order they were appended.
func readEventRecords(dir string) ([]eventRecord, error) {
	records, err := readJSONLFile[eventRecord](filepath.Join(dir, eventsFile))
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, record := range records {
		if record.Type != recordTypeEvent || record.Digest == "" {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}
