// Package source retrieves transcripts and live events for the reconstruction engine:
// from a log directory, by watching a log file, by polling the viewer's HTTP API, or
// from the game server's websocket event bus.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

var (
	ErrLogNotFound    = errors.New("log not found")
	ErrInvalidLogName = errors.New("invalid log name")
)

// logSuffixes are the file extensions the game logger writes.
var logSuffixes = []string{".log", ".txt"}

const logTimeLayout = "2006-01-02 15:04:05"

// LogInfo describes one transcript file. The JSON shape matches the viewer's /api/logs.
type LogInfo struct {
	Name      string  `json:"name"`
	Time      string  `json:"time"`
	Timestamp float64 `json:"timestamp"`
	Size      int64   `json:"size,omitempty"`
}

// ModTime returns the modification time carried by Timestamp.
func (l LogInfo) ModTime() time.Time {
	sec := int64(l.Timestamp)
	nsec := int64((l.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// LogDir lists and reads transcripts from one directory.
type LogDir struct {
	Root  string
	match glob.Glob
}

// NewLogDir opens a log directory. A non-empty pattern filters file names.
func NewLogDir(root, pattern string) (*LogDir, error) {
	d := &LogDir{Root: root}
	if pattern != "" {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		d.match = g
	}
	return d, nil
}

// List returns transcripts newest first. A missing directory lists nothing.
func (d *LogDir) List() ([]LogInfo, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogInfo{}, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	logs := make([]LogInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !hasLogSuffix(entry.Name()) {
			continue
		}
		if d.match != nil && !d.match.Match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		logs = append(logs, LogInfo{
			Name:      entry.Name(),
			Time:      mod.Format(logTimeLayout),
			Timestamp: float64(mod.UnixNano()) / 1e9,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Timestamp == logs[j].Timestamp {
			return logs[i].Name > logs[j].Name
		}
		return logs[i].Timestamp > logs[j].Timestamp
	})
	return logs, nil
}

// Latest returns the most recently modified transcript.
func (d *LogDir) Latest() (LogInfo, error) {
	logs, err := d.List()
	if err != nil {
		return LogInfo{}, err
	}
	if len(logs) == 0 {
		return LogInfo{}, ErrLogNotFound
	}
	return logs[0], nil
}

// Path resolves a log name to a file inside the directory.
func (d *LogDir) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || !hasLogSuffix(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLogName, name)
	}
	return filepath.Join(d.Root, name), nil
}

// Read returns a transcript's text.
func (d *LogDir) Read(name string) (string, error) {
	path, err := d.Path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrLogNotFound, name)
		}
		return "", fmt.Errorf("read log %s: %w", name, err)
	}
	return string(data), nil
}

// Resolve accepts either a path to a transcript file or a name inside the directory.
// An empty name means the latest transcript.
func (d *LogDir) Resolve(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		latest, err := d.Latest()
		if err != nil {
			return "", err
		}
		return d.Path(latest.Name)
	}
	if strings.ContainsRune(nameOrPath, os.PathSeparator) {
		if _, err := os.Stat(nameOrPath); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrLogNotFound, nameOrPath)
			}
			return "", fmt.Errorf("stat %s: %w", nameOrPath, err)
		}
		return nameOrPath, nil
	}
	return d.Path(nameOrPath)
}

func hasLogSuffix(name string) bool {
	for _, suffix := range logSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
