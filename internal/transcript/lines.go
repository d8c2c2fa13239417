package transcript

import (
	"strings"
	"unicode/utf8"

	"github.com/adamavenir/wolfwatch/internal/types"
)

// Lines is a transcript split into physical lines. Both the action parser and the
// reflection extractor consume it independently, so a snapshot only needs splitting once.
type Lines []string

// Split breaks raw transcript text on '\n'. A trailing '\r' is left for the consumers'
// trimming to remove.
func Split(raw string) Lines {
	if raw == "" {
		return nil
	}
	return Lines(strings.Split(raw, "\n"))
}

// Snapshot is the full reconstruction of one transcript text.
type Snapshot struct {
	Fingerprint Fingerprint                 `json:"fingerprint"`
	Transcript  *types.GameTranscript       `json:"transcript"`
	Reflections map[string]types.Reflection `json:"reflections"`
}

// Reconstruct runs both passes over one split of the text.
func Reconstruct(raw string) Snapshot {
	lines := Split(raw)
	return Snapshot{
		Fingerprint: Compute(raw),
		Transcript:  lines.Parse(),
		Reflections: lines.Reflections(),
	}
}

func isSeparator(line string) bool {
	return separatorRe.MatchString(line)
}

func isTimestamped(line string) bool {
	return timestampRe.MatchString(line)
}

func isRoundHeader(line string) bool {
	return roundRe.MatchString(line)
}

func isPhaseMarker(line string) bool {
	return line == nightMarker || line == dayMarker
}

func startsWithAny(line, leads string) bool {
	if line == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	return strings.ContainsRune(leads, r)
}

func stripTag(line, tag string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, tag))
}
