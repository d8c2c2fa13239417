package transcript

import (
	"strings"

	"github.com/adamavenir/wolfwatch/internal/types"
)

type reflectionField int

const (
	reflectNone reflectionField = iota
	reflectThinking
	reflectImpressions
)

type reflectionState struct {
	out     map[string]types.Reflection
	current *types.Reflection
	field   reflectionField
}

// ExtractReflections returns the last non-empty reflection written for each player.
func ExtractReflections(raw string) map[string]types.Reflection {
	return Split(raw).Reflections()
}

// Reflections scans the lines for end-of-round reflection blocks.
func (l Lines) Reflections() map[string]types.Reflection {
	s := &reflectionState{out: map[string]types.Reflection{}}
	for _, raw := range l {
		s.consume(strings.TrimSpace(raw))
	}
	s.flush()
	return s.out
}

func (s *reflectionState) flush() {
	if s.current != nil && !s.current.Empty() {
		s.out[s.current.Player] = *s.current
	}
}

func (s *reflectionState) consume(line string) {
	if player, ok := reflectionPlayer(line); ok {
		s.flush()
		s.current = &types.Reflection{Player: player}
		s.field = reflectNone
		return
	}
	if s.current == nil {
		return
	}

	switch {
	case isEndBanner(line), isTimestamped(line), isRoundHeader(line), isPhaseMarker(line):
		s.field = reflectNone
	case strings.HasPrefix(line, tagThinking):
		s.field = reflectThinking
		s.current.Thinking = stripTag(line, tagThinking)
	case strings.HasPrefix(line, tagImpression):
		s.field = reflectImpressions
		s.current.Impressions = stripTag(line, tagImpression)
	case s.field == reflectNone, line == "", isSeparator(line), startsWithAny(line, bracketLeads+"【"):
	case s.field == reflectThinking:
		s.current.Thinking = joinLine(s.current.Thinking, line)
	case s.field == reflectImpressions:
		s.current.Impressions = joinLine(s.current.Impressions, line)
	}
}

// joinLine appends with a newline, except onto an empty seed where a leading
// newline would only be noise.
func joinLine(body, line string) string {
	if body == "" {
		return line
	}
	return body + "\n" + line
}

// reflectionPlayer returns the reflecting player named by a reflection header.
func reflectionPlayer(line string) (string, bool) {
	if m := reflectionHeaderRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := legacyReflectionRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

func isEndBanner(line string) bool {
	if strings.HasPrefix(line, headerPrefix) {
		return true
	}
	for _, banner := range endBanners {
		if strings.Contains(line, banner) {
			return true
		}
	}
	return false
}
