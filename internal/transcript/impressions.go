package transcript

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adamavenir/wolfwatch/internal/types"
)

var emptyImpressions = map[string]bool{
	"(无更新)": true,
	"(暂无)":  true,
}

// NormalizePlayerID maps "Player3" (any case, optional "_" or space) to "player_3".
// Other names are returned trimmed.
func NormalizePlayerID(name string) string {
	name = strings.TrimSpace(name)
	m := playerIDRe.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return name
	}
	return "player_" + strconv.Itoa(n)
}

// ParseImpressions splits an impressions body into one entry per "<player>:<text>" line.
func ParseImpressions(body string) types.ImpressionMap {
	out := types.ImpressionMap{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || emptyImpressions[line] {
			continue
		}
		idx := strings.IndexAny(line, ":：")
		if idx < 0 {
			continue
		}
		_, width := utf8.DecodeRuneInString(line[idx:])
		key, value := line[:idx], line[idx+width:]
		id := NormalizePlayerID(key)
		if id == "" {
			continue
		}
		out[id] = strings.TrimSpace(value)
	}
	return out
}

// Insights turns extracted reflections into per-player insights, ordered by player ID.
func Insights(reflections map[string]types.Reflection) []types.PlayerInsight {
	out := make([]types.PlayerInsight, 0, len(reflections))
	for name, r := range reflections {
		out = append(out, types.PlayerInsight{
			PlayerID:    NormalizePlayerID(name),
			Thinking:    r.Thinking,
			Impressions: ParseImpressions(r.Impressions),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
