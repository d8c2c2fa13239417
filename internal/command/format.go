package command

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adamavenir/wolfwatch/internal/core"
	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
	"github.com/charmbracelet/lipgloss"
)

var playerPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	roundStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	dayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	nightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
	deathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	liveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("157")).Bold(true)
)

func hashString(value string) int {
	hash := 0
	for i := 0; i < len(value); i++ {
		hash = ((hash << 5) - hash) + int(value[i])
		hash &= 0x7fffffff
	}
	return hash
}

func playerStyle(name string) lipgloss.Style {
	color := playerPalette[hashString(name)%len(playerPalette)]
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

func phaseLabel(kind types.PhaseKind) string {
	if kind == types.PhaseNight {
		return nightStyle.Render("🌙 夜晚")
	}
	return dayStyle.Render("☀️ 白天")
}

// FormatHeader summarizes a transcript in one line.
func FormatHeader(t *types.GameTranscript) string {
	parts := []string{boldStyle.Render("游戏 " + firstNonEmpty(t.GameID, "?"))}
	parts = append(parts, transcript.DisplayStatus(t))
	if n := len(t.Rounds); n > 0 {
		round := fmt.Sprintf("第%d轮", t.Rounds[n-1].Number)
		if kind, ok := transcript.CurrentPhase(t); ok {
			round += " " + phaseLabel(kind)
		}
		parts = append(parts, round)
	}
	if speaker, ok := transcript.LatestSpeaker(t); ok {
		parts = append(parts, "最新发言 "+playerStyle(speaker.Player).Render(speaker.Player))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

// FormatPlayers renders the roster, one player per line.
func FormatPlayers(players []types.Player) []string {
	lines := make([]string, 0, len(players))
	for _, p := range players {
		line := "  " + playerStyle(p.Name).Render(p.Name) + " " + p.Role
		if p.Model != "" {
			line += dimStyle.Render(" (" + p.Model + ")")
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatRound renders a round with its phases and actions.
func FormatRound(r types.Round) []string {
	lines := []string{roundStyle.Render(fmt.Sprintf("━━ 第%d轮 ━━", r.Number))}
	for _, phase := range r.Phases {
		lines = append(lines, phaseLabel(phase.Kind))
		for _, action := range phase.Actions {
			lines = append(lines, FormatAction(action)...)
		}
	}
	return lines
}

// FormatAction renders one player action or system item.
func FormatAction(a types.Action) []string {
	switch a.Kind {
	case types.ActionDeath:
		return []string{"  " + deathStyle.Render("💀 "+a.Label+": "+a.Details)}
	case types.ActionVoteResult:
		return []string{"  " + systemStyle.Render("📊 "+a.Details)}
	case types.ActionSystem:
		return []string{"  " + systemStyle.Render(a.Details)}
	}

	head := "  " + dimStyle.Render("["+a.Time+"]") + " " + playerStyle(a.Player).Render(a.Player)
	if a.Label != "" {
		head += " " + a.Label
	}
	if a.Target != "" {
		head += " -> " + a.Target
	}
	lines := []string{head}
	if a.Thought != "" {
		lines = append(lines, indent(dimStyle.Render("思考: "+a.Thought)))
	}
	if a.Behavior != "" {
		lines = append(lines, indent("行为: "+a.Behavior))
	}
	if a.Speech != "" {
		lines = append(lines, indent("发言: "+a.Speech))
	}
	return lines
}

// FormatReflection renders a player's reflection and parsed impressions.
func FormatReflection(r types.Reflection) []string {
	lines := []string{playerStyle(r.Player).Render(r.Player)}
	if r.Thinking != "" {
		lines = append(lines, indent("思考: "+r.Thinking))
	}
	impressions := transcript.ParseImpressions(r.Impressions)
	ids := make([]string, 0, len(impressions))
	for id := range impressions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lines = append(lines, indent(dimStyle.Render(id+": ")+impressions[id]))
	}
	return lines
}

// FormatFeedItem renders a feed item for the terminal.
func FormatFeedItem(item types.FeedItem) []string {
	switch it := item.(type) {
	case *types.MessageItem:
		return []string{formatMessage(it.Message)}
	case *types.MemoryItem:
		return []string{dimStyle.Render(formatClock(it.Note.Timestamp)+" 🧠 "+it.Note.Agent+": ") + it.Note.Content}
	case *types.ConferenceItem:
		c := it.Conference
		head := boldStyle.Render("🗣 "+c.Title) + dimStyle.Render(fmt.Sprintf(" #%s (%d)", core.ShortID(c.ID, 4), len(c.Messages)))
		if c.IsLive {
			head += " " + liveStyle.Render("LIVE")
		}
		lines := []string{head}
		for _, msg := range c.Messages {
			lines = append(lines, indent(formatMessage(msg)))
		}
		return lines
	}
	return nil
}

func formatMessage(msg types.Message) string {
	clock := dimStyle.Render(formatClock(msg.Timestamp))
	if msg.Agent == "System" {
		return clock + " " + systemStyle.Render(msg.Content)
	}
	who := playerStyle(msg.Agent).Render(msg.Agent) + dimStyle.Render(" ("+msg.Role+")")
	return clock + " " + who + ": " + msg.Content
}

func formatClock(ms int64) string {
	if ms == 0 {
		return "--:--:--"
	}
	return time.UnixMilli(ms).Format("15:04:05")
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
