package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adamavenir/wolfwatch/internal/source"
	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type ToolContext struct {
	Logs *source.LogDir
}

type logsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of transcripts to list (default: 20)"`
}

type transcriptArgs struct {
	Log    string `json:"log,omitempty" jsonschema:"Transcript file name. Defaults to the most recent game."`
	Rounds int    `json:"rounds,omitempty" jsonschema:"Number of recent rounds to include (default: 3, -1 for all)"`
}

type reflectionsArgs struct {
	Log    string `json:"log,omitempty" jsonschema:"Transcript file name. Defaults to the most recent game."`
	Player string `json:"player,omitempty" jsonschema:"Only return this player's reflection, e.g. Player3"`
}

// RegisterTools registers the read-only wolfwatch tools.
func RegisterTools(server *mcp.Server, ctx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "wolfwatch_logs",
		Description: "List werewolf game transcripts, most recent first.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args logsArgs) (*mcp.CallToolResult, any, error) {
		return handleLogs(*ctx, args.Limit), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wolfwatch_transcript",
		Description: "Summarize a werewolf game: status, players, and the actions of recent rounds.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args transcriptArgs) (*mcp.CallToolResult, any, error) {
		return handleTranscript(*ctx, args.Log, args.Rounds), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wolfwatch_reflections",
		Description: "Get each player's latest private reflection and their impressions of other players.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args reflectionsArgs) (*mcp.CallToolResult, any, error) {
		return handleReflections(*ctx, args.Log, args.Player), nil, nil
	})
}

func handleLogs(ctx ToolContext, limit int) *mcp.CallToolResult {
	if limit <= 0 {
		limit = 20
	}
	logs, err := ctx.Logs.List()
	if err != nil {
		return toolError(err.Error())
	}
	if len(logs) == 0 {
		return toolResult("No transcripts found", false)
	}
	if len(logs) > limit {
		logs = logs[:limit]
	}
	lines := make([]string, 0, len(logs))
	for _, log := range logs {
		lines = append(lines, fmt.Sprintf("%s  %s", log.Time, log.Name))
	}
	return toolResult(fmt.Sprintf("Transcripts (%d):\n\n%s", len(logs), strings.Join(lines, "\n")), false)
}

func handleTranscript(ctx ToolContext, name string, rounds int) *mcp.CallToolResult {
	text, err := readLog(ctx, name)
	if err != nil {
		return toolError(err.Error())
	}
	switch {
	case rounds == 0:
		rounds = transcript.DefaultRecentRounds
	case rounds < 0:
		rounds = 0
	}
	return toolResult(summarize(transcript.Parse(text), rounds), false)
}

func handleReflections(ctx ToolContext, name, player string) *mcp.CallToolResult {
	text, err := readLog(ctx, name)
	if err != nil {
		return toolError(err.Error())
	}
	reflections := transcript.ExtractReflections(text)
	if player != "" {
		r, ok := reflections[player]
		if !ok {
			return toolResult(fmt.Sprintf("No reflection for %s", player), false)
		}
		reflections = map[string]types.Reflection{player: r}
	}
	if len(reflections) == 0 {
		return toolResult("No reflections yet", false)
	}
	data, err := json.MarshalIndent(transcript.Insights(reflections), "", "  ")
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(string(data), false)
}

func readLog(ctx ToolContext, name string) (string, error) {
	if name == "" {
		latest, err := ctx.Logs.Latest()
		if err != nil {
			if errors.Is(err, source.ErrLogNotFound) {
				return "", fmt.Errorf("no transcripts in %s", ctx.Logs.Root)
			}
			return "", err
		}
		name = latest.Name
	}
	return ctx.Logs.Read(name)
}

func summarize(game *types.GameTranscript, rounds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game %s: %s\n", game.GameID, transcript.DisplayStatus(game))
	if game.Status != "" && game.Status != transcript.DisplayStatus(game) {
		fmt.Fprintf(&b, "Status: %s\n", game.Status)
	}
	if len(game.Players) > 0 {
		b.WriteString("Players:\n")
		for _, p := range game.Players {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Role)
		}
	}
	for _, round := range transcript.RecentRounds(game, rounds) {
		fmt.Fprintf(&b, "\nRound %d\n", round.Number)
		for _, phase := range round.Phases {
			fmt.Fprintf(&b, "[%s]\n", phase.Kind)
			for _, action := range phase.Actions {
				b.WriteString(summarizeAction(action))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func summarizeAction(a types.Action) string {
	if a.IsSystem() {
		if a.Kind == types.ActionDeath {
			return fmt.Sprintf("  %s: %s\n", a.Label, a.Details)
		}
		return fmt.Sprintf("  %s\n", a.Details)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s", a.Player, a.Label)
	if a.Target != "" {
		fmt.Fprintf(&b, " -> %s", a.Target)
	}
	b.WriteString("\n")
	if a.Behavior != "" {
		fmt.Fprintf(&b, "    behavior: %s\n", a.Behavior)
	}
	if a.Speech != "" {
		fmt.Fprintf(&b, "    speech: %s\n", a.Speech)
	}
	return b.String()
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}
