package feed

import (
	"encoding/json"
	"strings"

	"github.com/adamavenir/wolfwatch/internal/transcript"
	"github.com/adamavenir/wolfwatch/internal/types"
)

const (
	agentSystem   = "System"
	agentFallback = "Agent"
	agentMemory   = "Memory"

	defaultConferenceTitle = "Team Conference"
)

// Agent is what the feed knows about a player when rendering their messages.
type Agent struct {
	Name string
	Role string
}

// AgentDirectory resolves an event's agentId to a display name and role.
type AgentDirectory interface {
	Agent(id string) (Agent, bool)
}

// Directory is an AgentDirectory keyed by normalized player ID.
type Directory map[string]Agent

func (d Directory) Agent(id string) (Agent, bool) {
	a, ok := d[transcript.NormalizePlayerID(id)]
	return a, ok
}

type rosterEntry struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Model string `json:"model"`
}

// Learn records the roster carried by a system event, if any. It reports whether the
// event had one.
func (d Directory) Learn(evt types.Event) bool {
	if len(evt.Players) == 0 {
		return false
	}
	var roster []rosterEntry
	if err := json.Unmarshal(evt.Players, &roster); err != nil {
		// Death events carry a plain list of names.
		return false
	}
	for _, p := range roster {
		if p.Name == "" {
			continue
		}
		d[transcript.NormalizePlayerID(p.Name)] = Agent{Name: p.Name, Role: p.Role}
	}
	return len(roster) > 0
}

func isSystemEvent(eventType string) bool {
	switch eventType {
	case types.EventSystem, types.EventDayStart, types.EventNightStart,
		types.EventRoundStart, types.EventDayComplete, types.EventDayError:
		return true
	}
	return false
}

func (r *Reducer) lookup(id string) (Agent, bool) {
	if r.agents == nil || id == "" {
		return Agent{}, false
	}
	return r.agents.Agent(id)
}

func (r *Reducer) when(evt types.Event) int64 {
	if ts := evt.When(); ts != 0 {
		return ts
	}
	return r.now().UnixMilli()
}

// toMessage converts a message-shaped event. Memory and conference lifecycle events
// are not message-shaped.
func (r *Reducer) toMessage(evt types.Event) (types.Message, bool) {
	switch {
	case evt.Type == types.EventAgentMessage, evt.Type == types.EventConferenceMessage:
		agent, _ := r.lookup(evt.AgentID)
		return types.Message{
			ID:        r.newID("msg"),
			Timestamp: r.when(evt),
			AgentID:   evt.AgentID,
			Agent:     firstNonEmpty(agent.Name, evt.AgentName, evt.AgentID, agentFallback),
			Role:      firstNonEmpty(evt.Role, agent.Role, agentFallback),
			Content:   displayContent(evt),
			Thought:   evt.Thought,
			Behavior:  evt.Behavior,
			Speech:    evt.Speech,
			Category:  evt.Category,
			Action:    evt.Action,
		}, true

	case isSystemEvent(evt.Type):
		content := evt.Content
		if content == "" {
			content = strings.TrimSpace(evt.Type + ": " + evt.Date)
		}
		return types.Message{
			ID:        r.newID("sys"),
			Timestamp: r.when(evt),
			Agent:     agentSystem,
			Role:      agentSystem,
			Content:   content,
			Category:  evt.Category,
		}, true
	}
	return types.Message{}, false
}

// displayContent flattens a structured utterance. With no thought or behavior the
// speech is the whole message; otherwise the raw content carries the summary.
func displayContent(evt types.Event) string {
	if evt.Thought == "" && evt.Behavior == "" {
		return firstNonEmpty(evt.Speech, evt.Content)
	}
	return firstNonEmpty(evt.Content, evt.Speech)
}

func (r *Reducer) toMemory(evt types.Event) *types.MemoryItem {
	agent, _ := r.lookup(evt.AgentID)
	return &types.MemoryItem{
		ID: r.newID("memory"),
		Note: types.MemoryNote{
			Timestamp: r.when(evt),
			AgentID:   evt.AgentID,
			Agent:     firstNonEmpty(agent.Name, evt.AgentName, evt.AgentID, agentMemory),
			Content:   firstNonEmpty(evt.Content, evt.Text),
		},
	}
}

func (r *Reducer) newConference(evt types.Event, live bool) *types.ConferenceItem {
	id := evt.ConferenceID
	if id == "" || r.taken(id) {
		id = r.newID("conf")
	}
	participants := evt.Participants
	if participants == nil {
		participants = []string{}
	}
	return &types.ConferenceItem{Conference: types.Conference{
		ID:           id,
		Title:        firstNonEmpty(evt.Title, defaultConferenceTitle),
		StartTime:    r.when(evt),
		IsLive:       live,
		Participants: participants,
		Messages:     []types.Message{},
	}}
}

func closeConference(c *types.ConferenceItem, at int64) {
	c.Conference.EndTime = &at
	c.Conference.IsLive = false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
