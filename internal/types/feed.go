package types

import "encoding/json"

// Event types pushed by the game server's event bus.
const (
	EventHistorical        = "historical"
	EventConferenceStart   = "conference_start"
	EventConferenceMessage = "conference_message"
	EventConferenceEnd     = "conference_end"
	EventAgentMessage      = "agent_message"
	EventMemory            = "memory"
	EventSystem            = "system"
	EventDayStart          = "day_start"
	EventNightStart        = "night_start"
	EventRoundStart        = "round_start"
	EventDayComplete       = "day_complete"
	EventDayError          = "day_error"
	EventPing              = "ping"
	EventPong              = "pong"
)

// Event is one discrete record from the live event stream. Only Type is guaranteed;
// every other field is optional and depends on the type.
type Event struct {
	Type            string          `json:"type"`
	GameID          string          `json:"gameId,omitempty"`
	Round           int             `json:"round,omitempty"`
	Timestamp       int64           `json:"timestamp,omitempty"`
	TS              int64           `json:"ts,omitempty"`
	AgentID         string          `json:"agentId,omitempty"`
	AgentName       string          `json:"agentName,omitempty"`
	Role            string          `json:"role,omitempty"`
	Content         string          `json:"content,omitempty"`
	Text            string          `json:"text,omitempty"`
	Thought         string          `json:"thought,omitempty"`
	Behavior        string          `json:"behavior,omitempty"`
	Speech          string          `json:"speech,omitempty"`
	Category        string          `json:"category,omitempty"`
	CategoryDisplay string          `json:"categoryDisplay,omitempty"`
	Action          string          `json:"action,omitempty"`
	ConferenceID    string          `json:"conferenceId,omitempty"`
	Title           string          `json:"title,omitempty"`
	Participants    []string        `json:"participants,omitempty"`
	Date            string          `json:"date,omitempty"`
	Players         json.RawMessage `json:"players,omitempty"`
	AlivePlayers    []string        `json:"alivePlayers,omitempty"`
	LogPath         string          `json:"logPath,omitempty"`
	ExperiencePath  string          `json:"experiencePath,omitempty"`
}

// When returns the event's timestamp in unix milliseconds, or 0 when absent.
func (e Event) When() int64 {
	if e.Timestamp != 0 {
		return e.Timestamp
	}
	return e.TS
}

// HistoricalEnvelope is the replay frame sent once when a client connects.
// Events are ordered newest-first.
type HistoricalEnvelope struct {
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

// Message is a single structured utterance shown in the feed.
type Message struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	AgentID   string `json:"agentId,omitempty"`
	Agent     string `json:"agent"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Thought   string `json:"thought,omitempty"`
	Behavior  string `json:"behavior,omitempty"`
	Speech    string `json:"speech,omitempty"`
	Category  string `json:"category,omitempty"`
	Action    string `json:"action,omitempty"`
}

// MemoryNote is an agent's internal note.
type MemoryNote struct {
	Timestamp int64  `json:"timestamp"`
	AgentID   string `json:"agentId,omitempty"`
	Agent     string `json:"agent"`
	Content   string `json:"content"`
}

// Conference is a run of messages grouped between a start and an end event.
type Conference struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StartTime    int64     `json:"startTime"`
	EndTime      *int64    `json:"endTime"`
	IsLive       bool      `json:"isLive"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
}

// FeedKind names the three feed item variants.
type FeedKind string

const (
	FeedMessage    FeedKind = "message"
	FeedConference FeedKind = "conference"
	FeedMemory     FeedKind = "memory"
)

// FeedItem is a unit of the live display sequence. The set of implementations is closed:
// *MessageItem, *ConferenceItem and *MemoryItem.
type FeedItem interface {
	ItemID() string
	Kind() FeedKind
	feedItem()
}

// MessageItem wraps a standalone message.
type MessageItem struct {
	Message Message
}

func (m *MessageItem) ItemID() string { return m.Message.ID }
func (m *MessageItem) Kind() FeedKind { return FeedMessage }
func (m *MessageItem) feedItem()      {}

func (m *MessageItem) MarshalJSON() ([]byte, error) {
	return marshalFeedItem(FeedMessage, m.Message.ID, m.Message)
}

// ConferenceItem wraps a conference. It is mutated in place while live.
type ConferenceItem struct {
	Conference Conference
}

func (c *ConferenceItem) ItemID() string { return c.Conference.ID }
func (c *ConferenceItem) Kind() FeedKind { return FeedConference }
func (c *ConferenceItem) feedItem()      {}

func (c *ConferenceItem) MarshalJSON() ([]byte, error) {
	return marshalFeedItem(FeedConference, c.Conference.ID, c.Conference)
}

// MemoryItem wraps a memory note.
type MemoryItem struct {
	ID   string
	Note MemoryNote
}

func (m *MemoryItem) ItemID() string { return m.ID }
func (m *MemoryItem) Kind() FeedKind { return FeedMemory }
func (m *MemoryItem) feedItem()      {}

func (m *MemoryItem) MarshalJSON() ([]byte, error) {
	return marshalFeedItem(FeedMemory, m.ID, m.Note)
}

type feedEnvelope struct {
	Type FeedKind `json:"type"`
	ID   string   `json:"id"`
	Data any      `json:"data"`
}

func marshalFeedItem(kind FeedKind, id string, data any) ([]byte, error) {
	return json.Marshal(feedEnvelope{Type: kind, ID: id, Data: data})
}
