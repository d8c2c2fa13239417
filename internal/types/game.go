package types

// PhaseKind is the day/night half of a round.
type PhaseKind string

const (
	PhaseDay   PhaseKind = "day"
	PhaseNight PhaseKind = "night"
)

// ActionKind discriminates player actions from system items inside a phase.
type ActionKind string

const (
	ActionPlayer     ActionKind = "player"
	ActionVoteResult ActionKind = "vote_result"
	ActionDeath      ActionKind = "death"
	ActionSystem     ActionKind = "system"
)

// StatusInProgress is the status a transcript carries until a terminal status line is seen.
const StatusInProgress = "进行中"

// GameTranscript is the reconstructed view of one transcript snapshot.
type GameTranscript struct {
	GameID    string   `json:"game_id"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Status    string   `json:"status"`
	Players   []Player `json:"players"`
	Rounds    []Round  `json:"rounds"`
}

// Player is a roster entry. Name is unique within a transcript.
type Player struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Model string `json:"model,omitempty"`
	Alive bool   `json:"alive"`
}

// Round groups the phases of one game round.
type Round struct {
	Number int     `json:"number"`
	Phases []Phase `json:"phases"`
}

// Phase holds actions and system items in the order they were written.
type Phase struct {
	Kind    PhaseKind `json:"kind"`
	Actions []Action  `json:"actions"`
}

// Action is either a player action (Kind == ActionPlayer) or a system item.
// Player fields are empty for system items and Details is empty for player actions.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Time     string     `json:"time,omitempty"`
	Label    string     `json:"label,omitempty"`
	Player   string     `json:"player,omitempty"`
	Target   string     `json:"target,omitempty"`
	Thought  string     `json:"thought,omitempty"`
	Behavior string     `json:"behavior,omitempty"`
	Speech   string     `json:"speech,omitempty"`
	Details  string     `json:"details,omitempty"`
}

// IsSystem reports whether the action was synthesized from an announcement line.
func (a Action) IsSystem() bool {
	return a.Kind != ActionPlayer
}

// Reflection is a player's private end-of-round note.
type Reflection struct {
	Player      string `json:"player"`
	Thinking    string `json:"thinking"`
	Impressions string `json:"impressions"`
}

// Empty reports whether neither field carries content.
func (r Reflection) Empty() bool {
	return r.Thinking == "" && r.Impressions == ""
}

// ImpressionMap maps another player's ID to what the reflecting player thinks of them.
type ImpressionMap map[string]string

// PlayerInsight combines a player's latest impressions with their reflection text.
type PlayerInsight struct {
	PlayerID    string        `json:"player_id"`
	Thinking    string        `json:"thinking,omitempty"`
	Impressions ImpressionMap `json:"impressions"`
}
