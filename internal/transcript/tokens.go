package transcript

import "regexp"

// Literal markers written by the game logger. The parser and the reflection
// extractor both read these; keep them here so the two passes cannot drift.
const (
	keyGameID    = "游戏ID:"
	keyStartTime = "开始时间:"
	keyEndTime   = "游戏结束时间:"
	keyGameOver  = "游戏结束:"
	keyGameState = "游戏状态:"

	headerPrefix = "游戏"
	rosterPrefix = "- "

	nightMarker = "【夜晚阶段】"
	dayMarker   = "【白天阶段】"

	tagThought    = "(心声)"
	tagBehavior   = "(表现)"
	tagSpeech     = "(发言)"
	tagThinking   = "(思考)"
	tagImpression = "(印象)"

	reflectionMarker    = "回合-反思"
	reflectionTagSuffix = "反思]"

	voteResultMarker   = "投票结果"
	nightDeathMarker   = "夜晚死亡"
	dayDeathMarker     = "白天死亡"
	announcementMarker = "📢 系统公告"

	sentenceEnd = "。"
	noVictims   = "无"
)

// Banner phrases the logger writes when a game stops; they never belong to a reflection body.
var endBanners = []string{
	"游戏异常终止",
	"游戏结束时间",
	"游戏状态",
	"游戏结束",
}

// Status fragments that mean the game is no longer running.
var terminalStatuses = []string{"结束", "异常终止", "胜利"}

// Leading runes of bracketed tags and timestamped entries.
const bracketLeads = "[(（"

// Leading runes of announcement lines (phase header, system notice, death, vote).
const announcementLeads = "【📢💀📊"

var (
	timestampRe    = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]`)
	actionHeaderRe = regexp.MustCompile(`\] (.+?) \| (.+)`)
	roundRe        = regexp.MustCompile(`^第\s*(\d+)\s*回合$`)
	rosterRe       = regexp.MustCompile(`^- (\S+?)(?:\s*\(([^)]*)\))?\s*[:：]\s*(\S+)$`)
	separatorRe    = regexp.MustCompile(`^[-=]+$`)
	voteResultRe   = regexp.MustCompile(`📊 (.*` + voteResultMarker + `.*)`)
	deathRe        = regexp.MustCompile(`💀 (` + nightDeathMarker + `|` + dayDeathMarker + `)\s*(.*)`)

	reflectionHeaderRe = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\]\s*\[第\s*\d+\s*` + reflectionMarker + `\]\s*(.+?)\s*$`)
	legacyReflectionRe = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\].*` + reflectionMarker + `.*?(Player\d+)`)
	playerIDRe         = regexp.MustCompile(`^(?i:player)\s*_?(\d+)$`)
)
