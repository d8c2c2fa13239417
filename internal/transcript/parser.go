// Package transcript reconstructs a game timeline from the text transcript the game
// logger appends to disk. Parsing never fails: lines that match nothing are skipped
// and the result is whatever could be recovered.
package transcript

import (
	"strconv"
	"strings"

	"github.com/adamavenir/wolfwatch/internal/types"
)

type openField int

const (
	fieldNone openField = iota
	fieldThought
	fieldBehavior
	fieldSpeech
)

var fieldTags = []struct {
	tag   string
	field openField
}{
	{tagThought, fieldThought},
	{tagBehavior, fieldBehavior},
	{tagSpeech, fieldSpeech},
}

// parseState is the scan cursor. Rounds are appended to the result when closed;
// phases and actions are appended as soon as they open, so the cursor tracks
// positions rather than copies.
type parseState struct {
	lines Lines
	pos   int

	out     *types.GameTranscript
	headers map[string]bool
	players map[string]int

	round     *types.Round
	phase     *types.Phase
	actionIdx int
	loose     *types.Action
	field     openField
}

// lineRule reports true when it consumed the line; later rules are skipped.
type lineRule func(s *parseState, line string) bool

// Order matters: earlier rules shadow later ones.
var parseRules = []lineRule{
	applyHeader,
	applyRoster,
	applyRound,
	applyPhase,
	applyTimestamped,
	skipBlank,
	applyFieldTag,
	applyContinuation,
	applyVoteResult,
	applyDeath,
	applyAnnouncement,
}

// Parse reconstructs the transcript from raw text.
func Parse(raw string) *types.GameTranscript {
	return Split(raw).Parse()
}

// Parse reconstructs the transcript from already split lines.
func (l Lines) Parse() *types.GameTranscript {
	s := &parseState{
		lines: l,
		out: &types.GameTranscript{
			Status:  types.StatusInProgress,
			Players: []types.Player{},
			Rounds:  []types.Round{},
		},
		headers:   map[string]bool{},
		players:   map[string]int{},
		actionIdx: -1,
	}

	for s.pos = 0; s.pos < len(s.lines); s.pos++ {
		line := strings.TrimSpace(s.lines[s.pos])
		for _, rule := range parseRules {
			if rule(s, line) {
				break
			}
		}
	}

	if s.round != nil {
		s.out.Rounds = append(s.out.Rounds, *s.round)
	}
	return s.out
}

// inHeader reports whether the scan is still before the first round marker.
// The roster is only written there; later bullet lines belong to speech.
func (s *parseState) inHeader() bool {
	return s.round == nil && len(s.out.Rounds) == 0
}

func (s *parseState) isRosterLine(line string) bool {
	return s.inHeader() && strings.HasPrefix(line, rosterPrefix) && rosterRe.MatchString(line)
}

func (s *parseState) current() *types.Action {
	if s.loose != nil {
		return s.loose
	}
	if s.phase == nil || s.actionIdx < 0 {
		return nil
	}
	return &s.phase.Actions[s.actionIdx]
}

func (s *parseState) resetAction() {
	s.actionIdx = -1
	s.loose = nil
	s.field = fieldNone
}

func (s *parseState) appendItem(item types.Action) {
	if s.phase == nil {
		return
	}
	s.phase.Actions = append(s.phase.Actions, item)
}

func (s *parseState) setHeader(key, value string, dst *string) {
	if s.headers[key] {
		return
	}
	s.headers[key] = true
	*dst = value
}

func applyHeader(s *parseState, line string) bool {
	switch {
	case strings.HasPrefix(line, keyGameID):
		s.setHeader(keyGameID, valueAfter(line, keyGameID), &s.out.GameID)
	case strings.HasPrefix(line, keyStartTime):
		s.setHeader(keyStartTime, valueAfter(line, keyStartTime), &s.out.StartTime)
	case strings.HasPrefix(line, keyEndTime):
		s.setHeader(keyEndTime, valueAfter(line, keyEndTime), &s.out.EndTime)
	case strings.HasPrefix(line, keyGameState):
		s.setHeader("status", valueAfter(line, keyGameState), &s.out.Status)
	}
	if idx := strings.Index(line, keyGameOver); idx >= 0 {
		status := line[idx+len(keyGameOver):]
		if end := strings.Index(status, sentenceEnd); end >= 0 {
			status = status[:end]
		}
		s.setHeader("status", strings.TrimSpace(status), &s.out.Status)
	}
	return false
}

func valueAfter(line, key string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, key))
}

func applyRoster(s *parseState, line string) bool {
	if !s.isRosterLine(line) {
		return false
	}
	m := rosterRe.FindStringSubmatch(line)
	if _, ok := s.players[m[1]]; !ok {
		s.players[m[1]] = len(s.out.Players)
		s.out.Players = append(s.out.Players, types.Player{
			Name:  m[1],
			Model: strings.TrimSpace(m[2]),
			Role:  m[3],
			Alive: true,
		})
	}
	return true
}

func applyRound(s *parseState, line string) bool {
	m := roundRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return true
	}
	if s.round != nil {
		s.out.Rounds = append(s.out.Rounds, *s.round)
	}
	s.round = &types.Round{Number: number, Phases: []types.Phase{}}
	s.phase = nil
	s.resetAction()
	return true
}

func applyPhase(s *parseState, line string) bool {
	var kind types.PhaseKind
	switch line {
	case nightMarker:
		kind = types.PhaseNight
	case dayMarker:
		kind = types.PhaseDay
	default:
		return false
	}
	phase := types.Phase{Kind: kind, Actions: []types.Action{}}
	if s.round != nil {
		s.round.Phases = append(s.round.Phases, phase)
		s.phase = &s.round.Phases[len(s.round.Phases)-1]
	} else {
		// No round to hold it: actions still parse but are dropped with the phase.
		s.phase = &phase
	}
	s.resetAction()
	return true
}

func applyTimestamped(s *parseState, line string) bool {
	ts := timestampRe.FindStringSubmatch(line)
	if ts == nil {
		return false
	}
	if strings.Contains(line, reflectionMarker) || strings.Contains(line, reflectionTagSuffix) {
		s.resetAction()
		return true
	}
	// Vote results, deaths and announcements are timestamped too.
	m := actionHeaderRe.FindStringSubmatch(line)
	if m == nil || startsWithAny(m[1], announcementLeads) {
		return false
	}

	player, target := m[2], ""
	if idx := strings.Index(player, " -> "); idx >= 0 {
		player, target = player[:idx], strings.TrimSpace(player[idx+len(" -> "):])
	}
	action := types.Action{
		Kind:   types.ActionPlayer,
		Time:   ts[1],
		Label:  m[1],
		Player: strings.TrimSpace(player),
		Target: target,
	}

	s.resetAction()
	if s.phase == nil {
		s.loose = &action
		return true
	}
	s.phase.Actions = append(s.phase.Actions, action)
	s.actionIdx = len(s.phase.Actions) - 1
	return true
}

func skipBlank(s *parseState, line string) bool {
	return line == "" || isSeparator(line)
}

func applyFieldTag(s *parseState, line string) bool {
	for _, ft := range fieldTags {
		if !strings.HasPrefix(line, ft.tag) {
			continue
		}
		action := s.current()
		if action == nil {
			return true
		}
		s.field = ft.field
		*fieldPtr(action, ft.field) = stripTag(line, ft.tag)
		return true
	}
	if strings.HasPrefix(line, tagThinking) || strings.HasPrefix(line, tagImpression) {
		s.field = fieldNone
		return true
	}
	return false
}

func applyContinuation(s *parseState, line string) bool {
	if s.field == fieldNone || s.isStructural(line) {
		return false
	}
	action := s.current()
	if action == nil {
		return false
	}
	dst := fieldPtr(action, s.field)
	*dst += "\n" + line
	return true
}

// isStructural reports lines that can never continue a field body.
func (s *parseState) isStructural(line string) bool {
	return line == "" ||
		startsWithAny(line, bracketLeads) ||
		strings.HasPrefix(line, headerPrefix) ||
		s.isRosterLine(line) ||
		isRoundHeader(line) ||
		startsWithAny(line, announcementLeads) ||
		isSeparator(line)
}

func fieldPtr(action *types.Action, field openField) *string {
	switch field {
	case fieldThought:
		return &action.Thought
	case fieldBehavior:
		return &action.Behavior
	default:
		return &action.Speech
	}
}

func applyVoteResult(s *parseState, line string) bool {
	m := voteResultRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	s.appendItem(types.Action{Kind: types.ActionVoteResult, Details: strings.TrimSpace(m[1])})
	return true
}

func applyDeath(s *parseState, line string) bool {
	m := deathRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	victims := strings.TrimSpace(m[2])
	s.appendItem(types.Action{Kind: types.ActionDeath, Details: m[1] + ": " + victims})

	for _, name := range splitNames(victims) {
		if idx, ok := s.players[name]; ok {
			s.out.Players[idx].Alive = false
		}
	}
	return true
}

func splitNames(list string) []string {
	list = strings.ReplaceAll(list, "，", ",")
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || name == noVictims {
			continue
		}
		names = append(names, name)
	}
	return names
}

func applyAnnouncement(s *parseState, line string) bool {
	if !strings.Contains(line, announcementMarker) {
		return false
	}
	var body []string
	for s.pos+1 < len(s.lines) {
		next := strings.TrimSpace(s.lines[s.pos+1])
		if next == "" || strings.HasPrefix(next, "[") {
			break
		}
		body = append(body, next)
		s.pos++
	}
	s.appendItem(types.Action{Kind: types.ActionSystem, Details: strings.Join(body, " ")})
	return true
}
