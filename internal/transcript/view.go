package transcript

import (
	"strings"

	"github.com/adamavenir/wolfwatch/internal/types"
)

const (
	DisplayInProgress = "进行中"
	DisplayGameOver   = "游戏结束"

	// DefaultRecentRounds is how many rounds a compact view shows.
	DefaultRecentRounds = 3
)

// IsGameOver reports whether the transcript records a finished or aborted game.
// Pollers stop once this is true.
func IsGameOver(t *types.GameTranscript) bool {
	if t == nil {
		return false
	}
	if t.EndTime != "" {
		return true
	}
	for _, status := range terminalStatuses {
		if strings.Contains(t.Status, status) {
			return true
		}
	}
	return false
}

// DisplayStatus collapses the free-form status into the two states a viewer shows.
func DisplayStatus(t *types.GameTranscript) string {
	if IsGameOver(t) {
		return DisplayGameOver
	}
	return DisplayInProgress
}

// CurrentPhase returns the kind of the latest phase, or false before the first phase marker.
func CurrentPhase(t *types.GameTranscript) (types.PhaseKind, bool) {
	phase := lastPhase(t)
	if phase == nil {
		return "", false
	}
	return phase.Kind, true
}

// LatestSpeaker returns the most recent player action in the latest phase that said or did something.
func LatestSpeaker(t *types.GameTranscript) (types.Action, bool) {
	phase := lastPhase(t)
	if phase == nil {
		return types.Action{}, false
	}
	for i := len(phase.Actions) - 1; i >= 0; i-- {
		a := phase.Actions[i]
		if a.IsSystem() {
			continue
		}
		if a.Speech != "" || a.Behavior != "" {
			return a, true
		}
	}
	return types.Action{}, false
}

// RecentRounds returns the last n rounds. n <= 0 returns every round.
func RecentRounds(t *types.GameTranscript, n int) []types.Round {
	if t == nil {
		return nil
	}
	if n <= 0 || len(t.Rounds) <= n {
		return t.Rounds
	}
	return t.Rounds[len(t.Rounds)-n:]
}

func lastPhase(t *types.GameTranscript) *types.Phase {
	if t == nil || len(t.Rounds) == 0 {
		return nil
	}
	round := &t.Rounds[len(t.Rounds)-1]
	if len(round.Phases) == 0 {
		return nil
	}
	return &round.Phases[len(round.Phases)-1]
}
