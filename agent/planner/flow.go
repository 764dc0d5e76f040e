package planner

import (
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

var urgencyKeywords = []string{"urgent", "asap", "immediately", "now", "quickly", "hurry"}

type flowAnalysis struct {
	State          string
	TurnsCount     int
	TopicChanged   bool
	UrgencyScore   float64
	UrgencySignals []string
	UserPatience   float64
}

func analyzeFlow(pc contract.PlanningContext) flowAnalysis {
	turns := 0
	if pc.Memory != nil {
		turns = len(pc.Memory.Turns)
	}

	state := "ongoing"
	switch turns {
	case 0:
		state = "initial"
	case 1:
		state = "follow_up"
	}

	score, signals := detectUrgency(pc.Utterance)

	return flowAnalysis{
		State:          state,
		TurnsCount:     turns,
		TopicChanged:   topicChanged(pc),
		UrgencyScore:   score,
		UrgencySignals: signals,
		UserPatience:   estimatePatience(turns),
	}
}

// detectUrgency scores urgency cues: 0.3 per keyword, 0.2 for more
// than one question mark, 0.1 per exclamation mark, capped at 1.0.
func detectUrgency(utterance string) (float64, []string) {
	lower := strings.ToLower(utterance)

	score := 0.0
	var signals []string
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			score += 0.3
			signals = append(signals, kw)
		}
	}

	if strings.Count(utterance, "?") > 1 {
		score += 0.2
		signals = append(signals, "multiple_questions")
	}
	if bangs := strings.Count(utterance, "!"); bangs > 0 {
		score += 0.1 * float64(bangs)
		signals = append(signals, "exclamation_marks")
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, signals
}

func topicChanged(pc contract.PlanningContext) bool {
	if pc.Memory == nil || len(pc.Memory.Turns) < 2 {
		return false
	}
	latest := pc.Memory.LatestTurn()
	return contract.Intent(latest.Intent) != pc.Intent
}

// estimatePatience decays with conversation length.
func estimatePatience(turns int) float64 {
	switch {
	case turns == 0:
		return 1.0
	case turns < 3:
		return 0.8
	case turns < 5:
		return 0.6
	default:
		return 0.4
	}
}
