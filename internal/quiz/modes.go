package quiz

import "cemap-quiz-service/internal/domain"

// Default sizes and thresholds per mode. The full exam is a fixed 50-question
// paper at the CeMAP 80% bar; topic exams are shorter with a softer bar.
const (
	fullExamSize      = 50
	topicExamSize     = 25
	defaultPoolCount  = 10
	examThreshold     = 0.80
	topicThreshold    = 0.70
	scenarioThreshold = 0.70
)

// modeRules captures the per-mode contract: interstitial cadence, feedback
// policy, pass threshold (0 means ungraded) and leaderboard eligibility.
type modeRules struct {
	checkpointEvery   int
	immediateFeedback bool
	passThreshold     float64
	leaderboard       bool
	fixedCount        int // 0 means the caller's requested count applies
}

func rulesFor(mode domain.Mode, topicFilter string) modeRules {
	switch mode {
	case domain.ModeExam:
		if topicFilter != "" {
			return modeRules{checkpointEvery: 10, passThreshold: topicThreshold, leaderboard: true, fixedCount: topicExamSize}
		}
		return modeRules{checkpointEvery: 10, passThreshold: examThreshold, leaderboard: true, fixedCount: fullExamSize}
	case domain.ModeScenario:
		return modeRules{checkpointEvery: 4, passThreshold: scenarioThreshold, leaderboard: true}
	default: // practice
		return modeRules{checkpointEvery: 5, immediateFeedback: true}
	}
}
