package domain

import "time"

// Mode selects the quiz flavour a session runs in.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
	ModeScenario Mode = "scenario"
)

// Valid reports whether the mode is one of the known quiz modes.
func (m Mode) Valid() bool {
	switch m {
	case ModePractice, ModeExam, ModeScenario:
		return true
	}
	return false
}

// Paid reports whether entering the mode requires an entitlement.
func (m Mode) Paid() bool {
	return m == ModeExam || m == ModeScenario
}

// Option letters for multiple-choice answers.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// OptionLetters is the fixed answer alphabet, in display order.
var OptionLetters = []string{OptionA, OptionB, OptionC, OptionD}

// ValidOption reports whether the letter is part of the answer alphabet.
func ValidOption(letter string) bool {
	for _, l := range OptionLetters {
		if l == letter {
			return true
		}
	}
	return false
}

// Question is a single multiple-choice question from the bank.
// CorrectOption is always one of the option letters. Questions sharing a
// ScenarioGroupID share the same ScenarioText and are presented together.
type Question struct {
	ID              string   `json:"id"`
	Topic           string   `json:"topic"`
	Text            string   `json:"questionText"`
	Options         []string `json:"options"` // indexed A..D
	CorrectOption   string   `json:"correctOption"`
	ScenarioText    string   `json:"scenarioText,omitempty"`
	ScenarioGroupID string   `json:"scenarioGroupId,omitempty"`
}

// HighScoreRecord is an append-only leaderboard entry. Only exam and
// scenario sessions produce records.
type HighScoreRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// Percent is the record's score as a fraction of total, 0 when total is 0.
func (r HighScoreRecord) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// EntitlementScope names which paid content a token unlocks.
type EntitlementScope string

const (
	ScopeExam     EntitlementScope = "exam"
	ScopeScenario EntitlementScope = "scenario"
	ScopeBundle   EntitlementScope = "bundle"
)

// ParseScope validates a raw purchase-type string from the payment
// collaborator.
func ParseScope(raw string) (EntitlementScope, bool) {
	switch EntitlementScope(raw) {
	case ScopeExam, ScopeScenario, ScopeBundle:
		return EntitlementScope(raw), true
	}
	return "", false
}

// ScopeFor maps a paid mode to the entitlement scope that unlocks it.
func ScopeFor(m Mode) (EntitlementScope, bool) {
	switch m {
	case ModeExam:
		return ScopeExam, true
	case ModeScenario:
		return ScopeScenario, true
	}
	return "", false
}

// SatisfactionRating is one entry in the append-only ratings list.
type SatisfactionRating struct {
	Rating        int       `json:"rating"` // 1..5
	QuestionIndex int       `json:"questionIndex"`
	Timestamp     time.Time `json:"timestamp"`
}

// User is a registered account. The bcrypt hash never leaves the server.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Hash      string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
