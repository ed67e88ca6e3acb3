package quiz

import (
	"sync"
	"time"

	"cemap-quiz-service/internal/domain"
)

type sessionState int

const (
	stateInProgress sessionState = iota
	stateCompleted
)

// Session is the in-memory state machine for one quiz run. The question set
// is fixed at construction; answers and the cursor are the only mutable
// state, serialized behind the mutex.
type Session struct {
	id        string
	mode      domain.Mode
	rules     modeRules
	questions []domain.Question
	truncated bool
	seed      int64
	createdAt time.Time
	now       func() time.Time

	mu           sync.Mutex
	state        sessionState
	currentIndex int
	answers      map[string]string
	score        int
	playerName   string
	completedAt  time.Time
}

func newSession(id string, mode domain.Mode, rules modeRules, questions []domain.Question, truncated bool, seed int64, now func() time.Time) *Session {
	return &Session{
		id:        id,
		mode:      mode,
		rules:     rules,
		questions: questions,
		truncated: truncated,
		seed:      seed,
		createdAt: now(),
		now:       now,
		answers:   make(map[string]string, len(questions)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the session's quiz mode.
func (s *Session) Mode() domain.Mode { return s.mode }

// Feedback is what a submit returns. Correct is only meaningful when
// Revealed is true (practice mode); exam and scenario withhold correctness
// until completion.
type Feedback struct {
	Revealed bool `json:"revealed"`
	Correct  bool `json:"correct"`
}

func (s *Session) submitAnswer(questionID, option string) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateCompleted {
		return Feedback{}, domain.ErrSessionCompleted
	}

	var question *domain.Question
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			question = &s.questions[i]
			break
		}
	}
	if question == nil {
		return Feedback{}, domain.ErrQuestionNotInSession
	}

	// Last write wins; resubmitting is allowed until the session completes.
	s.answers[questionID] = option

	if s.rules.immediateFeedback {
		return Feedback{Revealed: true, Correct: option == question.CorrectOption}, nil
	}
	return Feedback{}, nil
}

// Progress reports the cursor after an advance. Checkpoint signals that an
// interstitial should be shown before the next question.
type Progress struct {
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	Done         bool         `json:"done"`
	Checkpoint   bool         `json:"checkpoint"`
	Interstitial Interstitial `json:"interstitial,omitempty"`
}

func (s *Session) advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateCompleted {
		return Progress{}, domain.ErrSessionCompleted
	}
	if s.currentIndex < len(s.questions) {
		s.currentIndex++
	}

	p := Progress{
		Index: s.currentIndex,
		Total: len(s.questions),
		Done:  s.currentIndex == len(s.questions),
	}
	if !p.Done && s.rules.checkpointEvery > 0 && s.currentIndex%s.rules.checkpointEvery == 0 {
		p.Checkpoint = true
		p.Interstitial = PickInterstitial(s.seed + int64(s.currentIndex))
	}
	return p, nil
}

// Result is the completion summary. Record is non-nil only when the mode
// qualifies for the leaderboard.
type Result struct {
	Score     int                     `json:"score"`
	Total     int                     `json:"total"`
	Percent   float64                 `json:"percent"`
	Graded    bool                    `json:"graded"`
	Passed    bool                    `json:"passed"`
	Threshold float64                 `json:"threshold,omitempty"`
	Record    *domain.HighScoreRecord `json:"record,omitempty"`
}

// complete scores the session. Completion blocks until every question has
// been answered and the cursor has moved past the final question.
func (s *Session) complete(name string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateCompleted {
		return Result{}, domain.ErrSessionCompleted
	}
	if s.currentIndex != len(s.questions) || len(s.answers) != len(s.questions) {
		return Result{}, domain.ErrIncompleteSession
	}

	score := 0
	for _, q := range s.questions {
		if s.answers[q.ID] == q.CorrectOption {
			score++
		}
	}

	s.state = stateCompleted
	s.score = score
	s.playerName = name
	s.completedAt = s.now()

	res := Result{
		Score:     score,
		Total:     len(s.questions),
		Threshold: s.rules.passThreshold,
	}
	if res.Total > 0 {
		res.Percent = float64(score) / float64(res.Total)
	}
	if s.rules.passThreshold > 0 {
		res.Graded = true
		res.Passed = res.Percent >= s.rules.passThreshold
	}
	return res, nil
}

// View is a read-only snapshot handed to transport layers.
type View struct {
	ID           string            `json:"sessionId"`
	Mode         domain.Mode       `json:"mode"`
	Questions    []domain.Question `json:"questions"`
	CurrentIndex int               `json:"currentIndex"`
	Truncated    bool              `json:"truncated"`
	Completed    bool              `json:"completed"`
}

func (s *Session) snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions := make([]domain.Question, len(s.questions))
	copy(questions, s.questions)
	return View{
		ID:           s.id,
		Mode:         s.mode,
		Questions:    questions,
		CurrentIndex: s.currentIndex,
		Truncated:    s.truncated,
		Completed:    s.state == stateCompleted,
	}
}

// StripAnswers blanks correct options before a view leaves the server.
// Correctness reaches clients only through submit feedback and completion
// results.
func (v View) StripAnswers() View {
	questions := make([]domain.Question, len(v.Questions))
	copy(questions, v.Questions)
	for i := range questions {
		questions[i].CorrectOption = ""
	}
	v.Questions = questions
	return v
}

// Certificate is the completion hand-off for the certificate view.
type Certificate struct {
	Name        string      `json:"name"`
	Mode        domain.Mode `json:"mode"`
	Score       int         `json:"score"`
	Total       int         `json:"total"`
	Percent     float64     `json:"percent"`
	Passed      bool        `json:"passed"`
	CompletedAt time.Time   `json:"completedAt"`
}

func (s *Session) certificate() (Certificate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateCompleted {
		return Certificate{}, false
	}
	cert := Certificate{
		Name:        s.playerName,
		Mode:        s.mode,
		Score:       s.score,
		Total:       len(s.questions),
		CompletedAt: s.completedAt,
	}
	if cert.Total > 0 {
		cert.Percent = float64(cert.Score) / float64(cert.Total)
	}
	if s.rules.passThreshold > 0 {
		cert.Passed = cert.Percent >= s.rules.passThreshold
	}
	return cert, true
}
