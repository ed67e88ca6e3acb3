package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cemap-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts how live quiz sessions are tracked (in-memory,
// Redis-marked, etc).
type SessionRepository interface {
	Put(id string, session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuestionRepository loads question pools (from cache/backing store).
type QuestionRepository interface {
	// Questions returns the pool for a topic, or the whole bank when topic
	// is empty, in the store's declared order.
	Questions(ctx context.Context, topic string) ([]domain.Question, error)
	Topics(ctx context.Context) ([]string, error)
	AllTopics(ctx context.Context) ([]string, error)
}

// ScoreRepository receives completed-session records for the leaderboard.
type ScoreRepository interface {
	Append(ctx context.Context, record domain.HighScoreRecord) error
}

// Service drives quiz sessions from start to completion.
type Service struct {
	sessions  SessionRepository
	questions QuestionRepository
	scores    ScoreRepository
	now       func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(sessions SessionRepository, questions QuestionRepository, scores ScoreRepository) *Service {
	return NewServiceWithRand(sessions, questions, scores, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewServiceWithRand is test-friendly: deterministic sampling and timestamps.
func NewServiceWithRand(sessions SessionRepository, questions QuestionRepository, scores ScoreRepository, rnd *rand.Rand, now func() time.Time) *Service {
	return &Service{
		sessions:  sessions,
		questions: questions,
		scores:    scores,
		now:       now,
		rnd:       rnd,
	}
}

// Start constructs a session for a mode: samples the question set, registers
// the session and returns its initial snapshot.
func (s *Service) Start(ctx context.Context, mode domain.Mode, questionCount int, topicFilter string) (View, error) {
	if !mode.Valid() {
		return View{}, domain.ValidationError{Field: "mode", Message: "unknown quiz mode"}
	}

	questions, truncated, err := s.SampleQuestions(ctx, mode, questionCount, topicFilter)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	seed := s.rnd.Int63()
	s.mu.Unlock()

	session := newSession(uuid.New().String(), mode, rulesFor(mode, topicFilter), questions, truncated, seed, s.now)
	s.sessions.Put(session.ID(), session)
	return session.snapshot(), nil
}

// SampleQuestions applies the mode's sampling policy without creating a
// session. The bool result flags a pool smaller than the requested count.
func (s *Service) SampleQuestions(ctx context.Context, mode domain.Mode, questionCount int, topicFilter string) ([]domain.Question, bool, error) {
	pool, err := s.questions.Questions(ctx, topicFilter)
	if err != nil {
		return nil, false, err
	}

	rules := rulesFor(mode, topicFilter)
	count := questionCount
	if rules.fixedCount > 0 {
		count = rules.fixedCount
	}
	if count <= 0 {
		count = defaultPoolCount
	}

	if mode == domain.ModeScenario {
		return s.sampleScenario(pool, count)
	}
	return s.sampleFlat(pool, count)
}

// sampleFlat draws count distinct questions from the pool in random order,
// clamping to the pool size.
func (s *Service) sampleFlat(pool []domain.Question, count int) ([]domain.Question, bool, error) {
	if len(pool) == 0 {
		return nil, false, domain.ErrEmptyPool
	}

	picked := make([]domain.Question, len(pool))
	copy(picked, pool)

	s.mu.Lock()
	s.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	s.mu.Unlock()

	if count >= len(picked) {
		return picked, count > len(picked), nil
	}
	return picked[:count], false, nil
}

// sampleScenario selects whole scenario groups. Group order is shuffled but
// intra-group order follows the store's declared order, so the scenario
// context always precedes its questions.
func (s *Service) sampleScenario(pool []domain.Question, count int) ([]domain.Question, bool, error) {
	var order []string
	groups := make(map[string][]domain.Question)
	for _, q := range pool {
		if q.ScenarioGroupID == "" {
			continue
		}
		if _, ok := groups[q.ScenarioGroupID]; !ok {
			order = append(order, q.ScenarioGroupID)
		}
		groups[q.ScenarioGroupID] = append(groups[q.ScenarioGroupID], q)
	}
	if len(order) == 0 {
		return nil, false, domain.ErrEmptyPool
	}

	s.mu.Lock()
	s.rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	s.mu.Unlock()

	var selected []domain.Question
	for _, groupID := range order {
		if len(selected) >= count {
			break
		}
		selected = append(selected, groups[groupID]...)
	}
	return selected, len(selected) < count, nil
}

// SubmitAnswer records an answer; it never advances the cursor. Practice
// sessions reveal correctness immediately, exam and scenario do not.
func (s *Service) SubmitAnswer(sessionID, questionID, option string) (Feedback, error) {
	if !domain.ValidOption(option) {
		return Feedback{}, domain.ValidationError{Field: "option", Message: "option must be one of A-D"}
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Feedback{}, domain.ErrSessionNotFound
	}
	return session.submitAnswer(questionID, option)
}

// Advance moves the cursor forward and reports checkpoint signals.
func (s *Service) Advance(sessionID string) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.advance()
}

// Complete scores a fully answered session. Exam and scenario completions
// append a leaderboard record under the given name.
func (s *Service) Complete(ctx context.Context, sessionID, name string) (Result, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Result{}, domain.ErrSessionNotFound
	}

	if name == "" {
		name = "Anonymous"
	}
	result, err := session.complete(name)
	if err != nil {
		return Result{}, err
	}

	if session.rules.leaderboard {
		record := domain.HighScoreRecord{
			ID:        uuid.New().String(),
			Name:      name,
			Score:     result.Score,
			Total:     result.Total,
			Mode:      session.Mode(),
			Timestamp: s.now(),
		}
		if err := s.scores.Append(ctx, record); err != nil {
			return Result{}, err
		}
		result.Record = &record
	}
	return result, nil
}

// Certificate returns the completion summary for a finished session.
func (s *Service) Certificate(sessionID string) (Certificate, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Certificate{}, domain.ErrSessionNotFound
	}
	cert, done := session.certificate()
	if !done {
		return Certificate{}, domain.ErrIncompleteSession
	}
	return cert, nil
}

// Discard drops a session, completed or not. Navigating away destroys state.
func (s *Service) Discard(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Session exposes a snapshot of a live session.
func (s *Service) Session(sessionID string) (View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return View{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// Topics lists topics that currently hold standalone questions.
func (s *Service) Topics(ctx context.Context) ([]string, error) {
	return s.questions.Topics(ctx)
}

// AllTopics lists every topic in the bank, scenario topics included.
func (s *Service) AllTopics(ctx context.Context) ([]string, error) {
	return s.questions.AllTopics(ctx)
}
