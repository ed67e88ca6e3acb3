package memory

import (
	"context"
	"sync"
	"time"

	"cemap-quiz-service/internal/domain"
)

// ScoreStore keeps high-score records in memory. Append-only, per the
// record's contract.
type ScoreStore struct {
	mu      sync.RWMutex
	records []domain.HighScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) Append(_ context.Context, record domain.HighScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *ScoreStore) ScoresSince(_ context.Context, mode domain.Mode, since time.Time) ([]domain.HighScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.HighScoreRecord
	for _, rec := range s.records {
		if rec.Mode == mode && !rec.Timestamp.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *ScoreStore) Scores(_ context.Context, mode domain.Mode) ([]domain.HighScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.HighScoreRecord
	for _, rec := range s.records {
		if rec.Mode == mode {
			out = append(out, rec)
		}
	}
	return out, nil
}
