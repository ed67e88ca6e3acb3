package memory

import (
	"context"
	"sync"

	"cemap-quiz-service/internal/domain"
)

// RatingStore is an append-only list of satisfaction ratings.
type RatingStore struct {
	mu      sync.RWMutex
	ratings []domain.SatisfactionRating
}

func NewRatingStore() *RatingStore {
	return &RatingStore{}
}

func (s *RatingStore) Append(_ context.Context, rating domain.SatisfactionRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = append(s.ratings, rating)
	return nil
}

func (s *RatingStore) List(_ context.Context) ([]domain.SatisfactionRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SatisfactionRating, len(s.ratings))
	copy(out, s.ratings)
	return out, nil
}
