package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"cemap-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const ratingsKey = "ratings"

// RatingStore keeps the satisfaction-ratings list in Redis. RPUSH preserves
// the append-only contract.
type RatingStore struct {
	client *redis.Client
}

func NewRatingStore(client *redis.Client) *RatingStore {
	return &RatingStore{client: client}
}

func (s *RatingStore) Append(ctx context.Context, rating domain.SatisfactionRating) error {
	raw, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("encode rating: %w", err)
	}
	if err := s.client.RPush(ctx, ratingsKey, raw).Err(); err != nil {
		return fmt.Errorf("append rating: %w", err)
	}
	return nil
}

func (s *RatingStore) List(ctx context.Context) ([]domain.SatisfactionRating, error) {
	raw, err := s.client.LRange(ctx, ratingsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	ratings := make([]domain.SatisfactionRating, 0, len(raw))
	for _, item := range raw {
		var rating domain.SatisfactionRating
		if err := json.Unmarshal([]byte(item), &rating); err != nil {
			return nil, fmt.Errorf("decode rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, nil
}
