package redis

import (
	"context"
	"testing"
	"time"

	"cemap-quiz-service/internal/domain"
)

func TestRatingStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := NewRatingStore(newTestClient(t))

	ratings, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ratings) != 0 {
		t.Fatalf("expected empty list, got %+v", ratings)
	}

	ts := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		err := store.Append(ctx, domain.SatisfactionRating{
			Rating:        i,
			QuestionIndex: i * 5,
			Timestamp:     ts.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	ratings, err = store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ratings) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(ratings))
	}
	// Append order is preserved.
	for i, rating := range ratings {
		if rating.Rating != i+1 || rating.QuestionIndex != (i+1)*5 {
			t.Fatalf("rating %d out of order: %+v", i, rating)
		}
	}
}
