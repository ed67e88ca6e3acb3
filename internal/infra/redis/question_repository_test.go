package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"cemap-quiz-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

// countingSource tracks how often the backing store gets hit.
type countingSource struct {
	mu        sync.Mutex
	calls     int
	questions []domain.Question
}

func (s *countingSource) Questions(_ context.Context, topic string) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if topic == "" {
		return s.questions, nil
	}
	var out []domain.Question
	for _, q := range s.questions {
		if q.Topic == topic {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *countingSource) Topics(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []string{"Law", "Regulation"}, nil
}

func (s *countingSource) AllTopics(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []string{"Affordability", "Law", "Regulation"}, nil
}

func (s *countingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Topic: "Regulation", Text: "First", Options: []string{"a", "b", "c", "d"}, CorrectOption: domain.OptionA},
		{ID: "q2", Topic: "Law", Text: "Second", Options: []string{"a", "b", "c", "d"}, CorrectOption: domain.OptionB},
	}
}

func TestQuestionsCachedAfterFirstLoad(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{questions: sampleQuestions()}
	repo := NewQuestionRepository(newTestClient(t), source, time.Minute)

	first, err := repo.Questions(ctx, "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(first))
	}
	if source.callCount() != 1 {
		t.Fatalf("expected one source hit, got %d", source.callCount())
	}

	second, err := repo.Questions(ctx, "")
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if len(second) != 2 || second[0].ID != first[0].ID {
		t.Fatalf("cached pool diverged: %+v", second)
	}
	if source.callCount() != 1 {
		t.Fatalf("second load should come from cache, source hit %d times", source.callCount())
	}
}

func TestQuestionsCachedPerTopic(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{questions: sampleQuestions()}
	repo := NewQuestionRepository(newTestClient(t), source, time.Minute)

	pool, err := repo.Questions(ctx, "Law")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(pool) != 1 || pool[0].Topic != "Law" {
		t.Fatalf("unexpected topic pool %+v", pool)
	}

	// A different topic is a separate cache entry.
	if _, err := repo.Questions(ctx, "Regulation"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected two source hits for two topics, got %d", source.callCount())
	}
}

func TestTopicListsCached(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{questions: sampleQuestions()}
	repo := NewQuestionRepository(newTestClient(t), source, time.Minute)

	topics, err := repo.Topics(ctx)
	if err != nil {
		t.Fatalf("topics failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("unexpected topics %v", topics)
	}
	if _, err := repo.Topics(ctx); err != nil {
		t.Fatalf("cached topics failed: %v", err)
	}
	if source.callCount() != 1 {
		t.Fatalf("topics should be cached, source hit %d times", source.callCount())
	}

	all, err := repo.AllTopics(ctx)
	if err != nil {
		t.Fatalf("alltopics failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unexpected all-topics %v", all)
	}
}
