package memory

import (
	"context"
	"sort"

	"cemap-quiz-service/internal/domain"
)

// QuestionBank is an in-memory question store (useful for tests/demos and
// when no database is configured). Declared order is preserved, which is
// what keeps scenario context ahead of its questions.
type QuestionBank struct {
	questions []domain.Question
}

func NewQuestionBank(questions []domain.Question) *QuestionBank {
	return &QuestionBank{questions: questions}
}

func (b *QuestionBank) Questions(_ context.Context, topic string) ([]domain.Question, error) {
	if topic == "" {
		out := make([]domain.Question, len(b.questions))
		copy(out, b.questions)
		return out, nil
	}
	var out []domain.Question
	for _, q := range b.questions {
		if q.Topic == topic {
			out = append(out, q)
		}
	}
	return out, nil
}

// Topics lists topics holding standalone (non-scenario) questions.
func (b *QuestionBank) Topics(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var topics []string
	for _, q := range b.questions {
		if q.ScenarioGroupID != "" || seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		topics = append(topics, q.Topic)
	}
	sort.Strings(topics)
	return topics, nil
}

// AllTopics lists every topic in the bank, scenario topics included.
func (b *QuestionBank) AllTopics(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var topics []string
	for _, q := range b.questions {
		if seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		topics = append(topics, q.Topic)
	}
	sort.Strings(topics)
	return topics, nil
}
