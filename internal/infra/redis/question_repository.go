package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"cemap-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionSource loads question pools from a backing store (Postgres, a
// static bank, etc).
type QuestionSource interface {
	Questions(ctx context.Context, topic string) ([]domain.Question, error)
	Topics(ctx context.Context) ([]string, error)
	AllTopics(ctx context.Context) ([]string, error)
}

// QuestionRepository caches question pools in Redis as JSON blobs and falls
// back to the source on cache miss. Pools are keyed per topic:
// SET questions:pool:{topic} -> [Question...]
type QuestionRepository struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Questions(ctx context.Context, topic string) ([]domain.Question, error) {
	key := r.poolKey(topic)

	var cached []domain.Question
	if r.readJSON(ctx, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var again []domain.Question
		if r.readJSON(ctx, key, &again) && len(again) > 0 {
			return again, nil
		}

		pool, err := r.source.Questions(ctx, topic)
		if err != nil {
			return nil, err
		}
		r.writeJSON(ctx, key, pool)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) Topics(ctx context.Context) ([]string, error) {
	return r.topicList(ctx, "questions:topics", r.source.Topics)
}

func (r *QuestionRepository) AllTopics(ctx context.Context) ([]string, error) {
	return r.topicList(ctx, "questions:alltopics", r.source.AllTopics)
}

func (r *QuestionRepository) topicList(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	var cached []string
	if r.readJSON(ctx, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		var again []string
		if r.readJSON(ctx, key, &again) && len(again) > 0 {
			return again, nil
		}
		topics, err := load(ctx)
		if err != nil {
			return nil, err
		}
		r.writeJSON(ctx, key, topics)
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *QuestionRepository) readJSON(ctx context.Context, key string, v interface{}) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (r *QuestionRepository) writeJSON(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	// best-effort: a failed cache write only costs the next caller a reload
	_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
}

func (r *QuestionRepository) poolKey(topic string) string {
	if topic == "" {
		topic = "all"
	}
	return "questions:pool:" + topic
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
