package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cemap-quiz-service/internal/cache"

	"github.com/redis/go-redis/v9"
)

const namespaceIndex = "cache:namespaces"

// CacheStore backs the offline cache layer with Redis. Entries are JSON
// blobs written with plain SET, so every update is a wholesale last-writer-
// wins overwrite. Namespace membership is tracked in side sets to make
// generation garbage-collection cheap.
type CacheStore struct {
	client *redis.Client
}

func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func (s *CacheStore) Get(ctx context.Context, namespace, key string) (cache.Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.entryKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return cache.Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

func (s *CacheStore) Put(ctx context.Context, namespace, key string, entry cache.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.entryKey(namespace, key), raw, 0)
	pipe.SAdd(ctx, s.keyIndex(namespace), key)
	pipe.SAdd(ctx, namespaceIndex, namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *CacheStore) Namespaces(ctx context.Context) ([]string, error) {
	namespaces, err := s.client.SMembers(ctx, namespaceIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list cache namespaces: %w", err)
	}
	return namespaces, nil
}

func (s *CacheStore) DropNamespace(ctx context.Context, namespace string) error {
	keys, err := s.client.SMembers(ctx, s.keyIndex(namespace)).Result()
	if err != nil {
		return fmt.Errorf("list %s keys: %w", namespace, err)
	}
	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, s.entryKey(namespace, key))
	}
	pipe.Del(ctx, s.keyIndex(namespace))
	pipe.SRem(ctx, namespaceIndex, namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("drop namespace %s: %w", namespace, err)
	}
	return nil
}

func (s *CacheStore) Clear(ctx context.Context) error {
	namespaces, err := s.Namespaces(ctx)
	if err != nil {
		return err
	}
	for _, ns := range namespaces {
		if err := s.DropNamespace(ctx, ns); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheStore) entryKey(namespace, key string) string {
	return "cache:" + namespace + ":" + key
}

func (s *CacheStore) keyIndex(namespace string) string {
	return "cache:" + namespace + ":keys"
}
