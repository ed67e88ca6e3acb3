package memory

import (
	"context"
	"sync"

	"cemap-quiz-service/internal/cache"
)

// CacheStore is an in-memory implementation of cache.Store.
type CacheStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]cache.Entry
}

func NewCacheStore() *CacheStore {
	return &CacheStore{namespaces: make(map[string]map[string]cache.Entry)}
}

func (s *CacheStore) Get(_ context.Context, namespace, key string) (cache.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.namespaces[namespace]
	if !ok {
		return cache.Entry{}, false, nil
	}
	entry, ok := entries[key]
	return entry, ok, nil
}

func (s *CacheStore) Put(_ context.Context, namespace, key string, entry cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.namespaces[namespace]
	if !ok {
		entries = make(map[string]cache.Entry)
		s.namespaces[namespace] = entries
	}
	entries[key] = entry
	return nil
}

func (s *CacheStore) Namespaces(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.namespaces))
	for ns := range s.namespaces {
		out = append(out, ns)
	}
	return out, nil
}

func (s *CacheStore) DropNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func (s *CacheStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaces = make(map[string]map[string]cache.Entry)
	return nil
}
