package memory

import (
	"context"
	"sync"

	"cemap-quiz-service/internal/domain"
)

// TokenStore keeps entitlement tokens keyed by scope.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[domain.EntitlementScope]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[domain.EntitlementScope]string)}
}

func (s *TokenStore) Save(_ context.Context, scope domain.EntitlementScope, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[scope] = token
	return nil
}

func (s *TokenStore) Get(_ context.Context, scope domain.EntitlementScope) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[scope]
	return token, ok, nil
}
