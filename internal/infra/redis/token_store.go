package redis

import (
	"context"
	"errors"
	"fmt"

	"cemap-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists entitlement tokens in Redis, one key per scope, no
// expiry: a purchase does not lapse.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Save(ctx context.Context, scope domain.EntitlementScope, token string) error {
	if err := s.client.Set(ctx, s.key(scope), token, 0).Err(); err != nil {
		return fmt.Errorf("save %s token: %w", scope, err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, scope domain.EntitlementScope) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s token: %w", scope, err)
	}
	return token, true, nil
}

func (s *TokenStore) key(scope domain.EntitlementScope) string {
	return "entitlement:" + string(scope)
}
