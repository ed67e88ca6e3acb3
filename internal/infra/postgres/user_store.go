package postgres

import (
	"context"
	"errors"
	"fmt"

	"cemap-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore persists accounts in Postgres.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, user.Hash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.one(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email=$1`, email)
}

func (s *UserStore) ByID(ctx context.Context, id string) (domain.User, bool, error) {
	return s.one(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id=$1`, id)
}

func (s *UserStore) one(ctx context.Context, query string, arg interface{}) (domain.User, bool, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.Hash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load user: %w", err)
	}
	return user, true, nil
}
