// Package auth handles registration, login and bearer-token verification.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cemap-quiz-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error
	ByEmail(ctx context.Context, email string) (domain.User, bool, error)
	ByID(ctx context.Context, id string) (domain.User, bool, error)
}

// Service issues and validates HS256 JWTs for registered users.
type Service struct {
	users UserStore
	hmac  []byte
	now   func() time.Time
}

func NewService(users UserStore, secret string) *Service {
	return &Service{users: users, hmac: []byte(secret), now: time.Now}
}

// Claims carried in the session token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Register validates input, hashes the password and stores the account.
// Validation failures are domain.ValidationError values naming the field.
func (s *Service) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return domain.User{}, domain.ValidationError{Field: "name", Message: "name is required"}
	}
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return domain.User{}, domain.ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if len(password) < 8 {
		return domain.User{}, domain.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	if _, exists, err := s.users.ByEmail(ctx, email); err != nil {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	} else if exists {
		return domain.User{}, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Hash:      string(hash),
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, ok, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("lookup email: %w", err)
	}
	if !ok {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)) != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

func (s *Service) issue(user domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "cemap-quiz-service",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmac)
}

// Parse validates a bearer token and returns its claims.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, _ := token.Claims.(*Claims)
	return claims, nil
}

// CurrentUser resolves the account behind a parsed token.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (domain.User, bool, error) {
	return s.users.ByID(ctx, claims.Subject)
}

// Middleware rejects requests without a valid bearer token and stashes the
// claims in the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := s.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

type contextKey struct{}

// WithClaims returns a context carrying parsed claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFrom extracts claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}
