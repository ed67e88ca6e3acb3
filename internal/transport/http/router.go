package http

import (
	"context"
	"net/http"

	"cemap-quiz-service/internal/access"
	"cemap-quiz-service/internal/auth"
	"cemap-quiz-service/internal/cache"
	"cemap-quiz-service/internal/domain"
	"cemap-quiz-service/internal/leaderboard"
	"cemap-quiz-service/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RatingStore is the append-only satisfaction-ratings list.
type RatingStore interface {
	Append(ctx context.Context, rating domain.SatisfactionRating) error
	List(ctx context.Context) ([]domain.SatisfactionRating, error)
}

// Deps collects the services the router exposes. Gateway is optional; when
// set it takes every request the API routes do not claim.
type Deps struct {
	Quiz        *quiz.Service
	Leaderboard *leaderboard.Aggregator
	Gate        *access.Gate
	Auth        *auth.Service
	Ratings     RatingStore
	Gateway     *cache.Gateway
}

// NewRouter assembles the REST surface plus the cache-control channel.
func NewRouter(deps Deps) http.Handler {
	api := &api{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", api.questions)
		r.Get("/topics", api.topics)
		r.Get("/all-topics", api.allTopics)
		r.Get("/high-scores", api.highScores)
		r.Get("/all-time-high-score", api.allTimeHighScore)
		r.Post("/verify-payment", api.verifyPayment)
		r.Get("/access", api.checkAccess)
		r.Post("/register", api.register)
		r.Post("/login", api.login)
		r.Post("/ratings", api.appendRating)
		r.Get("/ratings", api.listRatings)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", api.startSession)
			r.Post("/{sessionID}/answers", api.submitAnswer)
			r.Post("/{sessionID}/advance", api.advance)
			r.Post("/{sessionID}/complete", api.complete)
			r.Get("/{sessionID}/certificate", api.certificate)
			r.Delete("/{sessionID}", api.discardSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)
			r.Get("/me", api.me)
		})
	})

	if deps.Gateway != nil {
		control := NewControlHandler(deps.Gateway)
		r.Get("/sw/channel", control.ServeWS)
		r.NotFound(deps.Gateway.ServeHTTP)
	}

	return r
}
