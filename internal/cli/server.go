package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cemap-quiz-service/internal/access"
	"cemap-quiz-service/internal/auth"
	"cemap-quiz-service/internal/cache"
	"cemap-quiz-service/internal/config"
	"cemap-quiz-service/internal/infra/memory"
	pgstore "cemap-quiz-service/internal/infra/postgres"
	redisstore "cemap-quiz-service/internal/infra/redis"
	"cemap-quiz-service/internal/leaderboard"
	"cemap-quiz-service/internal/payment"
	"cemap-quiz-service/internal/quiz"
	transport "cemap-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Question bank: Postgres when configured, the built-in sample bank
	// otherwise, with a Redis pool cache layered on top when available.
	var source redisstore.QuestionSource = memory.NewQuestionBank(sampleQuestionBank())
	if pool != nil {
		source = pgstore.NewQuestionStore(pool)
	}
	var questions quiz.QuestionRepository = source
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, source, questionTTL)
	}

	var sessions quiz.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var scores quiz.ScoreRepository
	var scoreReader leaderboard.ScoreRepository
	if pool != nil {
		store := pgstore.NewScoreStore(pool)
		scores, scoreReader = store, store
	} else {
		store := memory.NewScoreStore()
		scores, scoreReader = store, store
	}

	var tokens access.TokenStore
	if redisClient != nil {
		tokens = redisstore.NewTokenStore(redisClient)
	} else {
		tokens = memory.NewTokenStore()
	}

	var ratings transport.RatingStore
	if redisClient != nil {
		ratings = redisstore.NewRatingStore(redisClient)
	} else {
		ratings = memory.NewRatingStore()
	}

	var users auth.UserStore
	if pool != nil {
		users = pgstore.NewUserStore(pool)
	} else {
		users = memory.NewUserStore()
	}

	var verifier access.Verifier
	if cfg.Payments.URL != "" {
		verifier = payment.NewClient(cfg.Payments.URL, cfg.Payments.APIKey)
	} else {
		log.Printf("no payment provider configured, using static dev grants")
		verifier = &payment.StaticVerifier{Grants: devGrants()}
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Printf("auth secret not configured, using development default")
	}

	quizService := quiz.NewService(sessions, questions, scores)
	aggregator := leaderboard.NewAggregator(scoreReader)
	gate := access.NewGate(tokens, verifier)
	authService := auth.NewService(users, secret)

	var gateway *cache.Gateway
	if cfg.Shell.Origin != "" {
		var cacheStore cache.Store
		if redisClient != nil {
			cacheStore = redisstore.NewCacheStore(redisClient)
		} else {
			cacheStore = memory.NewCacheStore()
		}
		version := cfg.Shell.Version
		if version == "" {
			version = "v1"
		}
		gateway = cache.NewGateway(cache.Config{
			Origin:    cfg.Shell.Origin,
			APIPrefix: cfg.Shell.APIPrefix,
			Version:   version,
			Manifest:  cfg.Shell.Manifest,
		}, cacheStore, nil)
		if err := gateway.Install(ctx); err != nil {
			// the shell origin may simply be down; serve API-only until it returns
			log.Printf("shell precache failed: %v", err)
		}
		if err := gateway.Activate(ctx); err != nil {
			log.Printf("gateway activate failed: %v", err)
		}
	}

	router := transport.NewRouter(transport.Deps{
		Quiz:        quizService,
		Leaderboard: aggregator,
		Gate:        gate,
		Auth:        authService,
		Ratings:     ratings,
		Gateway:     gateway,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting cemap quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// devGrants maps well-known test payment references to purchases; swap in a
// real provider URL in production config.
func devGrants() map[string]payment.Verification {
	return map[string]payment.Verification{
		"pi_dev_exam":     {Verified: true, AccessToken: "tok-exam-dev", PurchaseType: "exam"},
		"pi_dev_scenario": {Verified: true, AccessToken: "tok-scenario-dev", PurchaseType: "scenario"},
		"pi_dev_bundle":   {Verified: true, AccessToken: "tok-bundle-dev", PurchaseType: "bundle"},
	}
}
