package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mockmate/internal/auth"
	"mockmate/internal/config"
	"mockmate/internal/evaluation"
	"mockmate/internal/handlers"
	"mockmate/internal/interviews"
	"mockmate/internal/jobs"
	"mockmate/internal/llm"
	_ "mockmate/internal/llm/anthropic"
	_ "mockmate/internal/llm/gemini"
	_ "mockmate/internal/llm/openai"
	"mockmate/internal/logger"
	"mockmate/internal/metrics"
	"mockmate/internal/preferences"
	"mockmate/internal/prompts"
	"mockmate/internal/repositories"
	mongostore "mockmate/internal/repositories/mongo"
	"mockmate/internal/repositories/sqldb"
	"mockmate/internal/routers"
	"mockmate/internal/session"
	"mockmate/internal/telemetry"
)

const startupTimeout = 15 * time.Second

// app holds the wired server and everything that must be released on shutdown.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	store     *repositories.Store
	redis     *redis.Client
	registry  *session.Registry
	sweeper   *jobs.SessionSweeper
	router    *chi.Mux
}

// openStore connects the configured persistence backend. SQL schemas are
// migrated and Mongo indexes ensured on open.
func openStore(ctx context.Context, cfg config.StoreConfig) (*repositories.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongostore.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		store, err := mongostore.NewStore(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare mongo collections: %w", err)
		}
		return store, nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqldb.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := sqldb.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return sqldb.NewStore(db), nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.NewLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &app{cfg: cfg, logger: log}
	log.Info("configuration loaded", zap.String("config", cfg.String()))

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if a.telemetry, err = telemetry.Init(startCtx, telemetry.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Headers:  cfg.Telemetry.Headers,
	}); err != nil {
		return nil, err
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}
	provider, err := llm.NewProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}

	if a.store, err = openStore(startCtx, cfg.Store); err != nil {
		a.close(ctx)
		return nil, err
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	themeStore := preferences.NewRedisStore(a.redis)
	if err := themeStore.Ping(startCtx); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	pipeline := evaluation.NewPipeline(provider, promptManager, log,
		evaluation.WithEvaluationTimeout(cfg.LLM.EvaluationTimeout),
		evaluation.WithGenerationTimeout(cfg.LLM.GenerationTimeout),
	)
	recorder := evaluation.NewRecorder(a.store.Answers, log)
	a.registry = session.NewRegistry(pipeline, recorder, cfg.Session.TTL, log)
	a.sweeper = jobs.NewSessionSweeper(a.registry, cfg.Session.SweepSchedule, log)

	interviewService := interviews.NewService(a.store.Interviews, a.store.Answers, pipeline, a.registry, log)

	health := handlers.NewHealthHandler(provider, promptManager, cfg, map[string]handlers.Pinger{
		"store": a.store.Ping,
		"redis": themeStore.Ping,
	})
	a.router = newRouter(cfg, health, routers.APIHandlers{
		Interviews:  handlers.NewInterviewHandler(interviewService, log),
		Sessions:    handlers.NewSessionHandler(interviewService, a.registry, cfg.CORSOrigins(), log),
		Preferences: handlers.NewPreferenceHandler(preferences.NewService(themeStore, log), log),
	})

	log.Info("server wired",
		zap.String("provider", provider.GetProviderName()),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("tracing", a.telemetry.Enabled()))
	return a, nil
}

func newRouter(cfg *config.Config, health *handlers.HealthHandler, api routers.APIHandlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, metrics.Middleware)

	routers.HealthRoutes(router, health)
	routers.APIRoutes(router, api, auth.RequireUser(cfg.JWT.Secret, nil), cfg.HTTP.RequestTimeout)
	return router
}

// close releases everything opened so far; safe on a partially built app.
func (a *app) close(ctx context.Context) {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.registry != nil {
		a.registry.CloseAll()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.store != nil && a.store.Close != nil {
		if err := a.store.Close(ctx); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) server() *http.Server {
	return &http.Server{
		Addr:              a.cfg.ServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// stop requests wait on the evaluation
		WriteTimeout: a.cfg.HTTP.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
