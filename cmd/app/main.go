// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"care-compass/internal/config"
	"care-compass/internal/domain/ports/adapter"
	"care-compass/internal/domain/ports/repository"
	aiAdapters "care-compass/internal/infra/adapters/ai"
	pg "care-compass/internal/infra/db/postgres"
	"care-compass/internal/infra/logging"
	"care-compass/internal/infra/memory"
	"care-compass/internal/infra/metrics"
	red "care-compass/internal/infra/redis"
	"care-compass/internal/infra/sched"
	"care-compass/internal/infra/web"
	"care-compass/internal/infra/worker"
	"care-compass/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop model, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Session locks ----
	locks := memory.NewKeyedLocker()

	// ---- Redis (optional: session durability + rate limiting) ----
	var (
		sessions repository.SessionStore
		limiter  web.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		sessions = red.NewSessionStore(redisClient, cfg.Chat.SessionTimeout.Duration)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("redis session store enabled")
	} else {
		sessions = memory.NewSessionStore(cfg.Chat.SessionTimeout.Duration, locks)
		logger.Info().Msg("in-memory session store enabled")
	}

	// ---- Postgres (optional: clinic directory) ----
	var clinicUC usecase.ClinicUseCase
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		clinicRepo := pg.NewClinicRepo(pool)
		if err := clinicRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("clinic schema: %v", err)
		}
		clinicUC = usecase.NewClinicUseCase(clinicRepo, logger)
		logger.Info().Msg("clinic directory enabled")
	} else {
		logger.Warn().Msg("no database configured, clinic endpoints disabled")
	}

	// ---- Model client (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.ModelClient
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiClient(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("model client: gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("openai client: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("model client: openai")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopClient(logger)
		logger.Warn().Msg("model client: noop (dev)")
	default:
		log.Fatalf("no model provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}
	ai = aiAdapters.NewLimitedClient(ai, cfg.AI.ConcurrentLimit)

	chatUC := usecase.NewChatUseCase(sessions, locks, ai, cfg.AI.RequestTimeout.Duration, logger)

	// ---- Background workers ----
	pool := worker.NewPool(4, logger)
	pool.Start(ctx)
	defer pool.Stop()

	sweeper := sched.NewSweepWorker(cfg.Chat.SweepInterval.Duration, chatUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- HTTP server ----
	server := web.NewServer(chatUC, clinicUC, limiter, cfg.Chat.RatePerMinute, ai.GetModelInfo().Name, pool, cfg.Server.Port, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
