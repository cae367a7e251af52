package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tatweerlabs/tahlil/api"
	"github.com/tatweerlabs/tahlil/db"
	"github.com/tatweerlabs/tahlil/internal/config"
	"github.com/tatweerlabs/tahlil/internal/genai"
	"github.com/tatweerlabs/tahlil/internal/knowledge"
	"github.com/tatweerlabs/tahlil/internal/log"
	"github.com/tatweerlabs/tahlil/internal/rag"
	"github.com/tatweerlabs/tahlil/internal/reranker"
	"github.com/tatweerlabs/tahlil/internal/session"
)

// runServe wires the full pipeline and serves the HTTP API until SIGINT or
// SIGTERM.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("starting tahlil", "version", Version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	gemini, err := genai.New(ctx,
		genai.WithEmbedModel(cfg.EmbedderModel),
		genai.WithGenModel(cfg.GenModel),
		genai.WithEmbedDim(cfg.EmbedDim),
		genai.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("initializing Gemini client: %w", err)
	}

	scorer, err := reranker.New(cfg.RerankerURL,
		reranker.WithModel(cfg.RerankerModel),
		reranker.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("initializing reranker client: %w", err)
	}

	index := knowledge.New(pool, logger)
	sessions := session.NewStore()

	pipeline, err := rag.New(rag.Options{
		Embedder:  gemini,
		Index:     index,
		Scorer:    scorer,
		Generator: gemini,
		Sessions:  sessions,
		Config:    cfg.PipelineConfig(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	server, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Analyst:     pipeline,
		Sessions:    sessions,
		Pinger:      pool,
		Counter:     index,
		HealthFlags: map[string]bool{
			"gemini":   os.Getenv("GEMINI_API_KEY") != "",
			"reranker": cfg.RerankerURL != "",
		},
		CORSOrigins: cfg.CORSOrigins,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	return server.Run(ctx, cfg.Addr(), logger)
}

// runMigrate applies pending migrations and exits.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	// DEBUG overrides the configured level, handy for one-off runs.
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}
