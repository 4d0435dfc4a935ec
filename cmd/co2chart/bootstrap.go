package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"co2-chart/internal/logger"
	"co2-chart/internal/query"
	"co2-chart/internal/server"
	"co2-chart/internal/source"
	"co2-chart/internal/source/sourceobs"
	"co2-chart/internal/store"
	"co2-chart/internal/trace"
	"co2-chart/internal/types"
)

// initializeSystem initializes logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeQueries registers the emissions query against the configured
// source and starts the first fetch in the background.
func initializeQueries(ctx context.Context, cfg *store.Config) (*server.Records, error) {
	src, err := source.New(cfg)
	if err != nil {
		return nil, err
	}
	src = sourceobs.Wrap(src)

	q := query.New[[]types.DailyRecord](query.Options{
		StaleTime:  cfg.StaleTime(),
		Retry:      *cfg.Query.Retry,
		RetryDelay: cfg.RetryDelay(),
		GCTime:     cfg.GCTime(),
	})
	q.Register(cfg.Query.Key, source.Records(src))
	if err := q.Prefetch(cfg.Query.Key); err != nil {
		q.Close()
		return nil, err
	}

	logger.Info(ctx, "Query registered", "key", cfg.Query.Key, "source", src.Name(),
		"stale", cfg.StaleTime().String(), "retry", *cfg.Query.Retry)
	return q, nil
}

func newAccessLogger(cfg *store.Config) (*zap.Logger, error) {
	if cfg.Server.DevMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
