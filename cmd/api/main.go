// Package main is the entry point for the deal feed API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/forkful/dealfeed/internal/api"
	"github.com/forkful/dealfeed/internal/auth"
	"github.com/forkful/dealfeed/internal/cache"
	"github.com/forkful/dealfeed/internal/config"
	"github.com/forkful/dealfeed/internal/health"
	"github.com/forkful/dealfeed/internal/middleware"
	"github.com/forkful/dealfeed/internal/ranking"
	"github.com/forkful/dealfeed/internal/store"
	"github.com/forkful/dealfeed/internal/tracing"
)

const serviceName = "dealfeed-api"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (env vars take precedence)")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Dealfeed API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Tracing (no-op provider when disabled)
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: "otlp-http",
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SamplingRate: 1.0,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Postgres
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	dealStore := store.NewDealStore(db)
	interactionStore := store.NewInteractionStore(db)
	blockStore := store.NewBlockStore(db)
	reportStore := store.NewReportStore(db)
	preferenceStore := store.NewPreferenceStore(db)

	// Redis is optional: without it the block gate reads straight from
	// Postgres on every request.
	var (
		blockSource  ranking.BlockSource = blockStore
		invalidator  api.BlockInvalidator
		redisChecker api.HealthChecker
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		blockCache := cache.NewBlockCache(blockStore, redisClient, logger)
		blockSource = blockCache
		invalidator = blockCache
		redisChecker = health.NewRedisChecker(redisClient)
	}

	// Ranking calibration overrides are best-effort; a bad file means
	// defaults, not a refused boot.
	rankingConfig, err := ranking.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		logger.Warn("running with default ranking configuration", "error", err)
	}
	rankingConfig.Debug = cfg.RankingDebug

	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}
	rankingMetrics := ranking.NewMetrics()
	if err := rankingMetrics.Register(registry); err != nil {
		logger.Error("failed to register ranking metrics", "error", err)
		os.Exit(1)
	}

	rankingService := ranking.NewService(rankingConfig, ranking.Sources{
		Deals:       dealStore,
		Blocks:      blockSource,
		Reports:     reportStore,
		Preferences: preferenceStore,
		Engagement:  interactionStore,
	},
		ranking.WithLogger(logger),
		ranking.WithMetrics(rankingMetrics),
	)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	router := api.NewRouter(api.RouterConfig{
		Ranking:     api.NewRankingHandlers(rankingService, cfg.DefaultMarket, cfg.Env != "production"),
		Deals:       api.NewDealHandlers(dealStore, interactionStore, reportStore),
		Moderation:  api.NewModerationHandlers(blockStore, reportStore, invalidator),
		Preferences: api.NewPreferenceHandlers(preferenceStore),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    health.NewDBChecker(db),
			RedisChecker: redisChecker,
		}),
		Logger:         logger,
		JWTService:     jwtService,
		Metrics:        httpMetrics,
		Registry:       registry,
		TracingEnabled: cfg.TracingEnabled,
		ServiceName:    serviceName,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}

	logger.Info("server stopped")
}
