package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isaiahriv1234/Freight-Project/api/routes"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/internal/purchasing"
	"github.com/isaiahriv1234/Freight-Project/internal/ratequote"
	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/metrics"
	"github.com/isaiahriv1234/Freight-Project/pkg/migrate"
	"github.com/isaiahriv1234/Freight-Project/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.AutoRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	analysisMetrics := metrics.NewAnalysisMetrics(prometheus.DefaultRegisterer)

	var quotes orchestrator.QuoteSource
	if cfg.FeatureFlags.RealtimeRates {
		aggregator, err := ratequote.NewFromConfig(cfg.RateQuotes, logg,
			ratequote.WithCache(redisClient, cfg.RateQuotes.CacheTTL),
			ratequote.WithMetrics(metrics.NewQuoteMetrics(prometheus.DefaultRegisterer)),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create rate quote aggregator", err)
			os.Exit(1)
		}
		if aggregator.Providers() > 0 {
			quotes = aggregator
		}
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient, ledger.NewStore(), logg, cfg.Engine.ConsolidationWindowDays)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	if _, err := ledgerService.Refresh(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to load order ledger", err)
		os.Exit(1)
	}

	engine, err := orchestrator.FromConfig(cfg, quotes, logg, analysisMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create analysis engine", err)
		os.Exit(1)
	}
	runner, err := orchestrator.NewRunner(engine, ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create analysis runner", err)
		os.Exit(1)
	}

	policy, err := purchasing.PolicyFromConfig(cfg.Approval)
	if err != nil {
		logg.Error(context.Background(), "invalid approval policy", err)
		os.Exit(1)
	}
	purchasingService, err := purchasing.NewService(purchasing.ServiceParams{
		Repo:     purchasing.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Policy:   policy,
		Advisor:  runner,
		Discount: cfg.Engine.ConsolidationDiscount,
		Logger:   logg,
		Metrics:  analysisMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchasing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"realtime_quotes": quotes != nil,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			DB:         dbClient,
			Redis:      redisClient,
			Ledger:     ledgerService,
			Runner:     runner,
			Purchasing: purchasingService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
