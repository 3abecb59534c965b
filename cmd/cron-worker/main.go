package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isaiahriv1234/Freight-Project/internal/cron"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/internal/ratequote"
	"github.com/isaiahriv1234/Freight-Project/internal/reports"
	"github.com/isaiahriv1234/Freight-Project/pkg/bigquery"
	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/metrics"
	"github.com/isaiahriv1234/Freight-Project/pkg/migrate"
	"github.com/isaiahriv1234/Freight-Project/pkg/pubsub"
	"github.com/isaiahriv1234/Freight-Project/pkg/redis"
)

const lockNameFormat = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run a single analysis cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	engine, err := orchestrator.FromConfig(cfg, quotes, logg, metrics.NewAnalysisMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logg.Error(context.Background(), "failed to create analysis engine", err)
		os.Exit(1)
	}

	sinks, closeSinks, err := reportSinks(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap report sinks", err)
		os.Exit(1)
	}
	defer closeSinks()

	publisher, err := reports.NewPublisher(logg, sinks...)
	if err != nil {
		logg.Error(context.Background(), "failed to create report publisher", err)
		os.Exit(1)
	}

	job, err := cron.NewAnalysisJob(cron.AnalysisJobParams{
		Ledger:    ledgerService,
		Engine:    engine,
		Publisher: publisher,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analysis job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockName(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(job)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewWorkerMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"sinks":       len(sinks),
		"jobs":        registry.Names(),
	})

	if *once {
		logg.Info(ctx, "running single analysis cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "analysis cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// reportSinks connects Pub/Sub and BigQuery when a GCP project is configured.
func reportSinks(ctx context.Context, cfg *config.Config, logg *logger.Logger) ([]reports.Sink, func(), error) {
	noop := func() {}
	if !cfg.ReportingEnabled() {
		logg.Warn(ctx, "gcp project not configured, reports will not be published")
		return nil, noop, nil
	}

	psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, noop, fmt.Errorf("pubsub: %w", err)
	}
	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		_ = psClient.Close()
		return nil, noop, fmt.Errorf("bigquery: %w", err)
	}

	closeAll := func() {
		if err := psClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
		if err := bqClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery", err)
		}
	}

	psSink, err := reports.NewPubSubSink(psClient)
	if err != nil {
		closeAll()
		return nil, noop, err
	}
	bqSink, err := reports.NewBigQuerySink(bqClient)
	if err != nil {
		closeAll()
		return nil, noop, err
	}
	return []reports.Sink{psSink, bqSink}, closeAll, nil
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}
