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

	"github.com/web8-labs/ultrasearch/internal/analytics"
	"github.com/web8-labs/ultrasearch/internal/corpus"
	"github.com/web8-labs/ultrasearch/internal/engine/cache"
	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/internal/engine/query"
	"github.com/web8-labs/ultrasearch/internal/engine/tokenizer"
	"github.com/web8-labs/ultrasearch/internal/ingest"
	"github.com/web8-labs/ultrasearch/internal/server"
	"github.com/web8-labs/ultrasearch/pkg/config"
	"github.com/web8-labs/ultrasearch/pkg/health"
	"github.com/web8-labs/ultrasearch/pkg/kafka"
	"github.com/web8-labs/ultrasearch/pkg/logger"
	"github.com/web8-labs/ultrasearch/pkg/metrics"
	"github.com/web8-labs/ultrasearch/pkg/postgres"
	pkgredis "github.com/web8-labs/ultrasearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ultrasearch", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := index.NewStore(tokenizer.NewDefault(), cfg.Engine.NgramSize)
	engine := query.New(store, query.Config{
		FuzzyThreshold:  cfg.Engine.FuzzyThreshold,
		DefaultLimit:    cfg.Engine.DefaultLimit,
		MaxResults:      cfg.Engine.MaxResults,
		SuggestionLimit: cfg.Engine.SuggestionLimit,
	})

	var pgClient *postgres.Client
	if cfg.Postgres.Enabled {
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		loader := corpus.NewLoader(pgClient)
		count, err := loader.Load(ctx, store)
		if err != nil {
			slog.Error("corpus load failed", "error", err)
			os.Exit(1)
		}
		slog.Info("corpus loaded from postgres", "documents", count)
	} else if cfg.Engine.SeedSampleData {
		count := corpus.Seed(store)
		slog.Info("seed corpus indexed", "documents", count)
	}

	var m *metrics.Metrics
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.IndexedDocuments.Set(float64(store.TotalDocuments()))
		m.IndexedTerms.Set(float64(store.TermCountTotal()))
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, shared cache tier disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			slog.Info("shared cache tier enabled", "addr", cfg.Redis.Addr)
		}
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache = cache.New(cfg.Cache.Capacity, cfg.Cache.Retention, redisClient, m)
		slog.Info("query cache enabled",
			"capacity", cfg.Cache.Capacity,
			"retention", cfg.Cache.Retention,
		)
	}

	var collector *analytics.Collector
	var analyticsStats http.HandlerFunc
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

		aggregator := analytics.NewAggregator(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		go func() {
			if err := aggregator.Start(ctx); err != nil {
				slog.Error("analytics aggregator error", "error", err)
			}
		}()
		analyticsStats = analytics.NewHandler(aggregator).Stats
		slog.Info("analytics aggregator started")

		if cfg.Kafka.Topics.DocumentIngest != "" {
			var invalidator ingest.Invalidator
			if resultCache != nil {
				invalidator = resultCache
			}
			consumer := ingest.NewConsumer(cfg.Kafka, store, invalidator)
			go func() {
				if err := consumer.Start(ctx); err != nil {
					slog.Error("ingest consumer error", "error", err)
				}
			}()
			slog.Info("ingest consumer started", "topic", cfg.Kafka.Topics.DocumentIngest)
		}
	}

	checker := health.NewChecker()
	checker.Register("index_engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", store.TotalDocuments()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := server.NewHandler(engine, resultCache, collector, m, cfg.Engine.SearchTimeout)
	router := server.NewRouter(h, checker, m, cfg.Server.WriteTimeout, analyticsStats)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ultrasearch listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("ultrasearch stopped")
}
