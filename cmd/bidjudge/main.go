package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/api/ops"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/lifecycle"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/cache"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/notification"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/telemetry"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/warehouse"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/metrics"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/service/judgment"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to configuration file")
		refDate    = flag.String("date", "", "reference date (YYYY-MM-DD), defaults to today")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, *refDate, logger); err != nil {
		logger.Error("bidjudge failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, refDate string, logger *slog.Logger) error {
	logger.Info("starting bidjudge",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"warehouse_driver", cfg.Warehouse.Driver,
		"entities", len(cfg.Judgment.Entities))

	referenceDate := time.Now().UTC()
	if refDate != "" {
		parsed, err := time.Parse("2006-01-02", refDate)
		if err != nil {
			return fmt.Errorf("parsing -date: %w", err)
		}
		referenceDate = parsed
	}

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "bidjudge",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Enabled:        cfg.Telemetry.Enabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRate:     cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	zapLogger, err := newZapLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("creating infrastructure logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	store, closeStore, err := warehouse.New(ctx, cfg.Warehouse, zapLogger)
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer closeStore()

	var judgmentCache judgment.JudgmentCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis, zapLogger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisCache.Close() }()
		judgmentCache = redisCache
	}

	var notifier judgment.Notifier = notification.NopNotifier{}
	if cfg.Notification.Enabled {
		notifier = notification.NewWebhookNotifier(cfg.Notification, zapLogger)
	}

	registry, err := metrics.NewRegistry("bidjudge")
	if err != nil {
		return fmt.Errorf("creating metrics registry: %w", err)
	}

	classifier, err := buildClassifier(cfg.Judgment)
	if err != nil {
		return err
	}

	judge := defense.NewJudge(defense.WithThresholds(cfg.Judgment.Thresholds))

	svc := judgment.NewService(store, classifier, judgmentCache, notifier, registry, judge, logger, judgment.Config{
		Window:        cfg.Window(),
		GuardLimits:   cfg.Judgment.UpGuard,
		CacheTTL:      cfg.Judgment.CacheTTL,
		MaxConcurrent: cfg.Judgment.MaxConcurrent,
	})

	opsServer := ops.NewServer(cfg.Ops.Addr, cfg.Version, zapLogger)
	opsErr := make(chan error, 1)
	go func() { opsErr <- opsServer.Start() }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown failed", "error", err)
		}
	}()

	reqs := make([]*judgment.JudgeRequest, 0, len(cfg.Judgment.Entities))
	for _, e := range cfg.Judgment.Entities {
		entityType, ok := performance.ParseEntityType(e.EntityType)
		if !ok {
			return fmt.Errorf("entity %s: unknown entity type %q", e.EntityID, e.EntityType)
		}
		reqs = append(reqs, &judgment.JudgeRequest{
			Entity: performance.EntityRef{
				ASIN:       e.ASIN,
				EntityID:   e.EntityID,
				EntityType: entityType,
			},
			TargetACOS:    e.TargetACOS,
			TargetCPA:     values.NewMoneyFromFloat(e.TargetCPA),
			ReferenceDate: referenceDate,
		})
	}

	judgments, err := svc.JudgeBatch(ctx, reqs)
	if err != nil {
		return fmt.Errorf("judging batch: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	var failed int
	for _, j := range judgments {
		if j.Err != "" {
			failed++
		}
		if err := enc.Encode(j); err != nil {
			return fmt.Errorf("writing judgment: %w", err)
		}
	}

	select {
	case err := <-opsErr:
		if err != nil {
			return fmt.Errorf("ops server: %w", err)
		}
	default:
	}

	logger.Info("batch complete",
		"judged", len(judgments),
		"failed", failed)
	return nil
}

func newZapLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildClassifier(cfg config.JudgmentConfig) (*lifecycle.StaticClassifier, error) {
	fallback := lifecycle.StateSteady
	if cfg.DefaultLifecycleState != "" {
		parsed, err := lifecycle.ParseState(cfg.DefaultLifecycleState)
		if err != nil {
			return nil, fmt.Errorf("default lifecycle state: %w", err)
		}
		fallback = parsed
	}

	states := make(map[string]lifecycle.State, len(cfg.LifecycleStates))
	for asin, raw := range cfg.LifecycleStates {
		parsed, err := lifecycle.ParseState(raw)
		if err != nil {
			return nil, fmt.Errorf("lifecycle state for %s: %w", asin, err)
		}
		states[asin] = parsed
	}

	return lifecycle.NewStaticClassifier(states, fallback), nil
}
