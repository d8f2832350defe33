package judgment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/errors"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

// Config tunes the judgment service
type Config struct {
	Window        performance.WindowConfig
	GuardLimits   defense.StableRatioThresholds
	CacheTTL      time.Duration
	MaxConcurrent int
}

// DefaultConfig is the documented default instance
var DefaultConfig = Config{
	Window:        performance.DefaultWindowConfig,
	GuardLimits:   defense.DefaultStableRatioThresholds,
	CacheTTL:      6 * time.Hour,
	MaxConcurrent: 8,
}

// service implements the Service interface
type service struct {
	perfRepo   PerformanceRepository
	classifier LifecycleClassifier
	cache      JudgmentCache
	notifier   Notifier
	metrics    MetricsCollector
	judge      *defense.Judge
	logger     *slog.Logger
	cfg        Config

	now func() time.Time
}

// NewService creates a judgment service. cache, notifier, and metrics may be
// nil; the corresponding step is skipped.
func NewService(
	perfRepo PerformanceRepository,
	classifier LifecycleClassifier,
	cache JudgmentCache,
	notifier Notifier,
	metrics MetricsCollector,
	judge *defense.Judge,
	logger *slog.Logger,
	cfg Config,
) Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig.MaxConcurrent
	}
	if cfg.Window.TotalDays <= 0 {
		cfg.Window = DefaultConfig.Window
	}
	if judge == nil {
		judge = defense.NewJudge()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		perfRepo:   perfRepo,
		classifier: classifier,
		cache:      cache,
		notifier:   notifier,
		metrics:    metrics,
		judge:      judge,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// JudgeEntity evaluates one entity end to end
func (s *service) JudgeEntity(ctx context.Context, req *JudgeRequest) (*EntityJudgment, error) {
	if req == nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", "request cannot be nil")
	}
	if req.Entity.EntityID == "" {
		return nil, errors.NewValidationError("INVALID_REQUEST", "entity id is required")
	}

	start := s.now()
	referenceDate := req.ReferenceDate
	if referenceDate.IsZero() {
		referenceDate = start
	}

	cacheKey := s.cacheKey(req.Entity, referenceDate)
	if s.cache != nil {
		var cached EntityJudgment
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "judgment cache lookup failed",
				slog.String("entity_id", req.Entity.EntityID),
				slog.String("error", err.Error()))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, hit)
		}
		if hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	from := referenceDate.AddDate(0, 0, -s.cfg.Window.TotalDays)
	fetchStart := s.now()
	rows, err := s.perfRepo.FetchDailyPerformance(ctx, req.Entity, from, referenceDate)
	if err != nil {
		return nil, errors.NewExternalError("warehouse", "failed to fetch daily performance").WithCause(err)
	}
	if s.metrics != nil {
		s.metrics.RecordWarehouseFetch(ctx, len(rows), s.now().Sub(fetchStart))
	}

	state, err := s.classifier.Classify(ctx, req.Entity.ASIN)
	if err != nil {
		return nil, errors.NewExternalError("lifecycle", "failed to classify lifecycle state").WithCause(err)
	}

	metrics := performance.BuildWindowedMetrics(req.Entity, rows, referenceDate, s.cfg.Window, req.TargetCPA)
	result := s.judge.Judge(metrics, req.TargetACOS, state)
	upGuard := defense.CheckStableRatioForUp(metrics, s.cfg.GuardLimits)

	judgment := &EntityJudgment{
		RunID:          uuid.New(),
		Entity:         req.Entity,
		LifecycleState: state,
		Defense:        result,
		UpGuard:        upGuard,
		Metrics:        metrics,
		JudgedAt:       s.now(),
	}

	s.logger.InfoContext(ctx, "defense judgment complete",
		slog.String("entity_id", req.Entity.EntityID),
		slog.String("entity_type", req.Entity.EntityType.String()),
		slog.String("lifecycle_state", state.String()),
		slog.String("action", result.RecommendedAction.String()),
		slog.String("reason_code", string(result.ReasonCode)),
		slog.Bool("recent_good", result.RecentPerformanceGood))

	if s.metrics != nil {
		s.metrics.RecordJudgment(ctx, result.RecommendedAction, result.ReasonCode, s.now().Sub(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, judgment, s.cfg.CacheTTL); err != nil {
			s.logger.WarnContext(ctx, "judgment cache store failed",
				slog.String("entity_id", req.Entity.EntityID),
				slog.String("error", err.Error()))
		}
	}

	if s.notifier != nil && result.RecommendedAction.IsSevere() {
		if err := s.notifier.NotifyDefenseAction(ctx, req.Entity, result.RecommendedAction, result.ReasonDetail); err != nil {
			s.logger.WarnContext(ctx, "defense notification failed",
				slog.String("entity_id", req.Entity.EntityID),
				slog.String("error", err.Error()))
		}
	}

	return judgment, nil
}

// JudgeBatch fans the requests out over a bounded worker pool. Entity
// judgments are independent, so ordering between them does not matter; the
// returned slice preserves request order for the caller's convenience.
func (s *service) JudgeBatch(ctx context.Context, reqs []*JudgeRequest) ([]*EntityJudgment, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results := make([]*EntityJudgment, len(reqs))
	sem := make(chan struct{}, s.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *JudgeRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			judgment, err := s.JudgeEntity(ctx, req)
			if err != nil {
				entity := performance.EntityRef{}
				if req != nil {
					entity = req.Entity
				}
				judgment = &EntityJudgment{
					RunID:        uuid.New(),
					Entity:       entity,
					JudgedAt:     s.now(),
					Err:          err.Error(),
					ErrRetryable: errors.IsRetryable(err),
				}
			}
			results[i] = judgment
		}(i, req)
	}
	wg.Wait()

	return results, ctx.Err()
}

func (s *service) cacheKey(entity performance.EntityRef, referenceDate time.Time) string {
	return fmt.Sprintf("judgment:%s:%s:%s:%s",
		entity.ASIN, entity.EntityType, entity.EntityID,
		referenceDate.UTC().Format("2006-01-02"))
}
