package judgment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/lifecycle"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// Service runs attribution-aware defense judgments for advertising entities
type Service interface {
	// JudgeEntity fetches the entity's daily performance, builds windowed
	// metrics, and runs the defense cascade plus the up-path guard.
	JudgeEntity(ctx context.Context, req *JudgeRequest) (*EntityJudgment, error)
	// JudgeBatch evaluates many entities concurrently. Per-entity failures
	// are reported on the judgment, not returned as a batch error.
	JudgeBatch(ctx context.Context, reqs []*JudgeRequest) ([]*EntityJudgment, error)
}

// JudgeRequest identifies one entity to judge and its campaign economics
type JudgeRequest struct {
	Entity     performance.EntityRef
	TargetACOS float64
	TargetCPA  values.Money
	// ReferenceDate defaults to time.Now when zero
	ReferenceDate time.Time
}

// EntityJudgment is the service-level result envelope around the engine's
// output, consumed by the apply-recommendation pipeline and the audit trail.
type EntityJudgment struct {
	RunID          uuid.UUID                `json:"run_id"`
	Entity         performance.EntityRef    `json:"entity"`
	LifecycleState lifecycle.State          `json:"lifecycle_state"`
	Defense        defense.Result           `json:"defense"`
	UpGuard        defense.StableRatioResult `json:"up_guard"`
	Metrics        performance.AttributionAwareMetrics `json:"metrics"`
	JudgedAt       time.Time                `json:"judged_at"`
	FromCache      bool                     `json:"from_cache"`
	Err            string                   `json:"error,omitempty"`
	// ErrRetryable marks failures worth re-running, e.g. warehouse
	// timeouts as opposed to bad requests
	ErrRetryable bool `json:"error_retryable,omitempty"`
}

// PerformanceRepository supplies raw daily rows from the warehouse
type PerformanceRepository interface {
	FetchDailyPerformance(ctx context.Context, entity performance.EntityRef, from, to time.Time) ([]performance.DailyPerformance, error)
}

// LifecycleClassifier supplies the product's lifecycle state
type LifecycleClassifier interface {
	Classify(ctx context.Context, asin string) (lifecycle.State, error)
}

// JudgmentCache stores recent judgments keyed by entity
type JudgmentCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Notifier forwards severe (STOP/NEG) recommendations to the alert channel
type Notifier interface {
	NotifyDefenseAction(ctx context.Context, entity performance.EntityRef, action defense.Action, reasonDetail string) error
}

// MetricsCollector records judgment telemetry
type MetricsCollector interface {
	RecordJudgment(ctx context.Context, action defense.Action, reason defense.ReasonCode, duration time.Duration)
	RecordCacheLookup(ctx context.Context, hit bool)
	RecordWarehouseFetch(ctx context.Context, rows int, duration time.Duration)
}
