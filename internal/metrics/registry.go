package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/defense"
)

// Registry holds the judgment-domain instruments. It satisfies the judgment
// service's MetricsCollector interface.
type Registry struct {
	meter metric.Meter

	JudgmentDuration  metric.Float64Histogram
	JudgmentCounter   metric.Int64Counter
	CacheLookups      metric.Int64Counter
	WarehouseFetches  metric.Int64Counter
	WarehouseRows     metric.Int64Counter
	WarehouseDuration metric.Float64Histogram
}

// NewRegistry creates a registry backed by the global meter provider.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	var err error
	r.JudgmentDuration, err = meter.Float64Histogram(
		"bidjudge.judgment.duration",
		metric.WithDescription("End-to-end duration of one defense judgment in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	r.JudgmentCounter, err = meter.Int64Counter(
		"bidjudge.judgment.total",
		metric.WithDescription("Judgments by recommended action and reason code"),
	)
	if err != nil {
		return nil, err
	}

	r.CacheLookups, err = meter.Int64Counter(
		"bidjudge.cache.lookups",
		metric.WithDescription("Judgment cache lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	r.WarehouseFetches, err = meter.Int64Counter(
		"bidjudge.warehouse.fetches",
		metric.WithDescription("Daily-performance fetches issued to the warehouse"),
	)
	if err != nil {
		return nil, err
	}

	r.WarehouseRows, err = meter.Int64Counter(
		"bidjudge.warehouse.rows",
		metric.WithDescription("Daily-performance rows returned by the warehouse"),
	)
	if err != nil {
		return nil, err
	}

	r.WarehouseDuration, err = meter.Float64Histogram(
		"bidjudge.warehouse.fetch_duration",
		metric.WithDescription("Warehouse fetch duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 25, 50, 100, 250, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RecordJudgment records one completed judgment.
func (r *Registry) RecordJudgment(ctx context.Context, action defense.Action, reason defense.ReasonCode, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("action", action.String()),
		attribute.String("reason", string(reason)),
	)
	r.JudgmentCounter.Add(ctx, 1, attrs)
	r.JudgmentDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordCacheLookup records a judgment cache hit or miss.
func (r *Registry) RecordCacheLookup(ctx context.Context, hit bool) {
	r.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}

// RecordWarehouseFetch records one warehouse round trip.
func (r *Registry) RecordWarehouseFetch(ctx context.Context, rows int, duration time.Duration) {
	r.WarehouseFetches.Add(ctx, 1)
	r.WarehouseRows.Add(ctx, int64(rows))
	r.WarehouseDuration.Record(ctx, float64(duration.Milliseconds()))
}
