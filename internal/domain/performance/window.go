package performance

import (
	"time"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// WindowConfig controls how the daily lookback is partitioned into the
// stable and recent spans.
type WindowConfig struct {
	// RecentDays is the number of trailing days still subject to
	// attribution delay.
	RecentDays int `json:"recent_days"`
	// TotalDays is the full lookback depth.
	TotalDays int `json:"total_days"`
}

// DefaultWindowConfig reflects the 2-3 day conversion attribution delay
// observed on the ad platform: the last 3 days are treated as incomplete.
var DefaultWindowConfig = WindowConfig{
	RecentDays: 3,
	TotalDays:  30,
}

// Default span lengths for metrics built from pre-aggregated periods.
const (
	DefaultStableDays = 27
	DefaultRecentDays = 3
)

// AttributionAwareMetrics is the windowed performance summary the defense
// judgment engine operates on. Total is always the field-wise sum of Stable
// and Recent when built through BuildWindowedMetrics; the FromPeriods
// constructors wrap externally aggregated sums and leave consistency to the
// caller.
type AttributionAwareMetrics struct {
	Entity EntityRef `json:"entity"`

	Stable PeriodMetrics `json:"stable"`
	Recent PeriodMetrics `json:"recent"`
	Total  PeriodMetrics `json:"total"`

	StableDays int `json:"stable_days"`
	RecentDays int `json:"recent_days"`

	// TargetCPA is the target cost per acquisition, derived upstream from
	// the campaign's target ACOS.
	TargetCPA values.Money `json:"target_cpa"`
}

// BuildWindowedMetrics partitions daily rows into stable/recent buckets
// relative to referenceDate and aggregates each bucket. Rows dated on or
// after referenceDate are discarded (same-day data is never complete), as
// are rows older than the total lookback. Input order does not matter.
func BuildWindowedMetrics(entity EntityRef, rows []DailyPerformance, referenceDate time.Time, cfg WindowConfig, targetCPA values.Money) AttributionAwareMetrics {
	ref := truncateToDay(referenceDate)
	recentBoundary := ref.AddDate(0, 0, -cfg.RecentDays)
	totalBoundary := ref.AddDate(0, 0, -cfg.TotalDays)

	var stable, recent bucket
	for _, row := range rows {
		day := truncateToDay(row.Date)
		if day.Before(totalBoundary) || !day.Before(ref) {
			continue
		}
		if !day.Before(recentBoundary) {
			recent.add(row)
		} else {
			stable.add(row)
		}
	}

	stableMetrics := stable.metrics()
	recentMetrics := recent.metrics()

	return AttributionAwareMetrics{
		Entity:     entity,
		Stable:     stableMetrics,
		Recent:     recentMetrics,
		Total:      stableMetrics.Add(recentMetrics),
		StableDays: cfg.TotalDays - cfg.RecentDays,
		RecentDays: cfg.RecentDays,
		TargetCPA:  targetCPA,
	}
}

// NewMetricsFromPeriods wraps pre-aggregated stable and recent summaries
// (e.g. rollups an upstream store already tracks, or cluster data without
// daily granularity) using the default 27/3 day split. Total is still
// recomputed from the two spans.
func NewMetricsFromPeriods(entity EntityRef, stable, recent PeriodMetrics, targetCPA values.Money) AttributionAwareMetrics {
	return NewMetricsFromPeriodsWithDays(entity, stable, recent, targetCPA, DefaultStableDays, DefaultRecentDays)
}

// NewMetricsFromPeriodsWithDays is NewMetricsFromPeriods with caller-supplied
// span lengths.
func NewMetricsFromPeriodsWithDays(entity EntityRef, stable, recent PeriodMetrics, targetCPA values.Money, stableDays, recentDays int) AttributionAwareMetrics {
	return AttributionAwareMetrics{
		Entity:     entity,
		Stable:     stable,
		Recent:     recent,
		Total:      stable.Add(recent),
		StableDays: stableDays,
		RecentDays: recentDays,
		TargetCPA:  targetCPA,
	}
}

// StableCostToCPARatio returns stable cost divided by the target CPA, or 0
// when the target CPA is not positive. A non-positive target degrades every
// cost-gated tier to "insufficient cost" rather than firing a severe action.
func (m AttributionAwareMetrics) StableCostToCPARatio() float64 {
	if !m.TargetCPA.IsPositive() {
		return 0
	}
	r := m.Stable.Cost.RatioTo(m.TargetCPA)
	return r.OrZero()
}

type bucket struct {
	impressions int64
	clicks      int64
	conversions int64
	cost        values.Money
	sales       values.Money
}

func (b *bucket) add(row DailyPerformance) {
	b.impressions += row.Impressions
	b.clicks += row.Clicks
	b.conversions += row.Conversions
	b.cost = b.cost.Add(row.Cost)
	b.sales = b.sales.Add(row.Sales)
}

func (b *bucket) metrics() PeriodMetrics {
	return NewPeriodMetrics(b.impressions, b.clicks, b.conversions, b.cost, b.sales)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
