package performance

import (
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// PeriodMetrics is an immutable summary of one time span for one entity.
// The derived ratios are pure functions of the raw counters and are only
// computed through NewPeriodMetrics, never set independently.
type PeriodMetrics struct {
	Impressions int64        `json:"impressions"`
	Clicks      int64        `json:"clicks"`
	Conversions int64        `json:"conversions"`
	Cost        values.Money `json:"cost"`
	Sales       values.Money `json:"sales"`

	// Derived ratios, absent when the denominator is zero
	CTR  values.Ratio `json:"ctr"`  // clicks / impressions
	CVR  values.Ratio `json:"cvr"`  // conversions / clicks
	ACOS values.Ratio `json:"acos"` // cost / sales
	CPC  values.Ratio `json:"cpc"`  // cost / clicks
}

// NewPeriodMetrics builds a PeriodMetrics from raw counters, deriving the
// ratio fields per their zero-denominator rules.
func NewPeriodMetrics(impressions, clicks, conversions int64, cost, sales values.Money) PeriodMetrics {
	return PeriodMetrics{
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Cost:        cost,
		Sales:       sales,
		CTR:         values.RatioOf(clicks, impressions),
		CVR:         values.RatioOf(conversions, clicks),
		ACOS:        cost.RatioTo(sales),
		CPC:         cost.PerUnit(clicks),
	}
}

// EmptyPeriodMetrics returns a PeriodMetrics with all counters zero and all
// derived ratios absent.
func EmptyPeriodMetrics() PeriodMetrics {
	return NewPeriodMetrics(0, 0, 0, values.ZeroMoney(), values.ZeroMoney())
}

// Add returns the field-wise sum of two periods with ratios re-derived from
// the summed counters.
func (p PeriodMetrics) Add(other PeriodMetrics) PeriodMetrics {
	return NewPeriodMetrics(
		p.Impressions+other.Impressions,
		p.Clicks+other.Clicks,
		p.Conversions+other.Conversions,
		p.Cost.Add(other.Cost),
		p.Sales.Add(other.Sales),
	)
}

// IsEmpty reports whether all raw counters are zero
func (p PeriodMetrics) IsEmpty() bool {
	return p.Impressions == 0 && p.Clicks == 0 && p.Conversions == 0 &&
		p.Cost.IsZero() && p.Sales.IsZero()
}
