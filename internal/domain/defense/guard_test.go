package defense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

func guardMetrics(stable, recent performance.PeriodMetrics) performance.AttributionAwareMetrics {
	entity := performance.EntityRef{ASIN: "B00TEST001", EntityID: "kw-1", EntityType: performance.EntityTypeKeyword}
	return performance.NewMetricsFromPeriods(entity, stable, recent, values.NewMoneyFromFloat(1000))
}

func TestCheckStableRatioForUp_Disallow(t *testing.T) {
	// stable ACOS 0.10, total ACOS 0.15 -> divergence 0.5 over the 0.25 cap
	stable := periods(1000, 20, 2, 100, 1000)
	recent := periods(200, 5, 0, 80, 200)
	m := guardMetrics(stable, recent)

	result := CheckStableRatioForUp(m, DefaultStableRatioThresholds)

	assert.False(t, result.AllowUp)
	divergence, ok := result.ACOSDivergenceRatio.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.5, divergence, 1e-9)

	stableACOS, _ := result.StableACOS.Value()
	assert.InDelta(t, 0.10, stableACOS, 1e-9)
	totalACOS, _ := result.TotalACOS.Value()
	assert.InDelta(t, 0.15, totalACOS, 1e-9)
	assert.NotEmpty(t, result.Reason)
}

func TestCheckStableRatioForUp_WithinTolerance(t *testing.T) {
	// stable ACOS 0.10, total ACOS 0.11 -> divergence 0.1
	stable := periods(1000, 20, 2, 100, 1000)
	recent := periods(200, 5, 1, 21, 100)
	m := guardMetrics(stable, recent)

	result := CheckStableRatioForUp(m, DefaultStableRatioThresholds)

	assert.True(t, result.AllowUp)
	divergence, ok := result.ACOSDivergenceRatio.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.1, divergence, 1e-9)
}

func TestCheckStableRatioForUp_SkipConditions(t *testing.T) {
	tests := []struct {
		name   string
		stable performance.PeriodMetrics
		recent performance.PeriodMetrics
	}{
		{
			name:   "under the stable click floor",
			stable: periods(1000, 14, 1, 100, 100),
			recent: periods(200, 5, 0, 500, 100),
		},
		{
			name:   "stable ACOS absent",
			stable: periods(1000, 20, 0, 100, 0),
			recent: periods(200, 5, 0, 80, 200),
		},
		{
			name:   "stable ACOS zero",
			stable: periods(1000, 20, 2, 0, 1000),
			recent: periods(200, 5, 0, 500, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := guardMetrics(tt.stable, tt.recent)
			result := CheckStableRatioForUp(m, DefaultStableRatioThresholds)
			assert.True(t, result.AllowUp)
			assert.False(t, result.ACOSDivergenceRatio.Present())
		})
	}
}
