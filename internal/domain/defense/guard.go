package defense

import (
	"fmt"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// StableRatioThresholds configures the up-path divergence guard
type StableRatioThresholds struct {
	// MaxACOSDivergenceRatio is the tolerated relative gap between total
	// and stable ACOS before a bid increase is held back.
	MaxACOSDivergenceRatio float64 `json:"max_acos_divergence_ratio" koanf:"max_acos_divergence_ratio"`
	// MinStableClicks below which the check is skipped entirely.
	MinStableClicks int `json:"min_stable_clicks" koanf:"min_stable_clicks"`
}

// DefaultStableRatioThresholds is the documented default instance
var DefaultStableRatioThresholds = StableRatioThresholds{
	MaxACOSDivergenceRatio: 0.25,
	MinStableClicks:        15,
}

// StableRatioResult reports the guard's verdict with its inputs for audit
type StableRatioResult struct {
	AllowUp             bool         `json:"allow_up"`
	StableACOS          values.Ratio `json:"stable_acos"`
	TotalACOS           values.Ratio `json:"total_acos"`
	ACOSDivergenceRatio values.Ratio `json:"acos_divergence_ratio"`
	Reason              string       `json:"reason"`
}

// CheckStableRatioForUp guards the symmetric up-recommendation path: a bid
// increase computed mainly from the total window is suppressed when total
// ACOS has diverged badly from stable ACOS, the signature of a fresh cost
// spike whose conversions have not attributed yet. Entities without enough
// stable evidence, or without measurable ACOS, pass through unchecked.
func CheckStableRatioForUp(m performance.AttributionAwareMetrics, thresholds StableRatioThresholds) StableRatioResult {
	result := StableRatioResult{
		AllowUp:             true,
		StableACOS:          m.Stable.ACOS,
		TotalACOS:           m.Total.ACOS,
		ACOSDivergenceRatio: values.AbsentRatio(),
	}

	if m.Stable.Clicks < int64(thresholds.MinStableClicks) {
		result.Reason = fmt.Sprintf("skipped: %d stable clicks below %d", m.Stable.Clicks, thresholds.MinStableClicks)
		return result
	}

	stableACOS, stableOK := m.Stable.ACOS.Value()
	totalACOS, totalOK := m.Total.ACOS.Value()
	if !stableOK || !totalOK {
		result.Reason = "skipped: ACOS not measurable in both windows"
		return result
	}
	if stableACOS == 0 {
		result.Reason = "skipped: stable ACOS is zero"
		return result
	}

	divergence := (totalACOS - stableACOS) / stableACOS
	result.ACOSDivergenceRatio = values.PresentRatio(divergence)

	if divergence > thresholds.MaxACOSDivergenceRatio {
		result.AllowUp = false
		result.Reason = fmt.Sprintf("total ACOS %.4f diverges %.0f%% from stable %.4f, over the %.0f%% limit",
			totalACOS, divergence*100, stableACOS, thresholds.MaxACOSDivergenceRatio*100)
		return result
	}

	result.Reason = fmt.Sprintf("divergence %.0f%% within the %.0f%% limit", divergence*100, thresholds.MaxACOSDivergenceRatio*100)
	return result
}
