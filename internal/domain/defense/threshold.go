package defense

import (
	"fmt"
	"math"
)

// SingleDefenseThreshold is the statistical-significance gate for one action
// tier: a defensive action needs at least this many stable-window clicks and
// this much stable-window spend relative to the target CPA before it fires.
type SingleDefenseThreshold struct {
	MinStableClicks               int     `json:"min_stable_clicks" koanf:"min_stable_clicks"`
	MinStableCostToTargetCPARatio float64 `json:"min_stable_cost_to_target_cpa_ratio" koanf:"min_stable_cost_to_target_cpa_ratio"`
}

// Scaled applies a lifecycle threshold multiplier: the click requirement is
// rounded up, the cost ratio scales linearly.
func (t SingleDefenseThreshold) Scaled(multiplier float64) SingleDefenseThreshold {
	return SingleDefenseThreshold{
		MinStableClicks:               int(math.Ceil(float64(t.MinStableClicks) * multiplier)),
		MinStableCostToTargetCPARatio: t.MinStableCostToTargetCPARatio * multiplier,
	}
}

// DefenseThresholdConfig holds the per-tier gates, strictest first.
type DefenseThresholdConfig struct {
	StopNeg    SingleDefenseThreshold `json:"stop_neg" koanf:"stop_neg"`
	StrongDown SingleDefenseThreshold `json:"strong_down" koanf:"strong_down"`
	Down       SingleDefenseThreshold `json:"down" koanf:"down"`
}

// DefaultThresholds is the documented default instance. More severe tiers
// require more evidence, never less.
var DefaultThresholds = DefenseThresholdConfig{
	StopNeg:    SingleDefenseThreshold{MinStableClicks: 60, MinStableCostToTargetCPARatio: 3.0},
	StrongDown: SingleDefenseThreshold{MinStableClicks: 40, MinStableCostToTargetCPARatio: 2.0},
	Down:       SingleDefenseThreshold{MinStableClicks: 25, MinStableCostToTargetCPARatio: 1.5},
}

// Validate enforces the severity ordering invariant on both gate dimensions.
func (c DefenseThresholdConfig) Validate() error {
	if c.StopNeg.MinStableClicks < c.StrongDown.MinStableClicks ||
		c.StrongDown.MinStableClicks < c.Down.MinStableClicks {
		return fmt.Errorf("threshold click requirements must not increase with decreasing severity: stop_neg=%d strong_down=%d down=%d",
			c.StopNeg.MinStableClicks, c.StrongDown.MinStableClicks, c.Down.MinStableClicks)
	}
	if c.StopNeg.MinStableCostToTargetCPARatio < c.StrongDown.MinStableCostToTargetCPARatio ||
		c.StrongDown.MinStableCostToTargetCPARatio < c.Down.MinStableCostToTargetCPARatio {
		return fmt.Errorf("threshold cost ratios must not increase with decreasing severity: stop_neg=%.2f strong_down=%.2f down=%.2f",
			c.StopNeg.MinStableCostToTargetCPARatio, c.StrongDown.MinStableCostToTargetCPARatio, c.Down.MinStableCostToTargetCPARatio)
	}
	return nil
}
