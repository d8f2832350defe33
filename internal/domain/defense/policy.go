package defense

import (
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/lifecycle"
)

// LifecycleDefensePolicy scales the threshold gates and blocks individual
// action tiers for one lifecycle state. Blocking is per-tier so a launch
// state can permit gentle corrections while forbidding irreversible ones.
type LifecycleDefensePolicy struct {
	ThresholdMultiplier float64 `json:"threshold_multiplier" koanf:"threshold_multiplier"`
	BlockStopNeg        bool    `json:"block_stop_neg" koanf:"block_stop_neg"`
	BlockStrongDown     bool    `json:"block_strong_down" koanf:"block_strong_down"`
	BlockDown           bool    `json:"block_down" koanf:"block_down"`
}

// PolicyTable is indexed by lifecycle.State. The array length is tied to
// lifecycle.StateCount so adding a state fails to compile until a policy is
// decided here.
type PolicyTable [lifecycle.StateCount]LifecycleDefensePolicy

// DefaultPolicies is the documented default policy table. Launch states
// demand much more evidence and forbid the two irreversible tiers; harvest
// and zombie products are watched more aggressively than steady ones.
var DefaultPolicies = PolicyTable{
	lifecycle.StateLaunchHard: {ThresholdMultiplier: 2.0, BlockStopNeg: true, BlockStrongDown: true},
	lifecycle.StateLaunchSoft: {ThresholdMultiplier: 1.5, BlockStopNeg: true, BlockStrongDown: true},
	lifecycle.StateGrowth:     {ThresholdMultiplier: 1.1},
	lifecycle.StateSteady:     {ThresholdMultiplier: 1.0},
	lifecycle.StateHarvest:    {ThresholdMultiplier: 0.8},
	lifecycle.StateZombie:     {ThresholdMultiplier: 0.7},
}

// neutralPolicy is applied when a caller hands in a state outside the
// declared range; it scales nothing and blocks nothing.
var neutralPolicy = LifecycleDefensePolicy{ThresholdMultiplier: 1.0}

// Resolve returns the policy for a lifecycle state
func (t PolicyTable) Resolve(state lifecycle.State) LifecycleDefensePolicy {
	if !state.Valid() {
		return neutralPolicy
	}
	return t[state]
}

// IsBlocked reports, for launch states only, whether an already-decided
// action would be blocked by that state's policy. Non-launch states never
// report a block here; callers needing the full picture run the judge.
func (t PolicyTable) IsBlocked(action Action, state lifecycle.State) bool {
	if !state.IsLaunch() {
		return false
	}
	return t.Resolve(state).blocks(action)
}

// Mitigate cascades an externally proposed action down the
// STOP/NEG -> STRONG_DOWN -> DOWN -> none chain past every blocked tier.
// It returns ActionNone when the action is fully suppressed. This is the
// same downgrade chain the judge applies internally, so both paths agree.
func (t PolicyTable) Mitigate(action Action, state lifecycle.State) Action {
	return t.Resolve(state).downgrade(action)
}

func (p LifecycleDefensePolicy) blocks(action Action) bool {
	switch action {
	case ActionStop, ActionNeg:
		return p.BlockStopNeg
	case ActionStrongDown:
		return p.BlockStrongDown
	case ActionDown:
		return p.BlockDown
	default:
		return false
	}
}

// downgrade walks the action down one severity tier at a time until it
// reaches an unblocked tier, or ActionNone.
func (p LifecycleDefensePolicy) downgrade(action Action) Action {
	switch action {
	case ActionStop, ActionNeg:
		if !p.BlockStopNeg {
			return action
		}
		return p.downgrade(ActionStrongDown)
	case ActionStrongDown:
		if !p.BlockStrongDown {
			return action
		}
		return p.downgrade(ActionDown)
	case ActionDown:
		if !p.BlockDown {
			return action
		}
		return ActionNone
	default:
		return ActionNone
	}
}
