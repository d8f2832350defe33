package defense

import (
	"fmt"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/lifecycle"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

const (
	// recentGoodCVRFactor: the recent window counts as good when its CVR
	// beats the stable CVR by this factor, even without a conversion.
	recentGoodCVRFactor = 1.2
	// strongDownACOSFactor / downACOSFactor: stable ACOS overshoot of the
	// target that arms each bid-reduction tier.
	strongDownACOSFactor = 1.5
	downACOSFactor       = 1.2
)

// Judge is the attribution-aware defense cascade. It is pure and
// deterministic; a zero-configured judge uses the documented defaults.
type Judge struct {
	thresholds DefenseThresholdConfig
	policies   PolicyTable
}

// JudgeOption overrides a default on a new Judge
type JudgeOption func(*Judge)

// WithThresholds replaces the default threshold config
func WithThresholds(c DefenseThresholdConfig) JudgeOption {
	return func(j *Judge) { j.thresholds = c }
}

// WithPolicies replaces the default lifecycle policy table
func WithPolicies(t PolicyTable) JudgeOption {
	return func(j *Judge) { j.policies = t }
}

// NewJudge creates a Judge with the default thresholds and policies
func NewJudge(opts ...JudgeOption) *Judge {
	j := &Judge{
		thresholds: DefaultThresholds,
		policies:   DefaultPolicies,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Policies exposes the judge's policy table so callers can run IsBlocked
// and Mitigate against exactly the table the judge uses.
func (j *Judge) Policies() PolicyTable {
	return j.policies
}

// tierSpec describes one cascade tier: its arming condition, statistical
// gate, lifecycle block, the action it fires, and the action it downgrades
// to when the recent window looks good. Evaluating tiers through one loop
// keeps the click/cost gating identical across severities.
type tierSpec struct {
	condition bool
	blocked   bool
	base      SingleDefenseThreshold
	fire      Action
	downgrade Action
	detail    string
}

// Judge decides among STOP/NEG/STRONG_DOWN/DOWN/none for one entity's
// windowed metrics. targetACOS arms the bid-reduction tiers; the lifecycle
// state selects threshold scaling and tier blocks. It never returns an
// error: under-specified inputs degrade to "no defense" outcomes.
//
// A tier whose arming condition holds but whose statistical gate fails is
// remembered and evaluation falls through to the next tier, so an
// under-evidenced severe tier never masks a well-evidenced milder one.
// Lifecycle blocks work the same way below the top: a blocked mid-cascade
// tier is remembered and lower tiers still run, which keeps the judge's
// outcome aligned with the Mitigate downgrade chain. Only a block on the
// zero-conversion tier ends the cascade outright.
func (j *Judge) Judge(m performance.AttributionAwareMetrics, targetACOS float64, state lifecycle.State) Result {
	policy := j.policies.Resolve(state)
	recentGood := IsRecentPerformanceGood(m)
	costRatio := m.StableCostToCPARatio()

	tiers := []tierSpec{
		{
			condition: m.Stable.Conversions == 0,
			blocked:   policy.BlockStopNeg,
			base:      j.thresholds.StopNeg,
			fire:      SevereActionFor(m.Entity.EntityType),
			downgrade: ActionStrongDown,
			detail:    fmt.Sprintf("no conversions in stable window (%d clicks, %s spend)", m.Stable.Clicks, m.Stable.Cost),
		},
		{
			condition: m.Stable.ACOS.GreaterThan(targetACOS * strongDownACOSFactor),
			blocked:   policy.BlockStrongDown,
			base:      j.thresholds.StrongDown,
			fire:      ActionStrongDown,
			downgrade: ActionDown,
			detail:    fmt.Sprintf("stable ACOS %s exceeds %.1fx target %.4f", m.Stable.ACOS, strongDownACOSFactor, targetACOS),
		},
		{
			condition: m.Stable.ACOS.GreaterThan(targetACOS * downACOSFactor),
			blocked:   policy.BlockDown,
			base:      j.thresholds.Down,
			fire:      ActionDown,
			downgrade: ActionNone,
			detail:    fmt.Sprintf("stable ACOS %s exceeds %.1fx target %.4f", m.Stable.ACOS, downACOSFactor, targetACOS),
		},
	}

	var nearMiss, deferredBlock *Result
	for i, tier := range tiers {
		if !tier.condition {
			continue
		}
		effective := tier.base.Scaled(policy.ThresholdMultiplier)
		meetsClicks := m.Stable.Clicks >= int64(effective.MinStableClicks)
		meetsCost := costRatio >= effective.MinStableCostToTargetCPARatio

		if tier.blocked {
			blocked := Result{
				ShouldDefend:             false,
				RecommendedAction:        ActionNone,
				ReasonCode:               ReasonBlockedByLifecycle,
				ReasonDetail:             fmt.Sprintf("%s; %s action blocked by %s policy", tier.detail, tier.fire, state),
				MeetsClickThreshold:      meetsClicks,
				MeetsCostThreshold:       meetsCost,
				BlockedByLifecyclePolicy: true,
				RecentPerformanceGood:    recentGood,
				EffectiveThreshold:       effective,
			}
			if i == 0 {
				return blocked
			}
			if deferredBlock == nil {
				deferredBlock = &blocked
			}
			continue
		}

		if !meetsClicks || !meetsCost {
			if nearMiss == nil {
				reason := ReasonInsufficientClicks
				detail := fmt.Sprintf("%s; %d stable clicks below required %d", tier.detail, m.Stable.Clicks, effective.MinStableClicks)
				if meetsClicks {
					reason = ReasonInsufficientCost
					detail = fmt.Sprintf("%s; stable cost %.2fx target CPA below required %.2fx", tier.detail, costRatio, effective.MinStableCostToTargetCPARatio)
				}
				nearMiss = &Result{
					ShouldDefend:          false,
					RecommendedAction:     ActionNone,
					ReasonCode:            reason,
					ReasonDetail:          detail,
					MeetsClickThreshold:   meetsClicks,
					MeetsCostThreshold:    meetsCost,
					RecentPerformanceGood: recentGood,
					EffectiveThreshold:    effective,
				}
			}
			continue
		}

		if recentGood {
			action := ActionNone
			if tier.downgrade != ActionNone {
				action = policy.downgrade(tier.downgrade)
			}
			return Result{
				ShouldDefend:          action != ActionNone,
				RecommendedAction:     action,
				ReasonCode:            ReasonMitigatedRecentGood,
				ReasonDetail:          fmt.Sprintf("%s, but recent window performs well; mitigated from %s to %s", tier.detail, tier.fire, action),
				MeetsClickThreshold:   true,
				MeetsCostThreshold:    true,
				RecentPerformanceGood: true,
				EffectiveThreshold:    effective,
			}
		}

		return Result{
			ShouldDefend:          true,
			RecommendedAction:     tier.fire,
			ReasonCode:            ReasonDefenseRecommended,
			ReasonDetail:          tier.detail,
			MeetsClickThreshold:   true,
			MeetsCostThreshold:    true,
			RecentPerformanceGood: recentGood,
			EffectiveThreshold:    effective,
		}
	}

	if deferredBlock != nil {
		return *deferredBlock
	}
	if nearMiss != nil {
		return *nearMiss
	}

	// Stable performance is acceptable; report the laxest gate as
	// nearest-miss context.
	effective := j.thresholds.Down.Scaled(policy.ThresholdMultiplier)
	return Result{
		ShouldDefend:          false,
		RecommendedAction:     ActionNone,
		ReasonCode:            ReasonNoDefenseNeeded,
		ReasonDetail:          fmt.Sprintf("stable ACOS %s within target %.4f", m.Stable.ACOS, targetACOS),
		MeetsClickThreshold:   m.Stable.Clicks >= int64(effective.MinStableClicks),
		MeetsCostThreshold:    costRatio >= effective.MinStableCostToTargetCPARatio,
		RecentPerformanceGood: recentGood,
		EffectiveThreshold:    effective,
	}
}

// IsRecentPerformanceGood reports whether the recent, attribution-lagged
// window already shows a conversion, or a CVR clearly above the stable
// baseline. Either signal argues against acting on the stable window alone.
func IsRecentPerformanceGood(m performance.AttributionAwareMetrics) bool {
	if m.Recent.Conversions >= 1 {
		return true
	}
	recentCVR, ok := m.Recent.CVR.Value()
	if !ok {
		return false
	}
	stableCVR, ok := m.Stable.CVR.Value()
	if !ok || stableCVR <= 0 {
		return false
	}
	return recentCVR >= stableCVR*recentGoodCVRFactor
}
