package defense

// ReasonCode is the closed set of judgment outcomes
type ReasonCode string

const (
	ReasonDefenseRecommended  ReasonCode = "DEFENSE_RECOMMENDED"
	ReasonInsufficientClicks  ReasonCode = "DEFENSE_BLOCKED_INSUFFICIENT_CLICKS"
	ReasonInsufficientCost    ReasonCode = "DEFENSE_BLOCKED_INSUFFICIENT_COST"
	ReasonBlockedByLifecycle  ReasonCode = "DEFENSE_BLOCKED_LIFECYCLE"
	ReasonMitigatedRecentGood ReasonCode = "DEFENSE_MITIGATED_RECENT_GOOD"
	ReasonNoDefenseNeeded     ReasonCode = "NO_DEFENSE_NEEDED"
)

// Result is the engine's sole output. EffectiveThreshold records the
// lifecycle-scaled gate that was actually applied, kept for audit trails.
type Result struct {
	ShouldDefend      bool       `json:"should_defend"`
	RecommendedAction Action     `json:"recommended_action"`
	ReasonCode        ReasonCode `json:"reason_code"`
	ReasonDetail      string     `json:"reason_detail"`

	MeetsClickThreshold      bool `json:"meets_click_threshold"`
	MeetsCostThreshold       bool `json:"meets_cost_threshold"`
	BlockedByLifecyclePolicy bool `json:"blocked_by_lifecycle_policy"`
	RecentPerformanceGood    bool `json:"recent_performance_good"`

	EffectiveThreshold SingleDefenseThreshold `json:"effective_threshold"`
}
