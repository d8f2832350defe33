package defense

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/lifecycle"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

func TestDefaultPolicies_Shape(t *testing.T) {
	// launch states scale thresholds up and forbid the irreversible tiers
	for _, state := range []lifecycle.State{lifecycle.StateLaunchHard, lifecycle.StateLaunchSoft} {
		p := DefaultPolicies.Resolve(state)
		assert.GreaterOrEqual(t, p.ThresholdMultiplier, 1.5, state.String())
		assert.True(t, p.BlockStopNeg, state.String())
		assert.True(t, p.BlockStrongDown, state.String())
		assert.False(t, p.BlockDown, state.String())
	}

	// nothing is blocked outside launch
	for _, state := range []lifecycle.State{lifecycle.StateGrowth, lifecycle.StateSteady, lifecycle.StateHarvest, lifecycle.StateZombie} {
		p := DefaultPolicies.Resolve(state)
		assert.False(t, p.BlockStopNeg, state.String())
		assert.False(t, p.BlockStrongDown, state.String())
		assert.False(t, p.BlockDown, state.String())
	}

	assert.Equal(t, 1.0, DefaultPolicies.Resolve(lifecycle.StateSteady).ThresholdMultiplier)
	assert.Equal(t, 0.8, DefaultPolicies.Resolve(lifecycle.StateHarvest).ThresholdMultiplier)

	// every state has a usable multiplier
	for s := lifecycle.State(0); s < lifecycle.StateCount; s++ {
		assert.Greater(t, DefaultPolicies.Resolve(s).ThresholdMultiplier, 0.0, s.String())
	}
}

func TestPolicyTable_Resolve_InvalidState(t *testing.T) {
	p := DefaultPolicies.Resolve(lifecycle.State(99))
	assert.Equal(t, 1.0, p.ThresholdMultiplier)
	assert.False(t, p.BlockStopNeg)
}

func TestPolicyTable_IsBlocked(t *testing.T) {
	assert.True(t, DefaultPolicies.IsBlocked(ActionStop, lifecycle.StateLaunchHard))
	assert.True(t, DefaultPolicies.IsBlocked(ActionNeg, lifecycle.StateLaunchHard))
	assert.True(t, DefaultPolicies.IsBlocked(ActionStrongDown, lifecycle.StateLaunchSoft))
	assert.False(t, DefaultPolicies.IsBlocked(ActionDown, lifecycle.StateLaunchHard))

	// non-launch states never report a block from the quick check
	assert.False(t, DefaultPolicies.IsBlocked(ActionStop, lifecycle.StateSteady))
	assert.False(t, DefaultPolicies.IsBlocked(ActionStop, lifecycle.StateZombie))
}

func TestPolicyTable_Mitigate(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		state  lifecycle.State
		want   Action
	}{
		{
			name:   "stop cascades past both blocked tiers to down",
			action: ActionStop,
			state:  lifecycle.StateLaunchHard,
			want:   ActionDown,
		},
		{
			name:   "neg cascades the same way",
			action: ActionNeg,
			state:  lifecycle.StateLaunchHard,
			want:   ActionDown,
		},
		{
			name:   "strong down cascades to down under launch",
			action: ActionStrongDown,
			state:  lifecycle.StateLaunchSoft,
			want:   ActionDown,
		},
		{
			name:   "unblocked action passes through",
			action: ActionStop,
			state:  lifecycle.StateSteady,
			want:   ActionStop,
		},
		{
			name:   "down passes through under launch",
			action: ActionDown,
			state:  lifecycle.StateLaunchHard,
			want:   ActionDown,
		},
		{
			name:   "none stays none",
			action: ActionNone,
			state:  lifecycle.StateLaunchHard,
			want:   ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPolicies.Mitigate(tt.action, tt.state))
		})
	}
}

func TestPolicyTable_Mitigate_FullSuppression(t *testing.T) {
	var table PolicyTable
	table[lifecycle.StateLaunchHard] = LifecycleDefensePolicy{
		ThresholdMultiplier: 2.0,
		BlockStopNeg:        true,
		BlockStrongDown:     true,
		BlockDown:           true,
	}

	assert.Equal(t, ActionNone, table.Mitigate(ActionStop, lifecycle.StateLaunchHard))
	assert.Equal(t, ActionNone, table.Mitigate(ActionDown, lifecycle.StateLaunchHard))
}

func TestSevereActionFor(t *testing.T) {
	assert.Equal(t, ActionStop, SevereActionFor(performance.EntityTypeKeyword))
	assert.Equal(t, ActionNeg, SevereActionFor(performance.EntityTypeSearchTermCluster))
}
