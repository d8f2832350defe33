package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState_RoundTrip(t *testing.T) {
	for s := State(0); s < StateCount; s++ {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseState("RETIRED")
	assert.Error(t, err)
}

func TestState_IsLaunch(t *testing.T) {
	assert.True(t, StateLaunchHard.IsLaunch())
	assert.True(t, StateLaunchSoft.IsLaunch())
	assert.False(t, StateGrowth.IsLaunch())
	assert.False(t, StateSteady.IsLaunch())
	assert.False(t, StateHarvest.IsLaunch())
	assert.False(t, StateZombie.IsLaunch())
}

func TestState_TextMarshaling(t *testing.T) {
	data, err := StateHarvest.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "HARVEST", string(data))

	var s State
	require.NoError(t, s.UnmarshalText([]byte("ZOMBIE")))
	assert.Equal(t, StateZombie, s)

	assert.Error(t, s.UnmarshalText([]byte("nope")))
}

func TestStaticClassifier(t *testing.T) {
	c := NewStaticClassifier(map[string]State{
		"B00LAUNCH1": StateLaunchHard,
		"B00MATURE1": StateHarvest,
	}, StateSteady)

	state, err := c.Classify(context.Background(), "B00LAUNCH1")
	require.NoError(t, err)
	assert.Equal(t, StateLaunchHard, state)

	state, err = c.Classify(context.Background(), "B00UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, StateSteady, state)
}
