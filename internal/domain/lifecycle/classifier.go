package lifecycle

import "context"

// StaticClassifier resolves lifecycle states from a fixed mapping, falling
// back to a default state for unknown products. It stands in where no live
// lifecycle classifier is wired, e.g. batch runs driven entirely by config.
type StaticClassifier struct {
	states   map[string]State
	fallback State
}

// NewStaticClassifier creates a classifier over a fixed ASIN -> state map
func NewStaticClassifier(states map[string]State, fallback State) *StaticClassifier {
	copied := make(map[string]State, len(states))
	for asin, state := range states {
		copied[asin] = state
	}
	return &StaticClassifier{states: copied, fallback: fallback}
}

// Classify returns the configured state for the ASIN, or the fallback
func (c *StaticClassifier) Classify(_ context.Context, asin string) (State, error) {
	if state, ok := c.states[asin]; ok {
		return state, nil
	}
	return c.fallback, nil
}
