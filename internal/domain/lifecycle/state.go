package lifecycle

import "fmt"

// State is the coarse product/keyword maturity classification supplied by
// the external lifecycle classifier. Defense sensitivity is relaxed or
// tightened per state.
type State int

const (
	StateLaunchHard State = iota
	StateLaunchSoft
	StateGrowth
	StateSteady
	StateHarvest
	StateZombie

	// StateCount is the number of lifecycle states; policy tables are
	// arrays of this length so adding a state forces a policy decision.
	StateCount = iota
)

func (s State) String() string {
	switch s {
	case StateLaunchHard:
		return "LAUNCH_HARD"
	case StateLaunchSoft:
		return "LAUNCH_SOFT"
	case StateGrowth:
		return "GROWTH"
	case StateSteady:
		return "STEADY"
	case StateHarvest:
		return "HARVEST"
	case StateZombie:
		return "ZOMBIE"
	default:
		return "unknown"
	}
}

// IsLaunch reports whether the state is one of the launch states
func (s State) IsLaunch() bool {
	return s == StateLaunchHard || s == StateLaunchSoft
}

// Valid reports whether the state is one of the declared states
func (s State) Valid() bool {
	return s >= 0 && s < StateCount
}

// ParseState maps the classifier's string representation to a State
func ParseState(s string) (State, error) {
	switch s {
	case "LAUNCH_HARD":
		return StateLaunchHard, nil
	case "LAUNCH_SOFT":
		return StateLaunchSoft, nil
	case "GROWTH":
		return StateGrowth, nil
	case "STEADY":
		return StateSteady, nil
	case "HARVEST":
		return StateHarvest, nil
	case "ZOMBIE":
		return StateZombie, nil
	default:
		return 0, fmt.Errorf("unknown lifecycle state: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
