package defense

import (
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

// Action is a defensive bid recommendation, ordered by severity. STOP and
// NEG share the most severe tier: STOP pauses a keyword's bid, NEG adds a
// negative for a search-term cluster. The zero value means no action.
type Action int

const (
	ActionNone Action = iota
	ActionStop
	ActionNeg
	ActionStrongDown
	ActionDown
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionStop:
		return "STOP"
	case ActionNeg:
		return "NEG"
	case ActionStrongDown:
		return "STRONG_DOWN"
	case ActionDown:
		return "DOWN"
	default:
		return "unknown"
	}
}

// IsSevere reports whether the action is in the STOP/NEG tier
func (a Action) IsSevere() bool {
	return a == ActionStop || a == ActionNeg
}

// MarshalText implements encoding.TextMarshaler
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// SevereActionFor maps the entity type to its STOP/NEG-tier action. This is
// the single place the mapping lives; the judge and any standalone caller
// share it so a keyword is always stopped and a cluster always negated.
func SevereActionFor(entityType performance.EntityType) Action {
	if entityType == performance.EntityTypeSearchTermCluster {
		return ActionNeg
	}
	return ActionStop
}
