package performance

import (
	"time"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// EntityType identifies what kind of advertising entity a judgment targets
type EntityType int

const (
	EntityTypeKeyword EntityType = iota
	EntityTypeSearchTermCluster
)

func (t EntityType) String() string {
	switch t {
	case EntityTypeKeyword:
		return "keyword"
	case EntityTypeSearchTermCluster:
		return "search_term_cluster"
	default:
		return "unknown"
	}
}

// ParseEntityType maps the warehouse/config representation to an EntityType
func ParseEntityType(s string) (EntityType, bool) {
	switch s {
	case "keyword", "KEYWORD":
		return EntityTypeKeyword, true
	case "search_term_cluster", "SEARCH_TERM_CLUSTER":
		return EntityTypeSearchTermCluster, true
	default:
		return EntityTypeKeyword, false
	}
}

// EntityRef identifies the keyword or search-term cluster being judged
type EntityRef struct {
	ASIN       string     `json:"asin"`
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
}

// DailyPerformance is one day of raw performance counters for one entity,
// as delivered by the warehouse. Rows arrive in no particular order.
type DailyPerformance struct {
	Date        time.Time    `json:"date"`
	Impressions int64        `json:"impressions"`
	Clicks      int64        `json:"clicks"`
	Conversions int64        `json:"conversions"`
	Cost        values.Money `json:"cost"`
	Sales       values.Money `json:"sales"`
}
