package fixtures

import (
	"time"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
)

// DailyRowBuilder builds test DailyPerformance rows.
type DailyRowBuilder struct {
	date        time.Time
	impressions int64
	clicks      int64
	conversions int64
	cost        values.Money
	sales       values.Money
}

// NewDailyRowBuilder creates a builder with a modest converting day.
func NewDailyRowBuilder(date time.Time) *DailyRowBuilder {
	return &DailyRowBuilder{
		date:        date,
		impressions: 1000,
		clicks:      20,
		conversions: 1,
		cost:        values.NewMoneyFromFloat(15.00),
		sales:       values.NewMoneyFromFloat(60.00),
	}
}

func (b *DailyRowBuilder) WithImpressions(n int64) *DailyRowBuilder {
	b.impressions = n
	return b
}

func (b *DailyRowBuilder) WithClicks(n int64) *DailyRowBuilder {
	b.clicks = n
	return b
}

func (b *DailyRowBuilder) WithConversions(n int64) *DailyRowBuilder {
	b.conversions = n
	return b
}

func (b *DailyRowBuilder) WithCost(amount float64) *DailyRowBuilder {
	b.cost = values.NewMoneyFromFloat(amount)
	return b
}

func (b *DailyRowBuilder) WithSales(amount float64) *DailyRowBuilder {
	b.sales = values.NewMoneyFromFloat(amount)
	return b
}

func (b *DailyRowBuilder) Build() performance.DailyPerformance {
	return performance.DailyPerformance{
		Date:        b.date,
		Impressions: b.impressions,
		Clicks:      b.clicks,
		Conversions: b.conversions,
		Cost:        b.cost,
		Sales:       b.sales,
	}
}

// DailySeries generates one row per day over [start, start+days), applying
// customize (when non-nil) to each day's builder.
func DailySeries(start time.Time, days int, customize func(day int, b *DailyRowBuilder)) []performance.DailyPerformance {
	rows := make([]performance.DailyPerformance, 0, days)
	for i := 0; i < days; i++ {
		b := NewDailyRowBuilder(start.AddDate(0, 0, i))
		if customize != nil {
			customize(i, b)
		}
		rows = append(rows, b.Build())
	}
	return rows
}

// KeywordRef returns an EntityRef for a keyword under a fixed test ASIN.
func KeywordRef(entityID string) performance.EntityRef {
	return performance.EntityRef{
		ASIN:       "B0TESTASIN",
		EntityID:   entityID,
		EntityType: performance.EntityTypeKeyword,
	}
}

// ClusterRef returns an EntityRef for a search-term cluster.
func ClusterRef(entityID string) performance.EntityRef {
	return performance.EntityRef{
		ASIN:       "B0TESTASIN",
		EntityID:   entityID,
		EntityType: performance.EntityTypeSearchTermCluster,
	}
}
