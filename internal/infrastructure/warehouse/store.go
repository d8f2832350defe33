package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
)

// Store is the warehouse-agnostic view the judgment service depends on.
type Store interface {
	FetchDailyPerformance(ctx context.Context, entity performance.EntityRef, from, to time.Time) ([]performance.DailyPerformance, error)
}

// New selects a warehouse implementation from configuration.
func New(ctx context.Context, cfg config.WarehouseConfig, logger *zap.Logger) (Store, func(), error) {
	switch cfg.Driver {
	case "postgres":
		store, err := NewPostgresStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "snowflake":
		store, err := NewSnowflakeStore(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown warehouse driver %q", cfg.Driver)
	}
}
