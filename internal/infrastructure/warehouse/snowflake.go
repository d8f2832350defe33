package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
)

const snowflakeDailyQuery = `
SELECT report_date, impressions, clicks, conversions, cost, sales
FROM ads_daily_performance
WHERE asin = ? AND entity_id = ? AND entity_type = ?
  AND report_date >= ? AND report_date < ?`

// SnowflakeStore reads daily performance rows from a Snowflake warehouse
// through the standard database/sql driver.
type SnowflakeStore struct {
	db           *sql.DB
	logger       *zap.Logger
	limiter      *rate.Limiter
	queryTimeout time.Duration
}

// NewSnowflakeStore opens and verifies a Snowflake connection.
func NewSnowflakeStore(ctx context.Context, cfg config.WarehouseConfig, logger *zap.Logger) (*SnowflakeStore, error) {
	db, err := sql.Open("snowflake", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening snowflake connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging snowflake: %w", err)
	}

	logger.Info("snowflake warehouse connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns))

	return &SnowflakeStore{
		db:           db,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(cfg.FetchRatePerSecond), 1),
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

func newSnowflakeStoreWithDB(db *sql.DB, logger *zap.Logger, fetchRate float64, queryTimeout time.Duration) *SnowflakeStore {
	return &SnowflakeStore{
		db:           db,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(fetchRate), 1),
		queryTimeout: queryTimeout,
	}
}

// FetchDailyPerformance returns the raw daily rows for one entity in
// [from, to), skipping rows that fail to scan.
func (s *SnowflakeStore) FetchDailyPerformance(ctx context.Context, entity performance.EntityRef, from, to time.Time) ([]performance.DailyPerformance, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("warehouse rate limit: %w", err)
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, snowflakeDailyQuery,
		entity.ASIN, entity.EntityID, entity.EntityType.String(), from, to)
	if err != nil {
		return nil, fmt.Errorf("querying daily performance: %w", err)
	}
	defer rows.Close()

	var out []performance.DailyPerformance
	for rows.Next() {
		var (
			day                              time.Time
			impressions, clicks, conversions int64
			costStr, salesStr                string
		)
		if err := rows.Scan(&day, &impressions, &clicks, &conversions, &costStr, &salesStr); err != nil {
			s.logger.Warn("skipping malformed performance row",
				zap.String("entity_id", entity.EntityID),
				zap.Error(err))
			continue
		}

		cost, err := values.NewMoneyFromString(costStr)
		if err != nil {
			s.logger.Warn("skipping row with unparseable cost",
				zap.String("entity_id", entity.EntityID),
				zap.String("cost", costStr),
				zap.Error(err))
			continue
		}
		sales, err := values.NewMoneyFromString(salesStr)
		if err != nil {
			s.logger.Warn("skipping row with unparseable sales",
				zap.String("entity_id", entity.EntityID),
				zap.String("sales", salesStr),
				zap.Error(err))
			continue
		}

		out = append(out, performance.DailyPerformance{
			Date:        day,
			Impressions: impressions,
			Clicks:      clicks,
			Conversions: conversions,
			Cost:        cost,
			Sales:       sales,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading daily performance rows: %w", err)
	}

	return out, nil
}

// Close releases the underlying connection pool.
func (s *SnowflakeStore) Close() error {
	return s.db.Close()
}
