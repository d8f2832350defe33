package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/values"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
)

const dailyPerformanceQuery = `
SELECT report_date, impressions, clicks, conversions, cost::text, sales::text
FROM ads_daily_performance
WHERE asin = $1 AND entity_id = $2 AND entity_type = $3
  AND report_date >= $4 AND report_date < $5`

// pgxQuerier is the subset of pgxpool.Pool the store needs. Tests substitute
// a fake; production always passes the real pool.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads daily performance rows from a Postgres warehouse.
type PostgresStore struct {
	pool         pgxQuerier
	closer       func()
	logger       *zap.Logger
	limiter      *rate.Limiter
	queryTimeout time.Duration
}

// NewPostgresStore connects to the warehouse and verifies the connection.
func NewPostgresStore(ctx context.Context, cfg config.WarehouseConfig, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing warehouse DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating warehouse pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging warehouse: %w", err)
	}

	logger.Info("postgres warehouse connected",
		zap.Int32("max_conns", poolCfg.MaxConns))

	return &PostgresStore{
		pool:         pool,
		closer:       pool.Close,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(cfg.FetchRatePerSecond), 1),
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

// newPostgresStoreWithQuerier wires a store around an arbitrary querier.
func newPostgresStoreWithQuerier(q pgxQuerier, logger *zap.Logger, fetchRate float64, queryTimeout time.Duration) *PostgresStore {
	return &PostgresStore{
		pool:         q,
		closer:       func() {},
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(fetchRate), 1),
		queryTimeout: queryTimeout,
	}
}

// FetchDailyPerformance returns the raw daily rows for one entity in
// [from, to). Rows that fail to scan or carry unparseable money values are
// skipped with a warning rather than failing the whole fetch.
func (s *PostgresStore) FetchDailyPerformance(ctx context.Context, entity performance.EntityRef, from, to time.Time) ([]performance.DailyPerformance, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("warehouse rate limit: %w", err)
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.pool.Query(ctx, dailyPerformanceQuery,
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
				zap.String("asin", entity.ASIN),
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

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.closer()
}
