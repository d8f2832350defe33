//go:build integration

package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
	"github.com/mbicorp/amazonbid-engine-sub006/internal/infrastructure/config"
)

const performanceSchema = `
CREATE TABLE ads_daily_performance (
	asin        TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	report_date DATE NOT NULL,
	impressions BIGINT NOT NULL,
	clicks      BIGINT NOT NULL,
	conversions BIGINT NOT NULL,
	cost        NUMERIC(12,4) NOT NULL,
	sales       NUMERIC(12,4) NOT NULL
)`

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("warehouse_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, performanceSchema)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO ads_daily_performance VALUES
		('B0TEST1234', 'kw-1', 'keyword', '2024-01-10', 1000, 40, 2, 35.50, 120.00),
		('B0TEST1234', 'kw-1', 'keyword', '2024-01-12', 900, 30, 0, 20.00, 0),
		('B0TEST1234', 'kw-2', 'keyword', '2024-01-10', 500, 10, 1, 8.00, 30.00)`)
	require.NoError(t, err)

	store, err := NewPostgresStore(ctx, config.WarehouseConfig{
		Driver:             "postgres",
		DSN:                dsn,
		MaxOpenConns:       4,
		MaxIdleConns:       1,
		ConnMaxLifetime:    time.Minute,
		QueryTimeout:       5 * time.Second,
		FetchRatePerSecond: 100,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	rows, err := store.FetchDailyPerformance(ctx, performance.EntityRef{
		ASIN:       "B0TEST1234",
		EntityID:   "kw-1",
		EntityType: performance.EntityTypeKeyword,
	}, day("2024-01-01"), day("2024-01-15"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(40), rows[0].Clicks)
	assert.Equal(t, "35.5", rows[0].Cost.String())
}
