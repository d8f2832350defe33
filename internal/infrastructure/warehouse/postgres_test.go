package warehouse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbicorp/amazonbid-engine-sub006/internal/domain/performance"
)

type fakeRows struct {
	rows    [][]any
	idx     int
	scanErr map[int]error
	err     error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return f.rows[f.idx-1], nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if err, ok := f.scanErr[f.idx-1]; ok {
		return err
	}
	row := f.rows[f.idx-1]
	for i, d := range dest {
		switch target := d.(type) {
		case *time.Time:
			*target = row[i].(time.Time)
		case *int64:
			*target = row[i].(int64)
		case *string:
			*target = row[i].(string)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	rows     *fakeRows
	queryErr error
	gotArgs  []any
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.gotArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPostgresStore_FetchDailyPerformance(t *testing.T) {
	entity := performance.EntityRef{
		ASIN:       "B0TEST1234",
		EntityID:   "kw-1",
		EntityType: performance.EntityTypeKeyword,
	}

	t.Run("scans rows into domain values", func(t *testing.T) {
		q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
			{day("2024-01-10"), int64(1000), int64(40), int64(2), "35.50", "120.00"},
			{day("2024-01-11"), int64(900), int64(30), int64(0), "20.00", "0"},
		}}}
		store := newPostgresStoreWithQuerier(q, zap.NewNop(), 100, time.Second)

		rows, err := store.FetchDailyPerformance(context.Background(), entity,
			day("2024-01-01"), day("2024-01-15"))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, int64(40), rows[0].Clicks)
		assert.Equal(t, int64(2), rows[0].Conversions)
		assert.Equal(t, "35.5", rows[0].Cost.String())
		assert.Equal(t, "120", rows[0].Sales.String())

		// entity type travels as its warehouse string form
		assert.Equal(t, "keyword", q.gotArgs[2])
	})

	t.Run("skips malformed rows and keeps the rest", func(t *testing.T) {
		q := &fakeQuerier{rows: &fakeRows{
			rows: [][]any{
				{day("2024-01-10"), int64(100), int64(10), int64(1), "5.00", "25.00"},
				{day("2024-01-11"), int64(100), int64(10), int64(1), "not-a-number", "25.00"},
				{day("2024-01-12"), int64(100), int64(10), int64(1), "5.00", "25.00"},
			},
			scanErr: map[int]error{0: errors.New("bad row")},
		}}
		store := newPostgresStoreWithQuerier(q, zap.NewNop(), 100, time.Second)

		rows, err := store.FetchDailyPerformance(context.Background(), entity,
			day("2024-01-01"), day("2024-01-15"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, day("2024-01-12"), rows[0].Date)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		q := &fakeQuerier{queryErr: errors.New("connection refused")}
		store := newPostgresStoreWithQuerier(q, zap.NewNop(), 100, time.Second)

		_, err := store.FetchDailyPerformance(context.Background(), entity,
			day("2024-01-01"), day("2024-01-15"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "querying daily performance")
	})

	t.Run("propagates rows iteration errors", func(t *testing.T) {
		q := &fakeQuerier{rows: &fakeRows{err: errors.New("stream cut")}}
		store := newPostgresStoreWithQuerier(q, zap.NewNop(), 100, time.Second)

		_, err := store.FetchDailyPerformance(context.Background(), entity,
			day("2024-01-01"), day("2024-01-15"))
		require.Error(t, err)
	})

	t.Run("respects cancelled context at the rate limiter", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := newPostgresStoreWithQuerier(&fakeQuerier{}, zap.NewNop(), 100, time.Second)
		_, err := store.FetchDailyPerformance(ctx, entity,
			day("2024-01-01"), day("2024-01-15"))
		require.Error(t, err)
	})
}
