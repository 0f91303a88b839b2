package marketdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func signalTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE market_signals (
			symbol TEXT NOT NULL,
			date TEXT NOT NULL,
			market_up INTEGER NOT NULL DEFAULT 0,
			sector_up INTEGER NOT NULL DEFAULT 0,
			earnings_window INTEGER NOT NULL DEFAULT 0,
			short_covering INTEGER NOT NULL DEFAULT 0,
			macro_tailwind INTEGER NOT NULL DEFAULT 0,
			news_positive INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, date)
		)
	`)
	require.NoError(t, err)

	return db
}

func TestSignalRepository_UpsertAndGetRange(t *testing.T) {
	repo := NewSignalRepository(signalTestDB(t), zerolog.Nop())

	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert("aapl", d1, ExogenousContext{MarketUp: true, NewsPositive: true}))
	require.NoError(t, repo.Upsert("AAPL", d2, ExogenousContext{EarningsWindow: true}))

	signals, err := repo.GetRange("AAPL", d1, d2)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	first := signals["2024-03-01"]
	assert.True(t, first.MarketUp)
	assert.True(t, first.NewsPositive)
	assert.False(t, first.SectorUp)

	second := signals["2024-03-04"]
	assert.True(t, second.EarningsWindow)
	assert.False(t, second.MarketUp)
}

func TestSignalRepository_UpsertReplaces(t *testing.T) {
	repo := NewSignalRepository(signalTestDB(t), zerolog.Nop())

	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert("AAPL", d, ExogenousContext{MarketUp: true}))
	require.NoError(t, repo.Upsert("AAPL", d, ExogenousContext{SectorUp: true}))

	signals, err := repo.GetRange("AAPL", d, d)
	require.NoError(t, err)
	require.Len(t, signals, 1)

	ctx := signals["2024-03-01"]
	assert.False(t, ctx.MarketUp, "replaced row drops the old flags")
	assert.True(t, ctx.SectorUp)
}

func TestSignalRepository_GetRangeBounds(t *testing.T) {
	repo := NewSignalRepository(signalTestDB(t), zerolog.Nop())

	for day := 1; day <= 5; day++ {
		d := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Upsert("AAPL", d, ExogenousContext{MarketUp: true}))
	}

	signals, err := repo.GetRange("AAPL",
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Len(t, signals, 3, "range bounds are inclusive")
	assert.NotContains(t, signals, "2024-03-01")
	assert.NotContains(t, signals, "2024-03-05")
}

func TestSignalRepository_GetRangeOtherSymbol(t *testing.T) {
	repo := NewSignalRepository(signalTestDB(t), zerolog.Nop())

	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert("AAPL", d, ExogenousContext{MarketUp: true}))

	signals, err := repo.GetRange("MSFT", d, d)
	require.NoError(t, err)
	assert.Empty(t, signals)
}
