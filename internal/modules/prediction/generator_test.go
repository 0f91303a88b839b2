package prediction

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

func testGenerator() *Generator {
	return NewGenerator(zerolog.Nop())
}

// trendingBars builds n bars of steadily rising closes with flat volume,
// ending with a large volume spike. The trend keeps the close above its
// moving averages once the windows fill.
func trendingBars(n int) []marketdata.DailyBar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.DailyBar, n)
	for i := 0; i < n; i++ {
		vol := int64(1000)
		if i == n-1 {
			vol = 5000
		}
		v := vol
		bars[i] = marketdata.DailyBar{
			Date:   start.AddDate(0, 0, i),
			Close:  100 + float64(i)*0.5,
			Volume: &v,
		}
	}
	return bars
}

func TestGenerate_ParameterValidation(t *testing.T) {
	g := testGenerator()
	bars := trendingBars(10)

	tests := []struct {
		name          string
		requestedDays int
		futureDays    int
	}{
		{name: "zero requested days", requestedDays: 0, futureDays: 0},
		{name: "negative requested days", requestedDays: -1, futureDays: 0},
		{name: "requested days above maximum", requestedDays: 51, futureDays: 0},
		{name: "negative future days", requestedDays: 5, futureDays: -1},
		{name: "future days above maximum", requestedDays: 5, futureDays: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(GenerateParams{
				Symbol:        "TEST",
				Bars:          bars,
				RequestedDays: tt.requestedDays,
				FutureDays:    tt.futureDays,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestGenerate_EmptyBars(t *testing.T) {
	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "GHOST",
		RequestedDays: 5,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Predictions)
	assert.Equal(t, "no price data available for symbol", result.Note)
	assert.Equal(t, "GHOST", result.Symbol)
}

func TestGenerate_HistoricalOrdering(t *testing.T) {
	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          trendingBars(250),
		RequestedDays: 5,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 5)

	for i := 1; i < len(result.Predictions); i++ {
		assert.True(t, result.Predictions[i].Date.Before(result.Predictions[i-1].Date),
			"default ordering is most recent first")
	}
	for _, p := range result.Predictions {
		assert.False(t, p.IsFuture)
		assert.Equal(t, "TEST", p.Symbol)
		assert.NotEmpty(t, p.Interpretation)
		assert.NotEmpty(t, p.Recommendations)
	}
}

func TestGenerate_UnsortedInputIsNormalized(t *testing.T) {
	bars := trendingBars(250)
	// Shuffle a few bars out of order; generation must not depend on
	// caller ordering.
	bars[0], bars[249] = bars[249], bars[0]
	bars[10], bars[100] = bars[100], bars[10]

	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          bars,
		RequestedDays: 3,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 3)

	sorted, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          trendingBars(250),
		RequestedDays: 3,
	})
	require.NoError(t, err)

	for i := range result.Predictions {
		assert.True(t, result.Predictions[i].Date.Equal(sorted.Predictions[i].Date))
		assert.Equal(t, sorted.Predictions[i].Score, result.Predictions[i].Score)
	}
}

func TestGenerate_FutureWalk(t *testing.T) {
	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          trendingBars(250),
		RequestedDays: 1,
		FutureDays:    5,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 6)

	var future []PredictionRecord
	for _, p := range result.Predictions {
		if p.IsFuture {
			future = append(future, p)
		}
	}
	require.Len(t, future, 5)

	for _, p := range future {
		require.NotNil(t, p.BaselineDate)
		assert.NotEqual(t, time.Saturday, p.Date.Weekday())
		assert.NotEqual(t, time.Sunday, p.Date.Weekday())
	}
}

func TestGenerate_FutureDatesSkipWeekends(t *testing.T) {
	// Five bars Monday through Friday, 2024-01-01 to 2024-01-05.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.DailyBar, 5)
	for i := range bars {
		bars[i] = marketdata.DailyBar{Date: start.AddDate(0, 0, i), Close: 100}
	}

	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          bars,
		RequestedDays: 1,
		FutureDays:    3,
		Sort:          SortSpec{Field: SortByDate, Descending: false},
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 4)

	// Friday's next business days are Monday, Tuesday, Wednesday.
	assert.True(t, result.Predictions[1].Date.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, result.Predictions[2].Date.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, result.Predictions[3].Date.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestGenerate_FlatBaselineYieldsZeroFutureScores(t *testing.T) {
	// Flat closes with no volume: no factor ever activates, and the
	// default baseline falls back to the inactive most recent day.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.DailyBar, 30)
	for i := range bars {
		bars[i] = marketdata.DailyBar{Date: start.AddDate(0, 0, i), Close: 100}
	}

	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "FLAT",
		Bars:          bars,
		RequestedDays: 1,
		FutureDays:    7,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 8)

	for _, p := range result.Predictions {
		if !p.IsFuture {
			continue
		}
		assert.Zero(t, p.Score)
		assert.Zero(t, p.Confidence)
		assert.Equal(t, LevelLowProbability, p.Level)
	}
}

func TestGenerate_ExogenousContextByDate(t *testing.T) {
	bars := trendingBars(30)
	lastDate := bars[len(bars)-1].Date.Format(marketdata.DateFormat)

	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          bars,
		RequestedDays: 2,
		Context: map[string]marketdata.ExogenousContext{
			lastDate: {MarketUp: true, NewsPositive: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 2)

	latest := result.Predictions[0]
	ids := make([]FactorID, 0, len(latest.ActiveFactors))
	for _, f := range latest.ActiveFactors {
		ids = append(ids, f.Factor)
	}
	assert.Contains(t, ids, FactorMarketUp)
	assert.Contains(t, ids, FactorNewsPositive)

	// The prior day had no stored context.
	prior := result.Predictions[1]
	for _, f := range prior.ActiveFactors {
		assert.NotEqual(t, FactorMarketUp, f.Factor)
	}
}

func TestGenerate_FiltersApplied(t *testing.T) {
	level := LevelLowProbability
	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          trendingBars(250),
		RequestedDays: 10,
		Filters:       &Filters{Level: &level},
	})
	require.NoError(t, err)

	for _, p := range result.Predictions {
		assert.Equal(t, LevelLowProbability, p.Level)
	}
	// Everything filtered out is an empty sequence, not an error note.
	assert.Empty(t, result.Note)
}

func TestGenerate_ShortHistoryWarns(t *testing.T) {
	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          trendingBars(50),
		RequestedDays: 5,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "indicator lookback")
	// Short history still yields predictions.
	assert.Len(t, result.Predictions, 5)
}

func TestGenerate_InvalidBarWarns(t *testing.T) {
	bars := trendingBars(30)
	bars[10].Close = 0

	result, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          bars,
		RequestedDays: 2,
	})
	require.NoError(t, err)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, bars[10].Date.Format(marketdata.DateFormat)) {
			found = true
		}
	}
	assert.True(t, found, "expected a warning naming the unusable bar, got %v", result.Warnings)
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	bars := trendingBars(30)
	bars[0], bars[29] = bars[29], bars[0]
	firstDate := bars[0].Date

	_, err := testGenerator().Generate(GenerateParams{
		Symbol:        "TEST",
		Bars:          bars,
		RequestedDays: 2,
	})
	require.NoError(t, err)
	assert.True(t, bars[0].Date.Equal(firstDate), "caller slice order must be preserved")
}
