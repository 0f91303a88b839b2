package prediction

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

type fakeBarSource struct {
	bars map[string][]marketdata.DailyBar
	errs map[string]error
}

func (f *fakeBarSource) GetDailyBars(symbol string, limit int) ([]marketdata.DailyBar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeSignalSource struct {
	signals map[string]marketdata.ExogenousContext
	err     error
}

func (f *fakeSignalSource) GetRange(symbol string, from, to time.Time) (map[string]marketdata.ExogenousContext, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

func newTestService(bars *fakeBarSource, signals *fakeSignalSource) *Service {
	var sigSource SignalSource
	if signals != nil {
		sigSource = signals
	}
	return NewService(bars, sigSource, ScoringConfig{}, zerolog.Nop())
}

func TestService_Predict(t *testing.T) {
	svc := newTestService(&fakeBarSource{
		bars: map[string][]marketdata.DailyBar{"AAPL": trendingBars(250)},
	}, nil)

	result, err := svc.Predict("AAPL", RequestOptions{Days: 5})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", result.Symbol)
	assert.Len(t, result.Predictions, 5)
}

func TestService_PredictUnknownSymbol(t *testing.T) {
	svc := newTestService(&fakeBarSource{}, nil)

	result, err := svc.Predict("GHOST", RequestOptions{Days: 5})
	require.NoError(t, err)
	assert.Empty(t, result.Predictions)
	assert.NotEmpty(t, result.Note)
}

func TestService_PredictInvalidBaseline(t *testing.T) {
	svc := newTestService(&fakeBarSource{}, nil)

	_, err := svc.Predict("AAPL", RequestOptions{Days: 5, Baseline: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestService_PredictSignalFailureDegrades(t *testing.T) {
	svc := newTestService(
		&fakeBarSource{bars: map[string][]marketdata.DailyBar{"AAPL": trendingBars(250)}},
		&fakeSignalSource{err: errors.New("signals db locked")},
	)

	// A broken signal store degrades to all-false exogenous factors
	// instead of failing the prediction.
	result, err := svc.Predict("AAPL", RequestOptions{Days: 3})
	require.NoError(t, err)
	assert.Len(t, result.Predictions, 3)
}

func TestService_Scan(t *testing.T) {
	svc := newTestService(&fakeBarSource{
		bars: map[string][]marketdata.DailyBar{
			"AAPL": trendingBars(250),
			"MSFT": trendingBars(250),
		},
		errs: map[string]error{
			"BAD": errors.New("history database corrupted"),
		},
	}, nil)

	scan := svc.Scan([]string{"MSFT", "AAPL", "BAD"}, RequestOptions{Days: 1})

	require.Len(t, scan.Results, 2)
	// Output order is alphabetical regardless of input or completion order.
	assert.Equal(t, "AAPL", scan.Results[0].Symbol)
	assert.Equal(t, "MSFT", scan.Results[1].Symbol)

	require.Contains(t, scan.Errors, "BAD")
	assert.Contains(t, scan.Errors["BAD"], "corrupted")

	assert.Equal(t, 3, scan.Summary.Symbols)
	assert.Equal(t, 1, scan.Summary.Failed)
}

func TestService_ScanSummary(t *testing.T) {
	svc := newTestService(&fakeBarSource{
		bars: map[string][]marketdata.DailyBar{
			"TREND": trendingBars(250),
			"EMPTY": nil,
		},
	}, nil)

	scan := svc.Scan([]string{"TREND", "EMPTY"}, RequestOptions{Days: 1})

	assert.Equal(t, 1, scan.Summary.EmptyResults)
	// The trending series activates enough weight to clear the threshold.
	assert.Equal(t, 1, scan.Summary.HighCount)
	assert.Greater(t, scan.Summary.MeanScore, 0.0)
}
