package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSISeries calculates the Wilder Relative Strength Index for every position
// in a close-price series.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods (Wilder smoothing)
//
// The result is aligned with the input: result[i] is the RSI at closes[i],
// or nil while fewer than `length` prior closes exist. When the average
// loss is zero the RSI is exactly 100. talib returns 0 for a series with
// neither gains nor losses, so the zero-loss case is pinned here; under
// Wilder smoothing the average loss is zero exactly until the first
// down-move.
func RSISeries(closes []float64, length int) []*float64 {
	out := make([]*float64, len(closes))
	if length <= 0 || len(closes) < length+1 {
		return out
	}

	rsi := talib.Rsi(closes, length)
	lossSeen := false
	for i := 1; i < len(closes); i++ {
		if closes[i] < closes[i-1] {
			lossSeen = true
		}
		if i < length {
			continue
		}

		v := rsi[i]
		if !lossSeen {
			v = 100
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		val := v
		out[i] = &val
	}

	return out
}

// RSI calculates the Wilder RSI for the most recent close in the series.
// Returns nil when fewer than length+1 closes are available.
func RSI(closes []float64, length int) *float64 {
	series := RSISeries(closes, length)
	if len(series) == 0 {
		return nil
	}
	return series[len(series)-1]
}
