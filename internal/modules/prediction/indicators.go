package prediction

import (
	"math"
	"time"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
	"github.com/jsantori/tickerlens/pkg/formulas"
)

// Moving average and RSI lookback windows.
const (
	MA20Window  = 20
	MA50Window  = 50
	MA200Window = 200
	RSIPeriod   = 14

	// VolumeMAWindow is the window for the average volume behind the
	// volume spike ratio.
	VolumeMAWindow = 20
)

// IndicatorRecord holds the derived indicator values for a single day.
// Pointer fields are nil while the lookback window is not yet filled;
// a nil indicator is never silently computed from a partial window.
type IndicatorRecord struct {
	Date             time.Time `json:"date"`
	Close            float64   `json:"close"`
	PctChange        float64   `json:"pct_change"`
	MA20             *float64  `json:"ma20,omitempty"`
	MA50             *float64  `json:"ma50,omitempty"`
	MA200            *float64  `json:"ma200,omitempty"`
	RSI              *float64  `json:"rsi,omitempty"`
	VolumeSpikeRatio *float64  `json:"volume_spike_ratio,omitempty"`

	// Valid reports whether the close for this bar was usable. Market
	// data feeds occasionally deliver zero or garbage closes; those bars
	// keep their slot in the series but carry no derived values and do
	// not contribute to moving averages.
	Valid bool `json:"-"`
}

// ComputeIndicators derives per-day indicators from a chronologically
// ordered bar series. The output is order-preserving with exactly one
// record per input bar; an empty input yields an empty output.
func ComputeIndicators(bars []marketdata.DailyBar) []IndicatorRecord {
	if len(bars) == 0 {
		return []IndicatorRecord{}
	}

	records := make([]IndicatorRecord, len(bars))
	for i, bar := range bars {
		records[i] = IndicatorRecord{
			Date:  bar.Date,
			Close: bar.Close,
			Valid: validClose(bar.Close),
		}
	}

	computePctChange(records)
	computeMovingAverages(records)
	computeRSI(records)
	computeVolumeSpike(bars, records)

	return records
}

func validClose(close float64) bool {
	return close > 0 && !math.IsNaN(close) && !math.IsInf(close, 0)
}

// computePctChange fills the day-over-day percentage change. The first bar
// is always 0 (no prior bar), and a change is only defined between two
// consecutive valid closes.
func computePctChange(records []IndicatorRecord) {
	for i := 1; i < len(records); i++ {
		if !records[i].Valid || !records[i-1].Valid {
			continue
		}
		records[i].PctChange = (records[i].Close - records[i-1].Close) / records[i-1].Close
	}
}

// computeMovingAverages fills MA20/MA50/MA200. The window is positional
// (trailing N bars inclusive of current); invalid bars inside the window
// are skipped rather than dragging the average toward zero.
func computeMovingAverages(records []IndicatorRecord) {
	for i := range records {
		if !records[i].Valid {
			continue
		}
		records[i].MA20 = trailingAverage(records, i, MA20Window)
		records[i].MA50 = trailingAverage(records, i, MA50Window)
		records[i].MA200 = trailingAverage(records, i, MA200Window)
	}
}

// trailingAverage averages the valid closes in the trailing window ending
// at index i. Returns nil when the series is shorter than the window or
// no valid close falls inside it.
func trailingAverage(records []IndicatorRecord, i, window int) *float64 {
	if i+1 < window {
		return nil
	}

	sum := 0.0
	count := 0
	for j := i - window + 1; j <= i; j++ {
		if records[j].Valid {
			sum += records[j].Close
			count++
		}
	}
	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	return &avg
}

// computeRSI fills the 14-period Wilder RSI. The RSI is computed over the
// compacted series of valid closes so that a single bad bar does not
// corrupt every value after it.
func computeRSI(records []IndicatorRecord) {
	validIdx := make([]int, 0, len(records))
	validCloses := make([]float64, 0, len(records))
	for i := range records {
		if records[i].Valid {
			validIdx = append(validIdx, i)
			validCloses = append(validCloses, records[i].Close)
		}
	}

	series := formulas.RSISeries(validCloses, RSIPeriod)
	for k, idx := range validIdx {
		records[idx].RSI = series[k]
	}
}

// computeVolumeSpike fills volume / MA20(volume). Undefined while fewer
// than 20 bars exist, when the bar has no volume, or when the trailing
// average volume is zero.
func computeVolumeSpike(bars []marketdata.DailyBar, records []IndicatorRecord) {
	for i := range records {
		if !records[i].Valid || bars[i].Volume == nil {
			continue
		}
		if i+1 < VolumeMAWindow {
			continue
		}

		sum := 0.0
		count := 0
		for j := i - VolumeMAWindow + 1; j <= i; j++ {
			if bars[j].Volume != nil {
				sum += float64(*bars[j].Volume)
				count++
			}
		}
		if count == 0 {
			continue
		}

		avg := sum / float64(count)
		if avg <= 0 {
			continue
		}

		ratio := float64(*bars[i].Volume) / avg
		records[i].VolumeSpikeRatio = &ratio
	}
}
