package marketdata

import "time"

// DateFormat is the canonical date representation for daily data.
const DateFormat = "2006-01-02"

// DailyBar represents one daily OHLCV bar for an instrument.
// Bars are immutable inputs, ordered chronologically and unique per
// (symbol, date). Open/high/low/volume may be absent in imported data.
type DailyBar struct {
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  float64   `json:"close"`
	Volume *int64    `json:"volume,omitempty"`
}

// ExogenousContext carries externally observed signals for a single day.
// These are not derivable from price data; any signal the upstream source
// does not supply stays false so that incomplete context degrades to a
// lower score instead of halting computation.
type ExogenousContext struct {
	MarketUp       bool `json:"market_up"`
	SectorUp       bool `json:"sector_up"`
	EarningsWindow bool `json:"earnings_window"`
	ShortCovering  bool `json:"short_covering"`
	MacroTailwind  bool `json:"macro_tailwind"`
	NewsPositive   bool `json:"news_positive"`
}
