package yahoo

import (
	"time"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

// HistoricalPrice is one day of OHLCV data as returned by the chart API.
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// ToDailyBars converts fetched prices into the storage representation.
// Timestamps are truncated to dates in UTC.
func ToDailyBars(prices []HistoricalPrice) []marketdata.DailyBar {
	bars := make([]marketdata.DailyBar, 0, len(prices))
	for _, p := range prices {
		open, high, low := p.Open, p.High, p.Low
		volume := p.Volume
		y, m, d := p.Date.UTC().Date()

		bars = append(bars, marketdata.DailyBar{
			Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open:   &open,
			High:   &high,
			Low:    &low,
			Close:  p.Close,
			Volume: &volume,
		})
	}
	return bars
}
