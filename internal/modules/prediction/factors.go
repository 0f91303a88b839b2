package prediction

import (
	"time"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

// FactorID identifies one of the boolean market factors feeding the
// composite score. The set is closed; unknown identifiers are rejected
// at config construction.
type FactorID string

const (
	FactorVolumeSpike    FactorID = "volume_spike"
	FactorBreakMA50      FactorID = "break_ma50"
	FactorBreakMA200     FactorID = "break_ma200"
	FactorRSIOver60      FactorID = "rsi_over_60"
	FactorMarketUp       FactorID = "market_up"
	FactorSectorUp       FactorID = "sector_up"
	FactorEarningsWindow FactorID = "earnings_window"
	FactorShortCovering  FactorID = "short_covering"
	FactorMacroTailwind  FactorID = "macro_tailwind"
	FactorNewsPositive   FactorID = "news_positive"
)

// Fixed factor thresholds.
const (
	volumeSpikeThreshold = 1.5
	rsiThreshold         = 60.0
)

// factorOrder is the canonical ordering used for active-factor lists and
// JSON output. Keep deterministic so identical inputs serialize
// identically.
var factorOrder = []FactorID{
	FactorVolumeSpike,
	FactorBreakMA50,
	FactorBreakMA200,
	FactorRSIOver60,
	FactorMarketUp,
	FactorSectorUp,
	FactorEarningsWindow,
	FactorShortCovering,
	FactorMacroTailwind,
	FactorNewsPositive,
}

var factorDescriptions = map[FactorID]string{
	FactorVolumeSpike:    "Volume spiked above 1.5x its 20-day average",
	FactorBreakMA50:      "Close broke above the 50-day moving average",
	FactorBreakMA200:     "Close broke above the 200-day moving average",
	FactorRSIOver60:      "14-day RSI above 60 indicates strong momentum",
	FactorMarketUp:       "Broad market index moved up",
	FactorSectorUp:       "Sector index moved up",
	FactorEarningsWindow: "Inside an earnings announcement window",
	FactorShortCovering:  "Short covering pressure detected",
	FactorMacroTailwind:  "Favorable macro environment",
	FactorNewsPositive:   "Positive news sentiment",
}

// AllFactors returns the closed factor set in canonical order.
func AllFactors() []FactorID {
	out := make([]FactorID, len(factorOrder))
	copy(out, factorOrder)
	return out
}

// FactorDescription returns the static human-readable description for a
// factor, or an empty string for unknown identifiers.
func FactorDescription(id FactorID) string {
	return factorDescriptions[id]
}

func knownFactor(id FactorID) bool {
	_, ok := factorDescriptions[id]
	return ok
}

// FactorSet holds the evaluated boolean factors for a single day.
type FactorSet struct {
	Date           time.Time `json:"date"`
	VolumeSpike    bool      `json:"volume_spike"`
	BreakMA50      bool      `json:"break_ma50"`
	BreakMA200     bool      `json:"break_ma200"`
	RSIOver60      bool      `json:"rsi_over_60"`
	MarketUp       bool      `json:"market_up"`
	SectorUp       bool      `json:"sector_up"`
	EarningsWindow bool      `json:"earnings_window"`
	ShortCovering  bool      `json:"short_covering"`
	MacroTailwind  bool      `json:"macro_tailwind"`
	NewsPositive   bool      `json:"news_positive"`
}

// Active reports whether the given factor is set.
func (f FactorSet) Active(id FactorID) bool {
	switch id {
	case FactorVolumeSpike:
		return f.VolumeSpike
	case FactorBreakMA50:
		return f.BreakMA50
	case FactorBreakMA200:
		return f.BreakMA200
	case FactorRSIOver60:
		return f.RSIOver60
	case FactorMarketUp:
		return f.MarketUp
	case FactorSectorUp:
		return f.SectorUp
	case FactorEarningsWindow:
		return f.EarningsWindow
	case FactorShortCovering:
		return f.ShortCovering
	case FactorMacroTailwind:
		return f.MacroTailwind
	case FactorNewsPositive:
		return f.NewsPositive
	}
	return false
}

func (f *FactorSet) set(id FactorID, v bool) {
	switch id {
	case FactorVolumeSpike:
		f.VolumeSpike = v
	case FactorBreakMA50:
		f.BreakMA50 = v
	case FactorBreakMA200:
		f.BreakMA200 = v
	case FactorRSIOver60:
		f.RSIOver60 = v
	case FactorMarketUp:
		f.MarketUp = v
	case FactorSectorUp:
		f.SectorUp = v
	case FactorEarningsWindow:
		f.EarningsWindow = v
	case FactorShortCovering:
		f.ShortCovering = v
	case FactorMacroTailwind:
		f.MacroTailwind = v
	case FactorNewsPositive:
		f.NewsPositive = v
	}
}

// ActiveIDs returns the active factors in canonical order.
func (f FactorSet) ActiveIDs() []FactorID {
	var out []FactorID
	for _, id := range factorOrder {
		if f.Active(id) {
			out = append(out, id)
		}
	}
	return out
}

// AnyActive reports whether at least one factor is set.
func (f FactorSet) AnyActive() bool {
	for _, id := range factorOrder {
		if f.Active(id) {
			return true
		}
	}
	return false
}

// WithDate returns a copy of the factor set stamped with a new date.
// Used when extrapolating a baseline forward.
func (f FactorSet) WithDate(date time.Time) FactorSet {
	f.Date = date
	return f
}

// EvaluateFactors maps one day's indicators plus optional exogenous
// context to the fixed factor set. Missing upstream data always resolves
// to false; factor evaluation never fails.
func EvaluateFactors(ind IndicatorRecord, ctx marketdata.ExogenousContext) FactorSet {
	f := FactorSet{Date: ind.Date}

	if ind.VolumeSpikeRatio != nil && *ind.VolumeSpikeRatio > volumeSpikeThreshold {
		f.VolumeSpike = true
	}
	if ind.Valid && ind.MA50 != nil && ind.Close > *ind.MA50 {
		f.BreakMA50 = true
	}
	if ind.Valid && ind.MA200 != nil && ind.Close > *ind.MA200 {
		f.BreakMA200 = true
	}
	if ind.RSI != nil && *ind.RSI > rsiThreshold {
		f.RSIOver60 = true
	}

	f.MarketUp = ctx.MarketUp
	f.SectorUp = ctx.SectorUp
	f.EarningsWindow = ctx.EarningsWindow
	f.ShortCovering = ctx.ShortCovering
	f.MacroTailwind = ctx.MacroTailwind
	f.NewsPositive = ctx.NewsPositive

	return f
}
