package prediction

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

// Request bounds and lookback requirements.
const (
	MinRequestedDays = 1
	MaxRequestedDays = 50
	MinFutureDays    = 0
	MaxFutureDays    = 30

	// LookbackNeeded is the number of prior bars required for every
	// indicator to be defined (MA200 is the longest window).
	LookbackNeeded = MA200Window
)

// PredictionRecord is one day's scored prediction, historical or future.
type PredictionRecord struct {
	ScoreResult

	Symbol          string     `json:"symbol"`
	IsFuture        bool       `json:"is_future"`
	BaselineDate    *time.Time `json:"baseline_date,omitempty"`
	Interpretation  string     `json:"interpretation"`
	Recommendations []string   `json:"recommendations"`
}

// Result is the assembled prediction sequence for one symbol. An empty
// Predictions slice with a non-empty Note means no data was available;
// an empty slice with an empty Note means everything was filtered out.
type Result struct {
	Symbol      string             `json:"symbol"`
	Predictions []PredictionRecord `json:"predictions"`
	Warnings    []string           `json:"warnings,omitempty"`
	Note        string             `json:"note,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// GenerateParams bundles the inputs for one generation run.
type GenerateParams struct {
	Symbol        string
	Bars          []marketdata.DailyBar
	RequestedDays int
	FutureDays    int

	// Config falls back to DefaultScoringConfig when zero.
	Config ScoringConfig

	// Context supplies exogenous signals keyed by date (YYYY-MM-DD).
	// Days without an entry get all-false context.
	Context map[string]marketdata.ExogenousContext

	// Baseline falls back to the most-recent-active strategy when nil.
	Baseline BaselineStrategy

	Filters *Filters
	Sort    SortSpec
}

// Generator orchestrates indicators, factors and scoring over a
// historical window and extrapolates future-day predictions from a
// baseline factor state. It is stateless and safe for concurrent use
// across symbols.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates a new prediction generator
func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{
		log: log.With().Str("component", "prediction_generator").Logger(),
	}
}

// Generate produces the ordered prediction sequence for one symbol.
// Structurally invalid parameters are rejected up front; an empty bar
// series yields an empty result with a diagnostic note, not an error.
func (g *Generator) Generate(params GenerateParams) (*Result, error) {
	if params.RequestedDays < MinRequestedDays || params.RequestedDays > MaxRequestedDays {
		return nil, fmt.Errorf("%w: requested days %d outside [%d,%d]",
			ErrInvalidParameter, params.RequestedDays, MinRequestedDays, MaxRequestedDays)
	}
	if params.FutureDays < MinFutureDays || params.FutureDays > MaxFutureDays {
		return nil, fmt.Errorf("%w: future days %d outside [%d,%d]",
			ErrInvalidParameter, params.FutureDays, MinFutureDays, MaxFutureDays)
	}

	cfg := params.Config
	if cfg.IsZero() {
		cfg = DefaultScoringConfig()
	}

	baseline := params.Baseline
	if baseline == nil {
		baseline = MostRecentActiveStrategy{Window: DefaultBaselineWindow}
	}

	result := &Result{
		Symbol:      params.Symbol,
		Predictions: []PredictionRecord{},
		GeneratedAt: time.Now().UTC(),
	}

	if len(params.Bars) == 0 {
		result.Note = "no price data available for symbol"
		return result, nil
	}

	bars := sortedBars(params.Bars)

	if len(bars) < LookbackNeeded+params.RequestedDays {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"only %d bars available, %d needed for full indicator lookback; long-window indicators may be undefined",
			len(bars), LookbackNeeded+params.RequestedDays))
	}

	indicators := ComputeIndicators(bars)
	factors := g.evaluateAll(indicators, params.Context, result)

	historical := g.historicalPass(params.Symbol, indicators, factors, params.RequestedDays, cfg)
	future := g.forwardWalk(params.Symbol, factors, params.FutureDays, cfg, baseline)

	records := append(historical, future...)

	filtered := records[:0:0]
	for _, r := range records {
		if params.Filters.Match(r) {
			filtered = append(filtered, r)
		}
	}

	sortRecords(filtered, params.Sort)
	result.Predictions = filtered

	g.log.Debug().
		Str("symbol", params.Symbol).
		Int("bars", len(bars)).
		Int("historical", len(historical)).
		Int("future", len(future)).
		Int("after_filters", len(filtered)).
		Msg("Predictions generated")

	return result, nil
}

// sortedBars returns the bars in ascending date order without mutating
// the caller's slice.
func sortedBars(bars []marketdata.DailyBar) []marketdata.DailyBar {
	sorted := make([]marketdata.DailyBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}

// evaluateAll maps every indicator record to its factor set, attaching
// any stored exogenous context for that date. Bad bars are reported as
// warnings but never abort the batch.
func (g *Generator) evaluateAll(
	indicators []IndicatorRecord,
	context map[string]marketdata.ExogenousContext,
	result *Result,
) []FactorSet {
	factors := make([]FactorSet, len(indicators))
	for i, ind := range indicators {
		if !ind.Valid {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"bar %s has an unusable close and was skipped in indicator windows",
				ind.Date.Format(marketdata.DateFormat)))
		}
		ctx := context[ind.Date.Format(marketdata.DateFormat)]
		factors[i] = EvaluateFactors(ind, ctx)
	}
	return factors
}

// historicalPass scores the most recent requestedDays observed days,
// most recent first. The descending order is a user-facing contract.
func (g *Generator) historicalPass(
	symbol string,
	indicators []IndicatorRecord,
	factors []FactorSet,
	requestedDays int,
	cfg ScoringConfig,
) []PredictionRecord {
	start := len(factors) - requestedDays
	if start < 0 {
		start = 0
	}

	var records []PredictionRecord
	for i := len(factors) - 1; i >= start; i-- {
		scored := Score(factors[i], cfg)
		records = append(records, PredictionRecord{
			ScoreResult:     scored,
			Symbol:          symbol,
			IsFuture:        false,
			Interpretation:  buildInterpretation(scored, false),
			Recommendations: buildRecommendations(scored),
		})
	}
	return records
}

// forwardWalk extrapolates futureDays business-day predictions by
// holding the baseline factor state constant and restamping its date.
func (g *Generator) forwardWalk(
	symbol string,
	factors []FactorSet,
	futureDays int,
	cfg ScoringConfig,
	strategy BaselineStrategy,
) []PredictionRecord {
	if futureDays == 0 || len(factors) == 0 {
		return nil
	}

	baseline, ok := strategy.Select(factors)
	if !ok {
		return nil
	}
	baselineDate := baseline.Date

	if !baseline.AnyActive() {
		g.log.Debug().
			Str("symbol", symbol).
			Str("strategy", strategy.Name()).
			Time("baseline_date", baselineDate).
			Msg("Baseline has no active factors; future predictions will score zero")
	}

	var records []PredictionRecord
	date := factors[len(factors)-1].Date
	for d := 0; d < futureDays; d++ {
		date = nextBusinessDay(date)
		scored := Score(baseline.WithDate(date), cfg)
		bd := baselineDate
		records = append(records, PredictionRecord{
			ScoreResult:     scored,
			Symbol:          symbol,
			IsFuture:        true,
			BaselineDate:    &bd,
			Interpretation:  buildInterpretation(scored, true),
			Recommendations: buildRecommendations(scored),
		})
	}
	return records
}

// nextBusinessDay returns the next weekday after date. Exchange holidays
// are not modeled; forward predictions for a holiday simply describe a
// day with no trading.
func nextBusinessDay(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
