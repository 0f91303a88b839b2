package prediction

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
	"github.com/jsantori/tickerlens/pkg/formulas"
)

// BarSource supplies chronologically ordered daily bars for a symbol.
type BarSource interface {
	GetDailyBars(symbol string, limit int) ([]marketdata.DailyBar, error)
}

// SignalSource supplies stored exogenous context keyed by date.
type SignalSource interface {
	GetRange(symbol string, from, to time.Time) (map[string]marketdata.ExogenousContext, error)
}

// RequestOptions are the caller-tunable knobs for one prediction request.
type RequestOptions struct {
	Days       int
	FutureDays int
	Baseline   string
	Filters    *Filters
	Sort       SortSpec
}

// Service wires the generator to the market data and signal stores.
type Service struct {
	bars      BarSource
	signals   SignalSource
	generator *Generator
	config    ScoringConfig
	log       zerolog.Logger
}

// NewService creates a new prediction service. A zero config falls back
// to the defaults.
func NewService(bars BarSource, signals SignalSource, config ScoringConfig, log zerolog.Logger) *Service {
	if config.IsZero() {
		config = DefaultScoringConfig()
	}
	return &Service{
		bars:      bars,
		signals:   signals,
		generator: NewGenerator(log),
		config:    config,
		log:       log.With().Str("service", "prediction").Logger(),
	}
}

// Config returns the service's scoring configuration.
func (s *Service) Config() ScoringConfig {
	return s.config
}

// Predict fetches data for one symbol and generates its prediction
// sequence. The fetch window covers the full indicator lookback plus the
// requested days so long-window indicators are defined whenever enough
// history exists.
func (s *Service) Predict(symbol string, opts RequestOptions) (*Result, error) {
	strategy, err := BaselineStrategyByName(opts.Baseline)
	if err != nil {
		return nil, err
	}

	// Over-fetch slightly: gaps in the stored series must not starve the
	// MA200 window.
	limit := LookbackNeeded + MaxRequestedDays + 50
	bars, err := s.bars.GetDailyBars(symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}

	context := map[string]marketdata.ExogenousContext{}
	if s.signals != nil && len(bars) > 0 {
		from := bars[0].Date
		to := bars[len(bars)-1].Date
		context, err = s.signals.GetRange(symbol, from, to)
		if err != nil {
			// Missing exogenous context degrades to all-false factors.
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to load market signals")
			context = map[string]marketdata.ExogenousContext{}
		}
	}

	return s.generator.Generate(GenerateParams{
		Symbol:        symbol,
		Bars:          bars,
		RequestedDays: opts.Days,
		FutureDays:    opts.FutureDays,
		Config:        s.config,
		Context:       context,
		Baseline:      strategy,
		Filters:       opts.Filters,
		Sort:          opts.Sort,
	})
}

// ScanResult aggregates per-symbol prediction runs. Failures are
// collected per symbol instead of aborting the scan.
type ScanResult struct {
	Results  []*Result         `json:"results"`
	Errors   map[string]string `json:"errors,omitempty"`
	Summary  ScanSummary       `json:"summary"`
	ScanWide time.Time         `json:"generated_at"`
}

// ScanSummary holds aggregate statistics over the latest historical
// score of every successfully scanned symbol.
type ScanSummary struct {
	Symbols      int     `json:"symbols"`
	Failed       int     `json:"failed"`
	MeanScore    float64 `json:"mean_score"`
	StdDevScore  float64 `json:"stddev_score"`
	HighCount    int     `json:"high_probability_count"`
	ModerateLow  int     `json:"moderate_count"`
	LowCount     int     `json:"low_probability_count"`
	EmptyResults int     `json:"empty_results"`
}

// Scan runs predictions for many symbols concurrently. Each symbol is
// isolated: one failure never aborts the others.
func (s *Service) Scan(symbols []string, opts RequestOptions) *ScanResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []*Result
		errs    = make(map[string]string)
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					errs[symbol] = fmt.Sprintf("panic: %v", r)
					mu.Unlock()
					s.log.Error().Str("symbol", symbol).Interface("panic", r).Msg("Scan worker panicked")
				}
			}()

			res, err := s.Predict(symbol, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[symbol] = err.Error()
				return
			}
			results = append(results, res)
		}(symbol)
	}
	wg.Wait()

	// Goroutine completion order is nondeterministic; fix the output order.
	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })

	scan := &ScanResult{
		Results:  results,
		Summary:  summarize(results, len(errs)),
		ScanWide: time.Now().UTC(),
	}
	if len(errs) > 0 {
		scan.Errors = errs
	}

	s.log.Info().
		Int("symbols", len(symbols)).
		Int("failed", len(errs)).
		Msg("Scan completed")

	return scan
}

// summarize computes aggregate statistics over the most recent
// historical prediction of each result.
func summarize(results []*Result, failed int) ScanSummary {
	summary := ScanSummary{
		Symbols: len(results) + failed,
		Failed:  failed,
	}

	var scores []float64
	for _, res := range results {
		latest := latestHistorical(res)
		if latest == nil {
			summary.EmptyResults++
			continue
		}

		scores = append(scores, latest.Score)
		switch latest.Level {
		case LevelHighProbability:
			summary.HighCount++
		case LevelModerate:
			summary.ModerateLow++
		default:
			summary.LowCount++
		}
	}

	summary.MeanScore = formulas.Mean(scores)
	summary.StdDevScore = formulas.StdDev(scores)

	return summary
}

// latestHistorical finds the most recent non-future record in a result.
func latestHistorical(res *Result) *PredictionRecord {
	var latest *PredictionRecord
	for i := range res.Predictions {
		r := &res.Predictions[i]
		if r.IsFuture {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	return latest
}
