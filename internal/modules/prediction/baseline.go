package prediction

import "fmt"

// Baseline strategy names accepted from callers.
const (
	BaselineMostRecentActive = "most-recent-active"
	BaselineMostRecentAny    = "most-recent-any"
	BaselineNDayAverage      = "n-day-average"
)

// DefaultBaselineWindow bounds how far back the baseline strategies look
// for a usable factor state.
const DefaultBaselineWindow = 10

// BaselineStrategy selects the factor set that future-day predictions
// extrapolate from. History is ordered oldest first; the most recent
// observed day is the last element.
type BaselineStrategy interface {
	Name() string
	// Select returns the baseline factor set, or false when the history
	// is empty.
	Select(history []FactorSet) (FactorSet, bool)
}

// BaselineStrategyByName resolves a strategy name. An empty name maps to
// the default most-recent-active strategy.
func BaselineStrategyByName(name string) (BaselineStrategy, error) {
	switch name {
	case "", BaselineMostRecentActive:
		return MostRecentActiveStrategy{Window: DefaultBaselineWindow}, nil
	case BaselineMostRecentAny:
		return MostRecentAnyStrategy{}, nil
	case BaselineNDayAverage:
		return NDayAverageStrategy{Days: DefaultBaselineWindow}, nil
	default:
		return nil, fmt.Errorf("%w: unknown baseline strategy %q", ErrInvalidParameter, name)
	}
}

// MostRecentActiveStrategy picks the most recent day within the window
// that has at least one active factor. When no day qualifies it falls
// back to the most recent day as-is, even if that day has zero active
// factors. The fallback intentionally produces all-zero future scores in
// flat windows; changing it is a product decision, not a bug fix, so the
// alternative strategies exist behind this interface instead.
type MostRecentActiveStrategy struct {
	Window int
}

func (s MostRecentActiveStrategy) Name() string { return BaselineMostRecentActive }

func (s MostRecentActiveStrategy) Select(history []FactorSet) (FactorSet, bool) {
	if len(history) == 0 {
		return FactorSet{}, false
	}

	window := s.Window
	if window <= 0 {
		window = DefaultBaselineWindow
	}

	start := len(history) - window
	if start < 0 {
		start = 0
	}
	for i := len(history) - 1; i >= start; i-- {
		if history[i].AnyActive() {
			return history[i], true
		}
	}

	return history[len(history)-1], true
}

// MostRecentAnyStrategy always takes the most recent day's factors.
type MostRecentAnyStrategy struct{}

func (s MostRecentAnyStrategy) Name() string { return BaselineMostRecentAny }

func (s MostRecentAnyStrategy) Select(history []FactorSet) (FactorSet, bool) {
	if len(history) == 0 {
		return FactorSet{}, false
	}
	return history[len(history)-1], true
}

// NDayAverageStrategy majority-votes each factor over the last Days
// observed days: a factor is active in the baseline when it was active
// on at least half of them. The baseline is stamped with the most recent
// day's date.
type NDayAverageStrategy struct {
	Days int
}

func (s NDayAverageStrategy) Name() string { return BaselineNDayAverage }

func (s NDayAverageStrategy) Select(history []FactorSet) (FactorSet, bool) {
	if len(history) == 0 {
		return FactorSet{}, false
	}

	days := s.Days
	if days <= 0 {
		days = DefaultBaselineWindow
	}

	start := len(history) - days
	if start < 0 {
		start = 0
	}
	window := history[start:]

	baseline := FactorSet{Date: history[len(history)-1].Date}
	for _, id := range factorOrder {
		count := 0
		for _, fs := range window {
			if fs.Active(id) {
				count++
			}
		}
		baseline.set(id, count*2 >= len(window))
	}

	return baseline, true
}
