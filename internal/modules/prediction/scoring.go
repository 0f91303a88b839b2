package prediction

import (
	"fmt"
	"math"
	"time"
)

// PredictionLevel is the three-level categorical prediction.
type PredictionLevel string

const (
	LevelHighProbability PredictionLevel = "HIGH_PROBABILITY"
	LevelModerate        PredictionLevel = "MODERATE"
	LevelLowProbability  PredictionLevel = "LOW_PROBABILITY"
)

// Default scoring parameters.
const (
	DefaultThreshold     = 0.45
	DefaultModerateRatio = 0.7

	// Confidence shaping per bucket.
	highConfidenceCap      = 0.95
	moderateConfidenceMult = 0.8
	lowConfidenceMult      = 0.6
)

// defaultWeights sum to 1.0. Price-derived factors carry most of the
// weight; the exogenous signals act as smaller boosters.
var defaultWeights = map[FactorID]float64{
	FactorVolumeSpike:    0.25,
	FactorBreakMA50:      0.15,
	FactorBreakMA200:     0.20,
	FactorRSIOver60:      0.10,
	FactorMarketUp:       0.10,
	FactorSectorUp:       0.05,
	FactorEarningsWindow: 0.05,
	FactorShortCovering:  0.03,
	FactorMacroTailwind:  0.04,
	FactorNewsPositive:   0.03,
}

// ScoringConfig holds the factor weights and bucket thresholds. It is an
// immutable value object: construct it with NewScoringConfig or
// DefaultScoringConfig and pass it by value. There is deliberately no
// mutable package-level default.
type ScoringConfig struct {
	weights       map[FactorID]float64
	totalWeight   float64
	threshold     float64
	moderateRatio float64
}

// NewScoringConfig validates and builds a scoring configuration.
// Weights must be non-negative with a positive total, threshold must be
// within [0,1] and moderateRatio within (0,1). Validation happens here,
// before any computation, so a bad config never reaches the engine.
func NewScoringConfig(weights map[FactorID]float64, threshold, moderateRatio float64) (ScoringConfig, error) {
	if len(weights) == 0 {
		return ScoringConfig{}, fmt.Errorf("%w: no factor weights configured", ErrInvalidConfig)
	}
	if threshold < 0 || threshold > 1 {
		return ScoringConfig{}, fmt.Errorf("%w: threshold %.4f outside [0,1]", ErrInvalidConfig, threshold)
	}
	if moderateRatio <= 0 || moderateRatio >= 1 {
		return ScoringConfig{}, fmt.Errorf("%w: moderate ratio %.4f outside (0,1)", ErrInvalidConfig, moderateRatio)
	}

	copied := make(map[FactorID]float64, len(weights))
	total := 0.0
	for id, w := range weights {
		if !knownFactor(id) {
			return ScoringConfig{}, fmt.Errorf("%w: unknown factor %q", ErrInvalidConfig, id)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return ScoringConfig{}, fmt.Errorf("%w: factor %q has invalid weight %v", ErrInvalidConfig, id, w)
		}
		copied[id] = w
		total += w
	}
	if total <= 0 {
		return ScoringConfig{}, fmt.Errorf("%w: total factor weight must be positive", ErrInvalidConfig)
	}

	return ScoringConfig{
		weights:       copied,
		totalWeight:   total,
		threshold:     threshold,
		moderateRatio: moderateRatio,
	}, nil
}

// DefaultScoringConfig returns the documented default configuration.
func DefaultScoringConfig() ScoringConfig {
	cfg, err := NewScoringConfig(defaultWeights, DefaultThreshold, DefaultModerateRatio)
	if err != nil {
		// Defaults are covered by tests; a failure here is a programming error.
		panic(err)
	}
	return cfg
}

// IsZero reports whether the config is the unusable zero value.
func (c ScoringConfig) IsZero() bool {
	return c.weights == nil
}

// Weight returns the configured weight for a factor (0 when unconfigured).
func (c ScoringConfig) Weight(id FactorID) float64 {
	return c.weights[id]
}

// TotalWeight returns the sum of all configured weights.
func (c ScoringConfig) TotalWeight() float64 {
	return c.totalWeight
}

// Threshold returns the HIGH_PROBABILITY score cutoff.
func (c ScoringConfig) Threshold() float64 {
	return c.threshold
}

// ModerateRatio returns the fraction of the threshold that bounds the
// MODERATE bucket from below.
func (c ScoringConfig) ModerateRatio() float64 {
	return c.moderateRatio
}

// WeightedFactor is one active factor annotated with its weight and a
// static description, as exposed to callers.
type WeightedFactor struct {
	Factor      FactorID `json:"factor"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description"`
}

// ScoreResult is the scored outcome for one day's factor set. Score and
// Confidence are always on the 0-1 scale internally; conversion to
// percentages happens only at the serialization boundary (see convert.go).
type ScoreResult struct {
	Date           time.Time        `json:"date"`
	Score          float64          `json:"score"`
	Confidence     float64          `json:"confidence"`
	Level          PredictionLevel  `json:"prediction"`
	ActiveFactors  []WeightedFactor `json:"active_factors"`
	AboveThreshold bool             `json:"above_threshold"`
}

// Score combines the active factors with the configured weights into a
// composite score, confidence and bucket. Pure function: identical
// (factors, config) inputs always produce identical results.
func Score(factors FactorSet, cfg ScoringConfig) ScoreResult {
	if cfg.IsZero() {
		cfg = DefaultScoringConfig()
	}

	activeWeight := 0.0
	active := make([]WeightedFactor, 0, len(factorOrder))
	for _, id := range factorOrder {
		if !factors.Active(id) {
			continue
		}
		w := cfg.Weight(id)
		activeWeight += w
		active = append(active, WeightedFactor{
			Factor:      id,
			Weight:      w,
			Description: factorDescriptions[id],
		})
	}

	raw := clamp01(activeWeight / cfg.TotalWeight())

	level, confidence := bucket(raw, cfg)

	return ScoreResult{
		Date:           factors.Date,
		Score:          raw,
		Confidence:     confidence,
		Level:          level,
		ActiveFactors:  active,
		AboveThreshold: raw >= cfg.Threshold(),
	}
}

// bucket maps a raw score to its prediction level and confidence.
// The three buckets partition [0,1]:
//
//	[threshold, 1]                      HIGH_PROBABILITY, confidence capped at 0.95
//	[threshold*moderateRatio, threshold) MODERATE, confidence = score * 0.8
//	[0, threshold*moderateRatio)         LOW_PROBABILITY, confidence = score * 0.6
func bucket(raw float64, cfg ScoringConfig) (PredictionLevel, float64) {
	switch {
	case raw >= cfg.Threshold():
		return LevelHighProbability, math.Min(raw, highConfidenceCap)
	case raw >= cfg.Threshold()*cfg.ModerateRatio():
		return LevelModerate, raw * moderateConfidenceMult
	default:
		return LevelLowProbability, raw * lowConfidenceMult
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
