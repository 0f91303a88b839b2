package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScoringConfig(t *testing.T) {
	cfg := DefaultScoringConfig()

	assert.False(t, cfg.IsZero())
	assert.InDelta(t, 1.0, cfg.TotalWeight(), 1e-9, "default weights must sum to 1")
	assert.Equal(t, 0.45, cfg.Threshold())
	assert.Equal(t, 0.7, cfg.ModerateRatio())

	for _, id := range AllFactors() {
		assert.Greater(t, cfg.Weight(id), 0.0, "factor %s must carry weight", id)
	}
}

func TestNewScoringConfig_Validation(t *testing.T) {
	valid := map[FactorID]float64{FactorVolumeSpike: 0.5, FactorBreakMA200: 0.5}

	tests := []struct {
		name          string
		weights       map[FactorID]float64
		threshold     float64
		moderateRatio float64
		wantErr       bool
	}{
		{name: "valid config", weights: valid, threshold: 0.45, moderateRatio: 0.7},
		{name: "empty weights", weights: nil, threshold: 0.45, moderateRatio: 0.7, wantErr: true},
		{name: "unknown factor", weights: map[FactorID]float64{"made_up": 1}, threshold: 0.45, moderateRatio: 0.7, wantErr: true},
		{name: "negative weight", weights: map[FactorID]float64{FactorVolumeSpike: -0.1}, threshold: 0.45, moderateRatio: 0.7, wantErr: true},
		{name: "all-zero weights", weights: map[FactorID]float64{FactorVolumeSpike: 0}, threshold: 0.45, moderateRatio: 0.7, wantErr: true},
		{name: "threshold above 1", weights: valid, threshold: 1.5, moderateRatio: 0.7, wantErr: true},
		{name: "negative threshold", weights: valid, threshold: -0.1, moderateRatio: 0.7, wantErr: true},
		{name: "moderate ratio of zero", weights: valid, threshold: 0.45, moderateRatio: 0, wantErr: true},
		{name: "moderate ratio of one", weights: valid, threshold: 0.45, moderateRatio: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewScoringConfig(tt.weights, tt.threshold, tt.moderateRatio)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.True(t, cfg.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, cfg.IsZero())
		})
	}
}

func TestNewScoringConfig_CopiesWeights(t *testing.T) {
	weights := map[FactorID]float64{FactorVolumeSpike: 0.5, FactorBreakMA200: 0.5}
	cfg, err := NewScoringConfig(weights, 0.45, 0.7)
	require.NoError(t, err)

	weights[FactorVolumeSpike] = 99
	assert.Equal(t, 0.5, cfg.Weight(FactorVolumeSpike))
}

func TestScore_Buckets(t *testing.T) {
	cfg := DefaultScoringConfig()

	tests := []struct {
		name           string
		factors        FactorSet
		wantScore      float64
		wantLevel      PredictionLevel
		wantConfidence float64
		description    string
	}{
		{
			name:           "no factors",
			factors:        FactorSet{},
			wantScore:      0,
			wantLevel:      LevelLowProbability,
			wantConfidence: 0,
			description:    "zero score, zero confidence",
		},
		{
			name:           "volume spike alone",
			factors:        FactorSet{VolumeSpike: true},
			wantScore:      0.25,
			wantLevel:      LevelLowProbability,
			wantConfidence: 0.15, // 0.25 * 0.6
			description:    "0.25 sits below the moderate floor of 0.315",
		},
		{
			name:           "both moving average breaks",
			factors:        FactorSet{BreakMA50: true, BreakMA200: true},
			wantScore:      0.35,
			wantLevel:      LevelModerate,
			wantConfidence: 0.28, // 0.35 * 0.8
			description:    "0.35 lands between 0.315 and 0.45",
		},
		{
			name:           "volume spike plus ma200 break hits the threshold",
			factors:        FactorSet{VolumeSpike: true, BreakMA200: true},
			wantScore:      0.45,
			wantLevel:      LevelHighProbability,
			wantConfidence: 0.45,
			description:    "threshold is inclusive for HIGH_PROBABILITY",
		},
		{
			name: "all factors active",
			factors: FactorSet{
				VolumeSpike: true, BreakMA50: true, BreakMA200: true,
				RSIOver60: true, MarketUp: true, SectorUp: true,
				EarningsWindow: true, ShortCovering: true,
				MacroTailwind: true, NewsPositive: true,
			},
			wantScore:      1.0,
			wantLevel:      LevelHighProbability,
			wantConfidence: 0.95, // capped
			description:    "confidence is capped at 0.95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(tt.factors, cfg)
			assert.InDelta(t, tt.wantScore, result.Score, 1e-9, tt.description)
			assert.Equal(t, tt.wantLevel, result.Level, tt.description)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 1e-9, tt.description)
			assert.Equal(t, result.Score >= cfg.Threshold(), result.AboveThreshold)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	factors := FactorSet{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		VolumeSpike: true,
		MarketUp:    true,
	}
	cfg := DefaultScoringConfig()

	first := Score(factors, cfg)
	second := Score(factors, cfg)
	assert.Equal(t, first, second)
}

func TestScore_NormalizesByTotalWeight(t *testing.T) {
	cfg, err := NewScoringConfig(map[FactorID]float64{
		FactorVolumeSpike: 2,
		FactorBreakMA50:   2,
	}, 0.45, 0.7)
	require.NoError(t, err)

	result := Score(FactorSet{VolumeSpike: true}, cfg)
	assert.InDelta(t, 0.5, result.Score, 1e-9, "2 of 4 total weight")
}

func TestScore_ZeroConfigFallsBackToDefaults(t *testing.T) {
	result := Score(FactorSet{VolumeSpike: true}, ScoringConfig{})
	assert.InDelta(t, 0.25, result.Score, 1e-9)
}

func TestScore_ActiveFactorsAnnotated(t *testing.T) {
	result := Score(FactorSet{BreakMA200: true, VolumeSpike: true}, DefaultScoringConfig())

	require.Len(t, result.ActiveFactors, 2)
	// Canonical factor order.
	assert.Equal(t, FactorVolumeSpike, result.ActiveFactors[0].Factor)
	assert.Equal(t, 0.25, result.ActiveFactors[0].Weight)
	assert.NotEmpty(t, result.ActiveFactors[0].Description)
	assert.Equal(t, FactorBreakMA200, result.ActiveFactors[1].Factor)
}

func TestScore_FactorWithZeroWeightStaysListed(t *testing.T) {
	cfg, err := NewScoringConfig(map[FactorID]float64{
		FactorVolumeSpike:  1,
		FactorNewsPositive: 0,
	}, 0.45, 0.7)
	require.NoError(t, err)

	result := Score(FactorSet{NewsPositive: true}, cfg)
	assert.Zero(t, result.Score)
	require.Len(t, result.ActiveFactors, 1)
	assert.Equal(t, FactorNewsPositive, result.ActiveFactors[0].Factor)
}
