package prediction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// weightsFile is the YAML shape for an externally supplied scoring
// configuration. Unset fields fall back to the built-in defaults, so a
// deployment can override a single weight without restating the rest.
//
// Example:
//
//	threshold: 0.45
//	moderate_ratio: 0.7
//	weights:
//	  volume_spike: 0.30
//	  break_ma200: 0.15
type weightsFile struct {
	Threshold     *float64           `yaml:"threshold"`
	ModerateRatio *float64           `yaml:"moderate_ratio"`
	Weights       map[string]float64 `yaml:"weights"`
}

// LoadScoringConfig reads a scoring configuration from a YAML file,
// overlaying it on the defaults. The merged result goes through the same
// validation as NewScoringConfig, so a bad file is rejected at startup
// rather than at scoring time.
func LoadScoringConfig(path string) (ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to read weights file: %w", err)
	}

	var file weightsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ScoringConfig{}, fmt.Errorf("failed to parse weights file: %w", err)
	}

	weights := make(map[FactorID]float64, len(defaultWeights))
	for id, w := range defaultWeights {
		weights[id] = w
	}
	for name, w := range file.Weights {
		id := FactorID(name)
		if !knownFactor(id) {
			return ScoringConfig{}, fmt.Errorf("%w: unknown factor %q in weights file", ErrInvalidConfig, name)
		}
		weights[id] = w
	}

	threshold := DefaultThreshold
	if file.Threshold != nil {
		threshold = *file.Threshold
	}
	moderateRatio := DefaultModerateRatio
	if file.ModerateRatio != nil {
		moderateRatio = *file.ModerateRatio
	}

	return NewScoringConfig(weights, threshold, moderateRatio)
}
