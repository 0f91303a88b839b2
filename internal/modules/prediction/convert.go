package prediction

import "math"

// Score and confidence live on the 0-1 scale everywhere inside the
// engine. The HTTP layer exposes percentages, and this file is the only
// place where the two scales meet.

// ToPercent converts an internal 0-1 value to a percentage rounded to
// two decimals.
func ToPercent(v float64) float64 {
	return math.Round(v*10000) / 100
}

// FromPercent converts a percentage back to the internal 0-1 scale.
func FromPercent(v float64) float64 {
	return v / 100
}
