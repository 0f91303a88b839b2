package prediction

import (
	"fmt"
	"strings"
)

// buildInterpretation renders a one-line human-readable rationale for a
// scored day.
func buildInterpretation(r ScoreResult, isFuture bool) string {
	subject := "Conditions"
	if isFuture {
		subject = "Projected conditions"
	}

	switch r.Level {
	case LevelHighProbability:
		return fmt.Sprintf("%s favor a move higher: score %.2f with %s.",
			subject, r.Score, describeFactors(r.ActiveFactors))
	case LevelModerate:
		return fmt.Sprintf("%s are mildly constructive: score %.2f with %s.",
			subject, r.Score, describeFactors(r.ActiveFactors))
	default:
		if len(r.ActiveFactors) == 0 {
			return fmt.Sprintf("%s show no supporting factors; score %.2f.", subject, r.Score)
		}
		return fmt.Sprintf("%s remain weak: score %.2f despite %s.",
			subject, r.Score, describeFactors(r.ActiveFactors))
	}
}

func describeFactors(active []WeightedFactor) string {
	if len(active) == 0 {
		return "no active factors"
	}

	names := make([]string, len(active))
	for i, f := range active {
		names[i] = strings.ReplaceAll(string(f.Factor), "_", " ")
	}

	if len(names) == 1 {
		return "1 active factor (" + names[0] + ")"
	}
	return fmt.Sprintf("%d active factors (%s)", len(names), strings.Join(names, ", "))
}

// buildRecommendations renders short action hints per bucket. These are
// informational only, not trading advice surfaced as orders.
func buildRecommendations(r ScoreResult) []string {
	var recs []string

	switch r.Level {
	case LevelHighProbability:
		recs = append(recs, "Multiple factors aligned; consider reviewing entry criteria.")
		if r.Confidence >= 0.9 {
			recs = append(recs, "Confidence near cap; verify exogenous signals are current.")
		}
	case LevelModerate:
		recs = append(recs, "Partial factor alignment; wait for confirmation before acting.")
	default:
		recs = append(recs, "Weak factor support; no action suggested.")
	}

	for _, f := range r.ActiveFactors {
		if f.Factor == FactorEarningsWindow {
			recs = append(recs, "Earnings window is open; expect elevated volatility.")
			break
		}
	}

	return recs
}
