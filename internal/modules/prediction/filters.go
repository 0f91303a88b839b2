package prediction

import (
	"fmt"
	"sort"
	"time"
)

// Filters are optional, AND-combined predicates applied to the assembled
// prediction sequence (historical and future) before sorting. All bounds
// are inclusive; score and confidence bounds are on the internal 0-1
// scale.
type Filters struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	MinScore      *float64
	MaxScore      *float64
	MinConfidence *float64
	MaxConfidence *float64
	Level         *PredictionLevel
}

// Match reports whether a record passes every configured predicate.
func (f *Filters) Match(r PredictionRecord) bool {
	if f == nil {
		return true
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	if f.MinScore != nil && r.Score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && r.Score > *f.MaxScore {
		return false
	}
	if f.MinConfidence != nil && r.Confidence < *f.MinConfidence {
		return false
	}
	if f.MaxConfidence != nil && r.Confidence > *f.MaxConfidence {
		return false
	}
	if f.Level != nil && r.Level != *f.Level {
		return false
	}
	return true
}

// SortField selects the sort key for the result sequence.
type SortField string

const (
	SortByDate       SortField = "date"
	SortByScore      SortField = "score"
	SortByConfidence SortField = "confidence"
	SortByPrediction SortField = "prediction"
)

// SortSpec combines a sort field with a direction. The zero value sorts
// by date descending, which preserves the most-recent-first contract of
// the historical pass.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// DefaultSort returns the contractual default ordering.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByDate, Descending: true}
}

// ParseSortField validates a caller-supplied sort field name. An empty
// name maps to the date field.
func ParseSortField(name string) (SortField, error) {
	switch SortField(name) {
	case "", SortByDate:
		return SortByDate, nil
	case SortByScore:
		return SortByScore, nil
	case SortByConfidence:
		return SortByConfidence, nil
	case SortByPrediction:
		return SortByPrediction, nil
	default:
		return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidParameter, name)
	}
}

// levelRank orders prediction levels: HIGH_PROBABILITY > MODERATE >
// LOW_PROBABILITY.
var levelRank = map[PredictionLevel]int{
	LevelHighProbability: 3,
	LevelModerate:        2,
	LevelLowProbability:  1,
}

// sortRecords stable-sorts records in place. Stability keeps the date
// order within equal keys deterministic.
func sortRecords(records []PredictionRecord, spec SortSpec) {
	if spec.Field == "" {
		spec = DefaultSort()
	}

	less := func(a, b PredictionRecord) bool {
		switch spec.Field {
		case SortByScore:
			return a.Score < b.Score
		case SortByConfidence:
			return a.Confidence < b.Confidence
		case SortByPrediction:
			return levelRank[a.Level] < levelRank[b.Level]
		default:
			return a.Date.Before(b.Date)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if spec.Descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
