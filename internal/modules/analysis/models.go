package analysis

import "time"

// Analysis is one persisted prediction run: the request parameters and
// the generated records, frozen at creation time so later weight changes
// do not rewrite history.
type Analysis struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Params    Params    `json:"params"`
	Records   []byte    `json:"-"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Params captures the request knobs an analysis was generated with.
type Params struct {
	Days       int    `json:"days"`
	FutureDays int    `json:"future_days"`
	Baseline   string `json:"baseline,omitempty"`
}

// Summary is the list-view projection of an analysis, without the
// serialized record payload.
type Summary struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Params    Params    `json:"params"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
