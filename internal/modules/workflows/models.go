package workflows

import "time"

// Workflow is a named, optionally scheduled batch scan: a symbol list
// plus the prediction knobs to run them with.
type Workflow struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Symbols    []string   `json:"symbols"`
	Schedule   string     `json:"schedule"`
	Days       int        `json:"days"`
	FutureDays int        `json:"future_days"`
	Baseline   string     `json:"baseline,omitempty"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
}
