package workflows

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/prediction"
)

// Scanner runs a multi-symbol prediction scan.
type Scanner interface {
	Scan(symbols []string, opts prediction.RequestOptions) *prediction.ScanResult
}

// Job executes one workflow. It satisfies the scheduler's job contract
// and is registered once per enabled workflow at startup.
type Job struct {
	workflowID string
	name       string
	repo       *Repository
	scanner    Scanner
	log        zerolog.Logger
}

// NewJob creates a scheduled job for one workflow.
func NewJob(w Workflow, repo *Repository, scanner Scanner, log zerolog.Logger) *Job {
	return &Job{
		workflowID: w.ID,
		name:       fmt.Sprintf("workflow_%s", w.Name),
		repo:       repo,
		scanner:    scanner,
		log:        log.With().Str("job", "workflow").Str("workflow_id", w.ID).Logger(),
	}
}

// Name returns the job name for scheduler logs.
func (j *Job) Name() string {
	return j.name
}

// Run re-reads the workflow so edits made after registration still apply,
// then scans its symbols and stamps the run time.
func (j *Job) Run() error {
	w, err := j.repo.Get(j.workflowID)
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}
	if w == nil {
		j.log.Warn().Msg("Workflow no longer exists, skipping")
		return nil
	}
	if !w.Enabled {
		j.log.Debug().Msg("Workflow disabled, skipping")
		return nil
	}

	days := w.Days
	if days == 0 {
		days = prediction.MinRequestedDays
	}

	scan := j.scanner.Scan(w.Symbols, prediction.RequestOptions{
		Days:       days,
		FutureDays: w.FutureDays,
		Baseline:   w.Baseline,
		Sort:       prediction.DefaultSort(),
	})

	if err := j.repo.MarkRun(w.ID, time.Now().UTC()); err != nil {
		j.log.Warn().Err(err).Msg("Failed to stamp workflow run time")
	}

	j.log.Info().
		Str("workflow", w.Name).
		Int("symbols", scan.Summary.Symbols).
		Int("failed", scan.Summary.Failed).
		Int("high_probability", scan.Summary.HighCount).
		Msg("Workflow scan completed")

	return nil
}
