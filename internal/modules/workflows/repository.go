package workflows

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timestampFormat = time.RFC3339

// Repository stores workflows on the main application database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new workflow repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "workflows").Logger(),
	}
}

// Create persists a new workflow and returns it with its generated ID.
func (r *Repository) Create(w Workflow) (*Workflow, error) {
	now := time.Now().UTC()
	w.ID = uuid.New().String()
	w.CreatedAt = now
	w.UpdatedAt = now
	w.LastRunAt = nil

	symbolsJSON, err := json.Marshal(w.Symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow symbols: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO workflows
		(id, name, symbols, schedule, days, future_days, baseline, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.Name, string(symbolsJSON), w.Schedule, w.Days, w.FutureDays, w.Baseline,
		boolToInt(w.Enabled), now.Format(timestampFormat), now.Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to insert workflow: %w", err)
	}

	r.log.Info().Str("id", w.ID).Str("name", w.Name).Msg("Workflow created")
	return &w, nil
}

// Update rewrites the mutable fields of an existing workflow. Returns
// false when the workflow does not exist.
func (r *Repository) Update(w Workflow) (bool, error) {
	symbolsJSON, err := json.Marshal(w.Symbols)
	if err != nil {
		return false, fmt.Errorf("failed to marshal workflow symbols: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE workflows
		SET name = ?, symbols = ?, schedule = ?, days = ?, future_days = ?,
		    baseline = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`, w.Name, string(symbolsJSON), w.Schedule, w.Days, w.FutureDays, w.Baseline,
		boolToInt(w.Enabled), time.Now().UTC().Format(timestampFormat), w.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

// MarkRun stamps a workflow's last_run_at.
func (r *Repository) MarkRun(id string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE workflows SET last_run_at = ? WHERE id = ?`,
		at.UTC().Format(timestampFormat), id)
	if err != nil {
		return fmt.Errorf("failed to mark workflow run: %w", err)
	}
	return nil
}

// Get returns one workflow by ID, or nil when it does not exist.
func (r *Repository) Get(id string) (*Workflow, error) {
	rows, err := r.db.Query(selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	w, err := scanWorkflow(rows)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// List returns all workflows, newest first.
func (r *Repository) List() ([]Workflow, error) {
	return r.query(selectColumns + ` ORDER BY created_at DESC`)
}

// ListEnabled returns the workflows eligible for scheduled execution.
func (r *Repository) ListEnabled() ([]Workflow, error) {
	return r.query(selectColumns + ` WHERE enabled = 1 ORDER BY created_at`)
}

// Delete removes a workflow. Returns false when no row matched.
func (r *Repository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

const selectColumns = `
	SELECT id, name, symbols, schedule, days, future_days, baseline, enabled,
	       created_at, updated_at, last_run_at
	FROM workflows
`

func (r *Repository) query(query string, args ...interface{}) ([]Workflow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := []Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func scanWorkflow(rows *sql.Rows) (*Workflow, error) {
	var (
		w           Workflow
		symbolsJSON string
		enabled     int
		createdAt   string
		updatedAt   string
		lastRunAt   sql.NullString
	)

	err := rows.Scan(&w.ID, &w.Name, &symbolsJSON, &w.Schedule, &w.Days, &w.FutureDays,
		&w.Baseline, &enabled, &createdAt, &updatedAt, &lastRunAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := json.Unmarshal([]byte(symbolsJSON), &w.Symbols); err != nil {
		return nil, fmt.Errorf("failed to decode workflow symbols: %w", err)
	}
	w.Enabled = enabled != 0
	w.CreatedAt, _ = time.Parse(timestampFormat, createdAt)
	w.UpdatedAt, _ = time.Parse(timestampFormat, updatedAt)
	if lastRunAt.Valid {
		t, err := time.Parse(timestampFormat, lastRunAt.String)
		if err == nil {
			w.LastRunAt = &t
		}
	}

	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
