package analysis

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timestampFormat = time.RFC3339

// Repository stores analyses on the main application database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "analyses").Logger(),
	}
}

// Create persists a new analysis and returns it with its generated ID.
func (r *Repository) Create(symbol string, params Params, records []byte, note string) (*Analysis, error) {
	a := &Analysis{
		ID:        uuid.New().String(),
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Params:    params,
		Records:   records,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis params: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO analyses (id, symbol, params, records, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Symbol, string(paramsJSON), string(records), a.Note, a.CreatedAt.Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	r.log.Info().Str("id", a.ID).Str("symbol", a.Symbol).Msg("Analysis saved")
	return a, nil
}

// Get returns one analysis by ID, or nil when it does not exist.
func (r *Repository) Get(id string) (*Analysis, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, params, records, note, created_at
		FROM analyses WHERE id = ?
	`, id)

	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}
	return a, nil
}

// List returns analysis summaries, newest first. An empty symbol lists
// everything.
func (r *Repository) List(symbol string) ([]Summary, error) {
	query := `
		SELECT id, symbol, params, note, created_at
		FROM analyses
	`
	args := []interface{}{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, strings.ToUpper(strings.TrimSpace(symbol)))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			s          Summary
			paramsJSON string
			note       sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &paramsJSON, &note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &s.Params); err != nil {
			return nil, fmt.Errorf("failed to decode analysis params: %w", err)
		}
		s.Note = note.String
		s.CreatedAt, _ = time.Parse(timestampFormat, createdAt)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return summaries, nil
}

// Delete removes an analysis. Returns false when no row matched.
func (r *Repository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete analysis: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

func scanAnalysis(row *sql.Row) (*Analysis, error) {
	var (
		a          Analysis
		paramsJSON string
		records    string
		note       sql.NullString
		createdAt  string
	)

	err := row.Scan(&a.ID, &a.Symbol, &paramsJSON, &records, &note, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(paramsJSON), &a.Params); err != nil {
		return nil, fmt.Errorf("failed to decode analysis params: %w", err)
	}
	a.Records = []byte(records)
	a.Note = note.String
	a.CreatedAt, _ = time.Parse(timestampFormat, createdAt)

	return &a, nil
}
