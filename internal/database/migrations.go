package database

import "fmt"

// Migrate creates the application schema if it does not exist yet.
// Per-symbol price history databases manage their own schema, see the
// marketdata package.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id         TEXT PRIMARY KEY,
			symbol     TEXT NOT NULL,
			params     TEXT NOT NULL,
			records    TEXT NOT NULL,
			note       TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol)`,
		`CREATE TABLE IF NOT EXISTS workflows (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			symbols     TEXT NOT NULL,
			schedule    TEXT NOT NULL,
			days        INTEGER NOT NULL,
			future_days INTEGER NOT NULL,
			baseline    TEXT NOT NULL,
			enabled     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			last_run_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS market_signals (
			symbol          TEXT NOT NULL,
			date            TEXT NOT NULL,
			market_up       INTEGER NOT NULL DEFAULT 0,
			sector_up       INTEGER NOT NULL DEFAULT 0,
			earnings_window INTEGER NOT NULL DEFAULT 0,
			short_covering  INTEGER NOT NULL DEFAULT 0,
			macro_tailwind  INTEGER NOT NULL DEFAULT 0,
			news_positive   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
