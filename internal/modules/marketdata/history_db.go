package marketdata

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

// HistoryDB provides access to historical price data. Each symbol gets its
// own SQLite database file under the history directory.
type HistoryDB struct {
	historyDir string
	log        zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(historyDir string, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		historyDir: historyDir,
		log:        log.With().Str("component", "history_db").Logger(),
	}
}

// GetDailyBars fetches up to limit daily bars for a symbol, oldest first.
// Chronological order is what the indicator pipeline expects; the query
// grabs the most recent rows and reverses them.
func (h *HistoryDB) GetDailyBars(symbol string, limit int) ([]DailyBar, error) {
	// A symbol that was never synced has no database file; that is an
	// empty series, not an error.
	if _, err := os.Stat(h.dbPath(symbol)); os.IsNotExist(err) {
		return nil, nil
	}

	db, err := h.openHistoryDB(symbol, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_prices
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var bars []DailyBar
	for rows.Next() {
		var (
			dateStr string
			open    sql.NullFloat64
			high    sql.NullFloat64
			low     sql.NullFloat64
			closeP  float64
			volume  sql.NullInt64
		)

		if err := rows.Scan(&dateStr, &open, &high, &low, &closeP, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		date, err := time.Parse(DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in history for %s: %w", dateStr, symbol, err)
		}

		bar := DailyBar{Date: date, Close: closeP}
		if open.Valid {
			bar.Open = &open.Float64
		}
		if high.Valid {
			bar.High = &high.Float64
		}
		if low.Valid {
			bar.Low = &low.Float64
		}
		if volume.Valid {
			bar.Volume = &volume.Int64
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	return bars, nil
}

// SaveDailyBars upserts daily bars for a symbol. Existing rows for the same
// date are replaced, which makes the sync job idempotent.
func (h *HistoryDB) SaveDailyBars(symbol string, bars []DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	db, err := h.openHistoryDB(symbol, true)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices
		(date, open_price, high_price, low_price, close_price, volume)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		_, err := stmt.Exec(
			bar.Date.Format(DateFormat),
			nullFloat(bar.Open),
			nullFloat(bar.High),
			nullFloat(bar.Low),
			bar.Close,
			nullInt(bar.Volume),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert bar for %s: %w", bar.Date.Format(DateFormat), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bars: %w", err)
	}

	h.log.Info().
		Str("symbol", symbol).
		Int("count", len(bars)).
		Msg("Daily bars saved")

	return nil
}

// BarCount returns the number of stored bars for a symbol. A missing
// history database counts as zero, not an error.
func (h *HistoryDB) BarCount(symbol string) (int, error) {
	if _, err := os.Stat(h.dbPath(symbol)); os.IsNotExist(err) {
		return 0, nil
	}

	db, err := h.openHistoryDB(symbol, false)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_prices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bars for %s: %w", symbol, err)
	}

	return count, nil
}

func (h *HistoryDB) dbPath(symbol string) string {
	// Convert symbol format: BRK.B -> BRK_B
	dbSymbol := strings.ReplaceAll(symbol, ".", "_")
	return filepath.Join(h.historyDir, dbSymbol+".db")
}

// openHistoryDB opens the history database for a symbol, optionally
// creating the directory and schema for write access.
func (h *HistoryDB) openHistoryDB(symbol string, createIfMissing bool) (*sql.DB, error) {
	if createIfMissing {
		if err := os.MkdirAll(h.historyDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", h.dbPath(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database for %s: %w", symbol, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database for %s: %w", symbol, err)
	}

	if createIfMissing {
		schema := `
			CREATE TABLE IF NOT EXISTS daily_prices (
				date        TEXT PRIMARY KEY,
				open_price  REAL,
				high_price  REAL,
				low_price   REAL,
				close_price REAL NOT NULL,
				volume      INTEGER
			)
		`
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure history schema for %s: %w", symbol, err)
		}
	}

	return db, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
