package marketdata

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SignalRepository stores externally observed market context signals
// (market/sector moves, earnings windows, sentiment flags) keyed by
// symbol and date on the main application database.
type SignalRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db *sql.DB, log zerolog.Logger) *SignalRepository {
	return &SignalRepository{
		db:  db,
		log: log.With().Str("repo", "market_signals").Logger(),
	}
}

// Upsert writes the context signals for one symbol/date.
func (r *SignalRepository) Upsert(symbol string, date time.Time, ctx ExogenousContext) error {
	query := `
		INSERT OR REPLACE INTO market_signals
		(symbol, date, market_up, sector_up, earnings_window, short_covering, macro_tailwind, news_positive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		strings.ToUpper(strings.TrimSpace(symbol)),
		date.Format(DateFormat),
		boolToInt(ctx.MarketUp),
		boolToInt(ctx.SectorUp),
		boolToInt(ctx.EarningsWindow),
		boolToInt(ctx.ShortCovering),
		boolToInt(ctx.MacroTailwind),
		boolToInt(ctx.NewsPositive),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert market signals: %w", err)
	}

	return nil
}

// GetRange returns context signals for a symbol keyed by date string
// (YYYY-MM-DD). Days without a stored row are simply absent from the map;
// the prediction engine treats absence as all-false context.
func (r *SignalRepository) GetRange(symbol string, from, to time.Time) (map[string]ExogenousContext, error) {
	query := `
		SELECT date, market_up, sector_up, earnings_window, short_covering, macro_tailwind, news_positive
		FROM market_signals
		WHERE symbol = ? AND date >= ? AND date <= ?
	`

	rows, err := r.db.Query(query,
		strings.ToUpper(strings.TrimSpace(symbol)),
		from.Format(DateFormat),
		to.Format(DateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query market signals: %w", err)
	}
	defer rows.Close()

	signals := make(map[string]ExogenousContext)
	for rows.Next() {
		var (
			dateStr                                   string
			marketUp, sectorUp, earnings              int
			shortCovering, macroTailwind, newsPostive int
		)

		err := rows.Scan(&dateStr, &marketUp, &sectorUp, &earnings, &shortCovering, &macroTailwind, &newsPostive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market signals: %w", err)
		}

		signals[dateStr] = ExogenousContext{
			MarketUp:       marketUp != 0,
			SectorUp:       sectorUp != 0,
			EarningsWindow: earnings != 0,
			ShortCovering:  shortCovering != 0,
			MacroTailwind:  macroTailwind != 0,
			NewsPositive:   newsPostive != 0,
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market signals: %w", err)
	}

	return signals, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
