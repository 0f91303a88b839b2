package scheduler

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/clients/yahoo"
	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

// PriceSyncJob backfills daily bars for the tracked symbols from Yahoo
// Finance into the per-symbol history databases.
type PriceSyncJob struct {
	symbols []string
	period  string
	client  *yahoo.Client
	history *marketdata.HistoryDB
	log     zerolog.Logger
}

// NewPriceSyncJob creates a new price sync job.
func NewPriceSyncJob(
	symbols []string,
	period string,
	client *yahoo.Client,
	history *marketdata.HistoryDB,
	log zerolog.Logger,
) *PriceSyncJob {
	return &PriceSyncJob{
		symbols: symbols,
		period:  period,
		client:  client,
		history: history,
		log:     log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name for scheduler logs.
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run fetches and stores history for every tracked symbol. Symbols fail
// independently; the job reports an error only when every symbol failed.
func (j *PriceSyncJob) Run() error {
	if len(j.symbols) == 0 {
		j.log.Debug().Msg("No symbols configured, nothing to sync")
		return nil
	}

	var failures []string
	for _, symbol := range j.symbols {
		if err := j.syncSymbol(symbol); err != nil {
			j.log.Error().Err(err).Str("symbol", symbol).Msg("Symbol sync failed")
			failures = append(failures, symbol)
		}
	}

	j.log.Info().
		Int("symbols", len(j.symbols)).
		Int("failed", len(failures)).
		Msg("Price sync completed")

	if len(failures) == len(j.symbols) {
		return fmt.Errorf("price sync failed for all symbols: %s", strings.Join(failures, ", "))
	}
	return nil
}

func (j *PriceSyncJob) syncSymbol(symbol string) error {
	prices, err := j.client.GetHistoricalPrices(symbol, j.period)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	if len(prices) == 0 {
		j.log.Warn().Str("symbol", symbol).Msg("No prices returned, skipping")
		return nil
	}

	bars := yahoo.ToDailyBars(prices)
	if err := j.history.SaveDailyBars(symbol, bars); err != nil {
		return fmt.Errorf("failed to store bars: %w", err)
	}

	j.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Symbol synced")
	return nil
}
