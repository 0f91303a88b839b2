package marketdata

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/pkg/formulas"
)

// Handlers contains HTTP handlers for the market data API.
type Handlers struct {
	history *HistoryDB
	signals *SignalRepository
	log     zerolog.Logger
}

// NewHandlers creates a new market data handlers instance.
func NewHandlers(history *HistoryDB, signals *SignalRepository, log zerolog.Logger) *Handlers {
	return &Handlers{
		history: history,
		signals: signals,
		log:     log.With().Str("module", "marketdata_handlers").Logger(),
	}
}

// HandleImportCSV ingests daily bars from an uploaded CSV body.
// POST /api/symbols/{symbol}/history/import
func (h *Handlers) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	bars, warnings, err := ParseCSV(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(bars) == 0 {
		http.Error(w, "CSV contained no usable rows", http.StatusBadRequest)
		return
	}

	if err := h.history.SaveDailyBars(symbol, bars); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store imported bars")
		http.Error(w, "Failed to store bars", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Int("skipped", len(warnings)).
		Msg("CSV import completed")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Symbol   string   `json:"symbol"`
		Imported int      `json:"imported"`
		Warnings []string `json:"warnings,omitempty"`
	}{symbol, len(bars), warnings})
}

// HandleGetBars returns the stored daily bars for a symbol, most recent
// last.
// GET /api/symbols/{symbol}/history?limit=250
func (h *Handlers) HandleGetBars(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	limit := 250
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	bars, err := h.history.GetDailyBars(symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load bars")
		http.Error(w, "Failed to load bars", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Symbol string     `json:"symbol"`
		Bars   []DailyBar `json:"bars"`
		Stats  *barStats  `json:"stats,omitempty"`
	}{symbol, bars, computeBarStats(bars)})
}

// barStats summarizes the returned window of bars.
type barStats struct {
	Bars                 int      `json:"bars"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	RSI14                *float64 `json:"rsi14,omitempty"`
}

func computeBarStats(bars []DailyBar) *barStats {
	if len(bars) == 0 {
		return nil
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return &barStats{
		Bars:                 len(bars),
		AnnualizedVolatility: formulas.AnnualizedVolatility(formulas.CalculateReturns(closes)),
		RSI14:                formulas.RSI(closes, 14),
	}
}

type signalRequest struct {
	Date           string `json:"date"`
	MarketUp       bool   `json:"market_up"`
	SectorUp       bool   `json:"sector_up"`
	EarningsWindow bool   `json:"earnings_window"`
	ShortCovering  bool   `json:"short_covering"`
	MacroTailwind  bool   `json:"macro_tailwind"`
	NewsPositive   bool   `json:"news_positive"`
}

// HandleUpsertSignal stores the exogenous context flags for one
// symbol/date.
// PUT /api/symbols/{symbol}/signals
func (h *Handlers) HandleUpsertSignal(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(DateFormat, req.Date)
	if err != nil {
		http.Error(w, "Date must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx := ExogenousContext{
		MarketUp:       req.MarketUp,
		SectorUp:       req.SectorUp,
		EarningsWindow: req.EarningsWindow,
		ShortCovering:  req.ShortCovering,
		MacroTailwind:  req.MacroTailwind,
		NewsPositive:   req.NewsPositive,
	}
	if err := h.signals.Upsert(symbol, date, ctx); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store signals")
		http.Error(w, "Failed to store signals", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
