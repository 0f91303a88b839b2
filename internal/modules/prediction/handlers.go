package prediction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/marketdata"
)

// Handlers contains HTTP handlers for the prediction API.
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new prediction handlers instance.
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "prediction_handlers").Logger(),
	}
}

// predictionDTO is the wire shape of one prediction. Scores and
// confidence are exposed as percentages; active factors keep their
// weight annotation.
type predictionDTO struct {
	Symbol          string            `json:"symbol"`
	Date            string            `json:"date"`
	Score           float64           `json:"score"`
	Confidence      float64           `json:"confidence"`
	Prediction      string            `json:"prediction"`
	IsFuture        bool              `json:"is_future"`
	BaselineDate    *string           `json:"baseline_date,omitempty"`
	ActiveFactors   []activeFactorDTO `json:"active_factors"`
	Interpretation  string            `json:"interpretation"`
	Recommendations []string          `json:"recommendations"`
}

type activeFactorDTO struct {
	Factor string  `json:"factor"`
	Weight float64 `json:"weight"`
}

type resultDTO struct {
	Symbol      string          `json:"symbol"`
	Predictions []predictionDTO `json:"predictions"`
	Warnings    []string        `json:"warnings,omitempty"`
	Note        string          `json:"note,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func toResultDTO(res *Result) resultDTO {
	dto := resultDTO{
		Symbol:      res.Symbol,
		Predictions: make([]predictionDTO, len(res.Predictions)),
		Warnings:    res.Warnings,
		Note:        res.Note,
		GeneratedAt: res.GeneratedAt,
	}
	for i, p := range res.Predictions {
		d := predictionDTO{
			Symbol:          p.Symbol,
			Date:            p.Date.Format(marketdata.DateFormat),
			Score:           ToPercent(p.Score),
			Confidence:      ToPercent(p.Confidence),
			Prediction:      string(p.Level),
			IsFuture:        p.IsFuture,
			ActiveFactors:   make([]activeFactorDTO, 0, len(p.ActiveFactors)),
			Interpretation:  p.Interpretation,
			Recommendations: p.Recommendations,
		}
		if p.BaselineDate != nil {
			bd := p.BaselineDate.Format(marketdata.DateFormat)
			d.BaselineDate = &bd
		}
		for _, f := range p.ActiveFactors {
			d.ActiveFactors = append(d.ActiveFactors, activeFactorDTO{
				Factor: string(f.Factor),
				Weight: f.Weight,
			})
		}
		dto.Predictions[i] = d
	}
	return dto
}

// HandleGetPrediction generates the prediction sequence for one symbol.
// GET /api/predictions/{symbol}
func (h *Handlers) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	opts, err := parseRequestOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Predict(symbol, opts)
	if err != nil {
		if errors.Is(err, ErrInvalidParameter) || errors.Is(err, ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Prediction failed")
		http.Error(w, "Failed to generate predictions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResultDTO(result))
}

// scanRequest is the body of a multi-symbol scan.
type scanRequest struct {
	Symbols    []string `json:"symbols"`
	Days       int      `json:"days"`
	FutureDays int      `json:"future_days"`
	Baseline   string   `json:"baseline"`
}

// HandleScan runs predictions across many symbols.
// POST /api/predictions/scan
func (h *Handlers) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Symbols) == 0 {
		http.Error(w, "At least one symbol is required", http.StatusBadRequest)
		return
	}

	opts := RequestOptions{
		Days:       req.Days,
		FutureDays: req.FutureDays,
		Baseline:   req.Baseline,
		Sort:       DefaultSort(),
	}
	if opts.Days == 0 {
		opts.Days = MinRequestedDays
	}

	// Validate the strategy name before spinning up workers so a typo
	// fails the whole request instead of every symbol individually.
	if _, err := BaselineStrategyByName(opts.Baseline); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scan := h.service.Scan(dedupeSymbols(req.Symbols), opts)

	out := struct {
		Results     []resultDTO       `json:"results"`
		Errors      map[string]string `json:"errors,omitempty"`
		Summary     ScanSummary       `json:"summary"`
		GeneratedAt time.Time         `json:"generated_at"`
	}{
		Results:     make([]resultDTO, len(scan.Results)),
		Errors:      scan.Errors,
		Summary:     scan.Summary,
		GeneratedAt: scan.ScanWide,
	}
	for i, res := range scan.Results {
		out.Results[i] = toResultDTO(res)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleGetWeights exposes the active scoring configuration.
// GET /api/predictions/weights
func (h *Handlers) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()

	weights := make(map[string]float64, len(AllFactors()))
	for _, id := range AllFactors() {
		weights[string(id)] = cfg.Weight(id)
	}

	response := struct {
		Weights       map[string]float64 `json:"weights"`
		TotalWeight   float64            `json:"total_weight"`
		Threshold     float64            `json:"threshold"`
		ModerateRatio float64            `json:"moderate_ratio"`
	}{
		Weights:       weights,
		TotalWeight:   cfg.TotalWeight(),
		Threshold:     cfg.Threshold(),
		ModerateRatio: cfg.ModerateRatio(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// parseRequestOptions reads the query-string knobs of a single-symbol
// request. Score and confidence filters arrive on the percent scale.
func parseRequestOptions(r *http.Request) (RequestOptions, error) {
	q := r.URL.Query()

	opts := RequestOptions{
		Days:     MinRequestedDays,
		Baseline: q.Get("baseline"),
	}

	var err error
	if opts.Days, err = intParam(q.Get("days"), MinRequestedDays); err != nil {
		return opts, err
	}
	if opts.FutureDays, err = intParam(q.Get("future_days"), 0); err != nil {
		return opts, err
	}

	field, err := ParseSortField(q.Get("sort"))
	if err != nil {
		return opts, err
	}
	opts.Sort = SortSpec{Field: field, Descending: q.Get("order") != "asc"}
	if q.Get("sort") == "" && q.Get("order") == "" {
		opts.Sort = DefaultSort()
	}

	filters := &Filters{}
	hasFilter := false

	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(marketdata.DateFormat, v)
		if err != nil {
			return opts, errors.New("date_from must be formatted as YYYY-MM-DD")
		}
		filters.DateFrom = &t
		hasFilter = true
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(marketdata.DateFormat, v)
		if err != nil {
			return opts, errors.New("date_to must be formatted as YYYY-MM-DD")
		}
		filters.DateTo = &t
		hasFilter = true
	}
	if v := q.Get("min_score"); v != "" {
		f, err := percentParam(v, "min_score")
		if err != nil {
			return opts, err
		}
		filters.MinScore = &f
		hasFilter = true
	}
	if v := q.Get("max_score"); v != "" {
		f, err := percentParam(v, "max_score")
		if err != nil {
			return opts, err
		}
		filters.MaxScore = &f
		hasFilter = true
	}
	if v := q.Get("min_confidence"); v != "" {
		f, err := percentParam(v, "min_confidence")
		if err != nil {
			return opts, err
		}
		filters.MinConfidence = &f
		hasFilter = true
	}
	if v := q.Get("max_confidence"); v != "" {
		f, err := percentParam(v, "max_confidence")
		if err != nil {
			return opts, err
		}
		filters.MaxConfidence = &f
		hasFilter = true
	}
	if v := q.Get("prediction"); v != "" {
		level := PredictionLevel(strings.ToUpper(v))
		if _, ok := levelRank[level]; !ok {
			return opts, errors.New("prediction must be one of HIGH_PROBABILITY, MODERATE, LOW_PROBABILITY")
		}
		filters.Level = &level
		hasFilter = true
	}

	if hasFilter {
		opts.Filters = filters
	}

	return opts, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("parameter must be an integer: " + raw)
	}
	return v, nil
}

func percentParam(raw, name string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return FromPercent(v), nil
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
