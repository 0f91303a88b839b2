package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/prediction"
)

// Predictor generates the prediction sequence an analysis snapshots.
type Predictor interface {
	Predict(symbol string, opts prediction.RequestOptions) (*prediction.Result, error)
}

// Handlers contains HTTP handlers for the analyses API.
type Handlers struct {
	repo      *Repository
	predictor Predictor
	log       zerolog.Logger
}

// NewHandlers creates a new analysis handlers instance.
func NewHandlers(repo *Repository, predictor Predictor, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:      repo,
		predictor: predictor,
		log:       log.With().Str("module", "analysis_handlers").Logger(),
	}
}

type createRequest struct {
	Symbol     string `json:"symbol"`
	Days       int    `json:"days"`
	FutureDays int    `json:"future_days"`
	Baseline   string `json:"baseline"`
	Note       string `json:"note"`
}

// HandleCreate runs a prediction and persists the outcome.
// POST /api/analyses
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}
	if req.Days == 0 {
		req.Days = prediction.MinRequestedDays
	}

	result, err := h.predictor.Predict(symbol, prediction.RequestOptions{
		Days:       req.Days,
		FutureDays: req.FutureDays,
		Baseline:   req.Baseline,
		Sort:       prediction.DefaultSort(),
	})
	if err != nil {
		if errors.Is(err, prediction.ErrInvalidParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Analysis prediction failed")
		http.Error(w, "Failed to generate predictions", http.StatusInternalServerError)
		return
	}

	records, err := json.Marshal(result)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to serialize prediction result")
		http.Error(w, "Failed to save analysis", http.StatusInternalServerError)
		return
	}

	note := req.Note
	if note == "" {
		note = result.Note
	}

	saved, err := h.repo.Create(symbol, Params{
		Days:       req.Days,
		FutureDays: req.FutureDays,
		Baseline:   req.Baseline,
	}, records, note)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save analysis")
		http.Error(w, "Failed to save analysis", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(struct {
		*Analysis
		Result json.RawMessage `json:"result"`
	}{saved, records})
}

// HandleList returns analysis summaries, optionally filtered by symbol.
// GET /api/analyses?symbol=AAPL
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.List(r.URL.Query().Get("symbol"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list analyses")
		http.Error(w, "Failed to list analyses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaries)
}

// HandleGet returns one stored analysis with its full record payload.
// GET /api/analyses/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to fetch analysis")
		http.Error(w, "Failed to fetch analysis", http.StatusInternalServerError)
		return
	}
	if a == nil {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		*Analysis
		Result json.RawMessage `json:"result"`
	}{a, json.RawMessage(a.Records)})
}

// HandleDelete removes one stored analysis.
// DELETE /api/analyses/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.repo.Delete(id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete analysis")
		http.Error(w, "Failed to delete analysis", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
