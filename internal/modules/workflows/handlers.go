package workflows

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/modules/prediction"
)

// Handlers contains HTTP handlers for the workflows API.
type Handlers struct {
	repo    *Repository
	scanner Scanner
	log     zerolog.Logger
}

// NewHandlers creates a new workflow handlers instance.
func NewHandlers(repo *Repository, scanner Scanner, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		scanner: scanner,
		log:     log.With().Str("module", "workflow_handlers").Logger(),
	}
}

type workflowRequest struct {
	Name       string   `json:"name"`
	Symbols    []string `json:"symbols"`
	Schedule   string   `json:"schedule"`
	Days       int      `json:"days"`
	FutureDays int      `json:"future_days"`
	Baseline   string   `json:"baseline"`
	Enabled    *bool    `json:"enabled"`
}

// scheduleParser accepts the same format the scheduler registers with,
// including the seconds field.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (req *workflowRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required"
	}
	if len(req.Symbols) == 0 {
		return "At least one symbol is required"
	}
	if req.Days < 0 || req.Days > prediction.MaxRequestedDays {
		return "Days out of range"
	}
	if req.FutureDays < 0 || req.FutureDays > prediction.MaxFutureDays {
		return "Future days out of range"
	}
	if req.Baseline != "" {
		if _, err := prediction.BaselineStrategyByName(req.Baseline); err != nil {
			return "Unknown baseline strategy"
		}
	}
	if req.Schedule != "" {
		if _, err := scheduleParser.Parse(req.Schedule); err != nil {
			return "Invalid cron schedule"
		}
	}
	return ""
}

func (req *workflowRequest) toWorkflow() Workflow {
	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	days := req.Days
	if days == 0 {
		days = prediction.MinRequestedDays
	}

	return Workflow{
		Name:       strings.TrimSpace(req.Name),
		Symbols:    symbols,
		Schedule:   req.Schedule,
		Days:       days,
		FutureDays: req.FutureDays,
		Baseline:   req.Baseline,
		Enabled:    enabled,
	}
}

// HandleCreate creates a workflow.
// POST /api/workflows
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(req.toWorkflow())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create workflow")
		http.Error(w, "Failed to create workflow", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

// HandleList returns all workflows.
// GET /api/workflows
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list workflows")
		http.Error(w, "Failed to list workflows", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(workflows)
}

// HandleGet returns one workflow.
// GET /api/workflows/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	wf, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch workflow")
		http.Error(w, "Failed to fetch workflow", http.StatusInternalServerError)
		return
	}
	if wf == nil {
		http.Error(w, "Workflow not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(wf)
}

// HandleUpdate rewrites a workflow's definition.
// PUT /api/workflows/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	wf := req.toWorkflow()
	wf.ID = chi.URLParam(r, "id")

	updated, err := h.repo.Update(wf)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update workflow")
		http.Error(w, "Failed to update workflow", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "Workflow not found", http.StatusNotFound)
		return
	}

	stored, err := h.repo.Get(wf.ID)
	if err != nil || stored == nil {
		h.log.Error().Err(err).Msg("Failed to re-read updated workflow")
		http.Error(w, "Failed to update workflow", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}

// HandleDelete removes a workflow.
// DELETE /api/workflows/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.Delete(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete workflow")
		http.Error(w, "Failed to delete workflow", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Workflow not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRun executes a workflow immediately.
// POST /api/workflows/{id}/run
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	wf, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch workflow")
		http.Error(w, "Failed to fetch workflow", http.StatusInternalServerError)
		return
	}
	if wf == nil {
		http.Error(w, "Workflow not found", http.StatusNotFound)
		return
	}

	job := NewJob(*wf, h.repo, h.scanner, h.log)
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("workflow", wf.Name).Msg("Manual workflow run failed")
		http.Error(w, "Workflow run failed", http.StatusInternalServerError)
		return
	}

	stored, _ := h.repo.Get(wf.ID)
	if stored == nil {
		stored = wf
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}
