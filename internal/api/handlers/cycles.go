package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/internal/orchestrator"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// CycleHandler triggers analysis cycles on demand
type CycleHandler struct {
	orch   *orchestrator.Orchestrator
	logger *logger.Logger
}

// NewCycleHandler creates a CycleHandler
func NewCycleHandler(orch *orchestrator.Orchestrator, log *logger.Logger) *CycleHandler {
	return &CycleHandler{orch: orch, logger: log}
}

// Trigger runs one cycle synchronously and returns its report.
// Optional ?min_score= and ?batch_size= override the configured
// values for this run only.
func (h *CycleHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	cadence := contracts.Cadence(mux.Vars(r)["cadence"])
	if !cadence.Valid() {
		respondError(w, http.StatusBadRequest, "cadence must be intraweek or endofweek")
		return
	}

	var ov orchestrator.Overrides
	if v := r.URL.Query().Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 100 {
			respondError(w, http.StatusBadRequest, "min_score must be between 0 and 100")
			return
		}
		ov.MinScore = &score
	}
	if v := r.URL.Query().Get("batch_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			respondError(w, http.StatusBadRequest, "batch_size must be a positive integer")
			return
		}
		ov.BatchSize = &size
	}

	report, err := h.orch.RunWith(r.Context(), cadence, ov)
	if err != nil {
		if errors.Is(err, contracts.ErrCollaboratorUnreachable) {
			respondJSON(w, http.StatusBadGateway, report)
			return
		}
		h.logger.WithError(err).Error("Cycle trigger failed")
		respondError(w, http.StatusInternalServerError, "cycle failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
