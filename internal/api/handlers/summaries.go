package handlers

import (
	"net/http"
	"strconv"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// SummaryHandler serves weekly summary endpoints
type SummaryHandler struct {
	summaries contracts.SummaryRepository
	logger    *logger.Logger
}

// NewSummaryHandler creates a SummaryHandler
func NewSummaryHandler(summaries contracts.SummaryRepository, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, logger: log}
}

// Recent returns the most recent weekly summaries. ?limit=N caps the
// result (default 12).
func (h *SummaryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 12
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	summaries, err := h.summaries.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load summaries")
		respondError(w, http.StatusInternalServerError, "failed to load summaries")
		return
	}

	if summaries == nil {
		summaries = []*contracts.WeeklySummary{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(summaries),
		"summaries": summaries,
	})
}
