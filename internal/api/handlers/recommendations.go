package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// RecommendationHandler serves recommendation endpoints
type RecommendationHandler struct {
	recs   contracts.RecommendationRepository
	perf   contracts.PerformanceRepository
	logger *logger.Logger
}

// NewRecommendationHandler creates a RecommendationHandler
func NewRecommendationHandler(recs contracts.RecommendationRepository, perf contracts.PerformanceRepository, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, perf: perf, logger: log}
}

// List returns ACTIVE recommendations, optionally filtered by tier
// with ?tier=STRONG|WEAK|HOLD.
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		rows []*contracts.Recommendation
		err  error
	)

	if tier := r.URL.Query().Get("tier"); tier != "" {
		rows, err = h.recs.GetActiveByTier(r.Context(), contracts.Tier(tier))
	} else {
		rows, err = h.recs.GetActive(r.Context())
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recommendations")
		respondError(w, http.StatusInternalServerError, "failed to load recommendations")
		return
	}

	if rows == nil {
		rows = []*contracts.Recommendation{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":           len(rows),
		"recommendations": rows,
	})
}

// Sold returns recommendations sold in the last ?days=N (default 30)
func (h *RecommendationHandler) Sold(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	since := time.Now().AddDate(0, 0, -days)
	rows, err := h.recs.GetRecentlySold(r.Context(), since)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load sold recommendations")
		respondError(w, http.StatusInternalServerError, "failed to load sold recommendations")
		return
	}

	if rows == nil {
		rows = []*contracts.Recommendation{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":           len(rows),
		"since":           since,
		"recommendations": rows,
	})
}

// Performance returns recent performance samples for one
// recommendation, newest first. ?limit=N caps the result (default 30).
func (h *RecommendationHandler) Performance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	samples, err := h.perf.GetByRecommendation(r.Context(), id, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load performance samples")
		respondError(w, http.StatusInternalServerError, "failed to load performance samples")
		return
	}

	if samples == nil {
		samples = []*contracts.PerformanceSample{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendation_id": id,
		"count":             len(samples),
		"samples":           samples,
	})
}
