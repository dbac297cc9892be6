package handlers

import (
	"net/http"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// WatchlistHandler serves watchlist endpoints
type WatchlistHandler struct {
	watch  contracts.WatchlistRepository
	logger *logger.Logger
}

// NewWatchlistHandler creates a WatchlistHandler
func NewWatchlistHandler(watch contracts.WatchlistRepository, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{watch: watch, logger: log}
}

// List returns every watchlist entry
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.watch.GetAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load watchlist")
		respondError(w, http.StatusInternalServerError, "failed to load watchlist")
		return
	}

	if entries == nil {
		entries = []*contracts.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}
