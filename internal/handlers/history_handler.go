package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/interfaces"
)

// HistoryHandler serves the remote analysis history
type HistoryHandler struct {
	historyService interfaces.HistoryService
	logger         arbor.ILogger
}

func NewHistoryHandler(historyService interfaces.HistoryService, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// ListHistoryHandler returns past analyses, newest first
// GET /api/history
func (h *HistoryHandler) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	entries, err := h.historyService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list analysis history")
		WriteError(w, http.StatusBadGateway, "Failed to fetch analysis history")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}

// HandleHistoryByID routes /api/history/{id} requests
// GET returns one entry, DELETE removes it
func (h *HistoryHandler) HandleHistoryByID(w http.ResponseWriter, r *http.Request) {
	id := analysisIDFromPath(r.URL.Path, "/api/history/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "History ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := h.historyService.Get(r.Context(), id)
		if err != nil {
			h.logger.Warn().Err(err).Str("history_id", id).Msg("Failed to fetch history entry")
			WriteError(w, http.StatusNotFound, "History entry not found")
			return
		}
		WriteJSON(w, http.StatusOK, entry)

	case http.MethodDelete:
		if err := h.historyService.Delete(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("history_id", id).Msg("Failed to delete history entry")
			WriteError(w, http.StatusBadGateway, "Failed to delete history entry")
			return
		}
		WriteSuccess(w, "History entry deleted")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
