package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
)

// TickerHandler persists the UI's ticker picker across reloads
type TickerHandler struct {
	tickerStorage interfaces.TickerStorage
	logger        arbor.ILogger
}

func NewTickerHandler(tickerStorage interfaces.TickerStorage, logger arbor.ILogger) *TickerHandler {
	return &TickerHandler{
		tickerStorage: tickerStorage,
		logger:        logger,
	}
}

// HandleSelectedTickers routes /api/tickers/selected requests.
// GET returns the stored selection, PUT replaces it, DELETE clears it.
func (h *TickerHandler) HandleSelectedTickers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		symbols, err := h.tickerStorage.GetSelected(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to load selected tickers")
			WriteError(w, http.StatusInternalServerError, "Failed to load selected tickers")
			return
		}
		if symbols == nil {
			symbols = []string{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"tickers": symbols,
		})

	case http.MethodPut:
		var req struct {
			Tickers []string `json:"tickers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		symbols := common.NormalizeSymbols(req.Tickers)
		if len(symbols) > common.MaxTickersPerRun {
			WriteError(w, http.StatusBadRequest, "Too many tickers selected")
			return
		}

		if err := h.tickerStorage.SaveSelected(r.Context(), symbols); err != nil {
			h.logger.Error().Err(err).Msg("Failed to save selected tickers")
			WriteError(w, http.StatusInternalServerError, "Failed to save selected tickers")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"tickers": symbols,
		})

	case http.MethodDelete:
		if err := h.tickerStorage.ClearSelected(r.Context()); err != nil {
			h.logger.Error().Err(err).Msg("Failed to clear selected tickers")
			WriteError(w, http.StatusInternalServerError, "Failed to clear selected tickers")
			return
		}
		WriteSuccess(w, "Selected tickers cleared")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
