package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
	"github.com/finsight/stockpulse/internal/semantic"
)

// AnalysisHandler handles analysis run API requests
type AnalysisHandler struct {
	analysisService interfaces.AnalysisService
	logger          arbor.ILogger
}

func NewAnalysisHandler(analysisService interfaces.AnalysisService, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// analysisView is the run envelope returned by the API: the stored run plus
// per-ticker insights derived at render time
type analysisView struct {
	*models.AnalysisRun
	Insights map[string]semantic.ReportInsights `json:"insights,omitempty"`
}

func newAnalysisView(run *models.AnalysisRun) analysisView {
	view := analysisView{AnalysisRun: run}
	if len(run.Results) > 0 {
		view.Insights = make(map[string]semantic.ReportInsights, len(run.Results))
		for symbol, report := range run.Results {
			view.Insights[symbol] = semantic.AnalyzeReport(report)
		}
	}
	return view
}

// StartAnalysisHandler starts a new analysis run
// POST /api/analysis {"tickers": ["AAPL", "MSFT"], "mode": "analyze"}
func (h *AnalysisHandler) StartAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.StartAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.analysisService.StartAnalysis(r.Context(), req.Tickers, req.Mode)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Rejected analysis request")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteStarted(w, id)
}

// ListAnalysesHandler returns all runs currently in the local store
// GET /api/analysis
func (h *AnalysisHandler) ListAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	runs := h.analysisService.GetAllAnalyses()

	views := make([]analysisView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newAnalysisView(run))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": views,
		"count":    len(views),
	})
}

// HandleAnalysisByID routes /api/analysis/{id} requests
// GET returns the run, DELETE cancels it
func (h *AnalysisHandler) HandleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	id := analysisIDFromPath(r.URL.Path, "/api/analysis/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Analysis ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, ok := h.analysisService.GetAnalysis(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		WriteJSON(w, http.StatusOK, newAnalysisView(run))

	case http.MethodDelete:
		if err := h.analysisService.CancelAnalysis(id); err != nil {
			h.logger.Error().Err(err).Str("analysis_id", id).Msg("Failed to cancel analysis")
			WriteError(w, http.StatusInternalServerError, "Failed to cancel analysis")
			return
		}
		WriteSuccess(w, "Analysis cancelled")

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// analysisIDFromPath extracts the trailing ID segment from an API path
func analysisIDFromPath(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	return strings.Trim(id, "/")
}
