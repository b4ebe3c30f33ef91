package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (event stream)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Analysis runs
	mux.HandleFunc("/api/analysis", s.handleAnalysisRoute)                     // GET (list), POST (start)
	mux.HandleFunc("/api/analysis/", s.app.AnalysisHandler.HandleAnalysisByID) // GET/DELETE /{id}

	// API routes - History (remote store)
	mux.HandleFunc("/api/history", s.app.HistoryHandler.ListHistoryHandler)
	mux.HandleFunc("/api/history/", s.app.HistoryHandler.HandleHistoryByID) // GET/DELETE /{id}

	// API routes - Selected tickers (UI picker persistence)
	mux.HandleFunc("/api/tickers/selected", s.app.TickerHandler.HandleSelectedTickers)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleAnalysisRoute dispatches the /api/analysis collection route
func (s *Server) handleAnalysisRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.AnalysisHandler.ListAnalysesHandler(w, r)
	case http.MethodPost:
		s.app.AnalysisHandler.StartAnalysisHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
