package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/models"
	"github.com/finsight/stockpulse/internal/report"
)

// stubAnalysisService scripts orchestrator responses for handler tests
type stubAnalysisService struct {
	startID   string
	startErr  error
	started   []models.StartAnalysisRequest
	runs      map[string]*models.AnalysisRun
	cancelled []string
	allRuns   []*models.AnalysisRun
}

func (s *stubAnalysisService) StartAnalysis(ctx context.Context, tickers []string, mode models.AnalysisMode) (string, error) {
	s.started = append(s.started, models.StartAnalysisRequest{Tickers: tickers, Mode: mode})
	return s.startID, s.startErr
}

func (s *stubAnalysisService) CancelAnalysis(id string) error {
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *stubAnalysisService) GetAnalysis(id string) (*models.AnalysisRun, bool) {
	run, ok := s.runs[id]
	return run, ok
}

func (s *stubAnalysisService) GetAllAnalyses() []*models.AnalysisRun { return s.allRuns }

func (s *stubAnalysisService) Resume(ctx context.Context) error { return nil }

func (s *stubAnalysisService) Stop() {}

func newTestAnalysisHandler(service *stubAnalysisService) *AnalysisHandler {
	return NewAnalysisHandler(service, arbor.NewLogger())
}

func TestStartAnalysisHandler(t *testing.T) {
	service := &stubAnalysisService{startID: "analysis_123"}
	handler := newTestAnalysisHandler(service)

	body := strings.NewReader(`{"tickers": ["AAPL", "MSFT"], "mode": "analyze"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis", body)
	rec := httptest.NewRecorder()

	handler.StartAnalysisHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["status"] != "started" || resp["analysis_id"] != "analysis_123" {
		t.Errorf("unexpected response: %v", resp)
	}

	if len(service.started) != 1 || len(service.started[0].Tickers) != 2 {
		t.Errorf("service saw %+v", service.started)
	}
}

func TestStartAnalysisHandlerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"tickers": [`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAnalysisHandler(&stubAnalysisService{})
			req := httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.StartAnalysisHandler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestStartAnalysisHandlerMethodNotAllowed(t *testing.T) {
	handler := newTestAnalysisHandler(&stubAnalysisService{})
	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	rec := httptest.NewRecorder()

	handler.StartAnalysisHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func completedRun(id string, tickers ...string) *models.AnalysisRun {
	run := models.NewAnalysisRun(id, tickers, models.ModeAnalyze)
	for _, symbol := range tickers {
		run.Results[symbol] = report.Normalize(map[string]any{
			"market_analysis": "Recommendation: BUY\nStrong momentum for " + symbol + ".",
		})
	}
	run.SetProgress(100, "Analysis complete")
	run.MarkTerminal(models.StatusCompleted)
	return run
}

func TestGetAnalysisAttachesInsights(t *testing.T) {
	run := completedRun("analysis_1", "AAPL")
	service := &stubAnalysisService{runs: map[string]*models.AnalysisRun{"analysis_1": run}}
	handler := newTestAnalysisHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/analysis_1", nil)
	rec := httptest.NewRecorder()

	handler.HandleAnalysisByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var view struct {
		ID       string `json:"id"`
		Insights map[string]struct {
			Recommendation  string  `json:"recommendation"`
			Confidence      string  `json:"confidence"`
			ConfidenceScore float64 `json:"confidence_score"`
		} `json:"insights"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	insight, ok := view.Insights["AAPL"]
	if !ok {
		t.Fatal("response missing insights for AAPL")
	}
	if insight.Recommendation != "BUY" {
		t.Errorf("recommendation = %q, want BUY", insight.Recommendation)
	}
	if insight.ConfidenceScore <= 0 {
		t.Errorf("confidence score = %v, want > 0", insight.ConfidenceScore)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	handler := newTestAnalysisHandler(&stubAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/analysis_missing", nil)
	rec := httptest.NewRecorder()

	handler.HandleAnalysisByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteAnalysisCancelsRun(t *testing.T) {
	service := &stubAnalysisService{}
	handler := newTestAnalysisHandler(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/analysis/analysis_1", nil)
	rec := httptest.NewRecorder()

	handler.HandleAnalysisByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(service.cancelled) != 1 || service.cancelled[0] != "analysis_1" {
		t.Errorf("cancelled = %v, want [analysis_1]", service.cancelled)
	}
}

func TestAnalysisByIDRequiresID(t *testing.T) {
	handler := newTestAnalysisHandler(&stubAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/", nil)
	rec := httptest.NewRecorder()

	handler.HandleAnalysisByID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListAnalysesHandler(t *testing.T) {
	service := &stubAnalysisService{
		allRuns: []*models.AnalysisRun{
			completedRun("analysis_2", "MSFT"),
			completedRun("analysis_1", "AAPL"),
		},
	}
	handler := newTestAnalysisHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	rec := httptest.NewRecorder()

	handler.ListAnalysesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Analyses []json.RawMessage `json:"analyses"`
		Count    int               `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Count != 2 || len(resp.Analyses) != 2 {
		t.Errorf("count = %d with %d analyses, want 2 and 2", resp.Count, len(resp.Analyses))
	}
}
