package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
)

func newTestClient(baseURL string) *Client {
	cfg := &common.BackendConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		RequestTimeout: 5 * time.Second,
		CompareTimeout: 5 * time.Second,
	}
	return NewClient(cfg, arbor.NewLogger()).(*Client)
}

func TestAnalyzeTickerUnwrapsReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news/custom-summary" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("tickers"); got != "AAPL" {
			t.Errorf("tickers = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"reports": map[string]any{
				"AAPL": map[string]any{
					"prediction": map[string]any{"market_analysis": "Up."},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	payload, err := client.AnalyzeTicker(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AnalyzeTicker: %v", err)
	}
	if payload["prediction"] == nil {
		t.Errorf("payload = %v", payload)
	}
}

func TestAnalyzeTickerSingleReportFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Backend keyed the report under a qualified symbol
		json.NewEncoder(w).Encode(map[string]any{
			"reports": map[string]any{
				"NASDAQ:AAPL": map[string]any{"market_analysis": "Up."},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	payload, err := client.AnalyzeTicker(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AnalyzeTicker: %v", err)
	}
	if payload["market_analysis"] != "Up." {
		t.Errorf("payload = %v", payload)
	}
}

func TestAnalyzeTickerErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantErr  string
		wantAuth bool
	}{
		{"unauthorized", http.StatusUnauthorized, "authentication failed - please sign in again", true},
		{"server error", http.StatusInternalServerError, "HTTP 500", false},
		{"not found", http.StatusNotFound, "HTTP 404", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.AnalyzeTicker(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			// A 401 must surface as the typed sentinel so the orchestrator
			// can fail the run instead of the ticker
			if got := errors.Is(err, interfaces.ErrAuth); got != tt.wantAuth {
				t.Errorf("errors.Is(err, interfaces.ErrAuth) = %v, want %v", got, tt.wantAuth)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/news/comparison/compare" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}

		var req map[string][]string
		json.NewDecoder(r.Body).Decode(&req)
		if len(req["tickers"]) != 3 {
			t.Errorf("tickers = %v", req["tickers"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"analyses": map[string]any{
				"AAPL": map[string]any{"market_analysis": "A."},
				"MSFT": map[string]any{"market_analysis": "B."},
				"NVDA": map[string]any{"market_analysis": "C."},
			},
			"comparison_summary": "NVDA leads on growth.",
			"recommended_stock":  "NVDA",
			"ranking": []map[string]any{
				{"rank": 1, "symbol": "NVDA", "reason": "growth"},
				{"rank": 2, "symbol": "AAPL", "reason": ""},
				{"rank": 3, "symbol": "MSFT"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Compare(context.Background(), []string{"AAPL", "MSFT", "NVDA"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if resp.RecommendedStock != "NVDA" {
		t.Errorf("RecommendedStock = %q", resp.RecommendedStock)
	}
	if len(resp.Analyses) != 3 {
		t.Errorf("Analyses = %v", resp.Analyses)
	}
	// Ranking order preserved, missing reasons tolerated
	if len(resp.Ranking) != 3 || resp.Ranking[0].Symbol != "NVDA" || resp.Ranking[2].Reason != "" {
		t.Errorf("Ranking = %+v", resp.Ranking)
	}
}

func TestListHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analysis-history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "analysis_1", "tickers": []string{"AAPL"}, "analysis_type": "analyze"},
			{"id": "analysis_2", "tickers": []string{"MSFT", "NVDA"}, "analysis_type": "compare"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	entries, err := client.ListHistory(context.Background())
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "analysis_1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestDeleteHistory(t *testing.T) {
	deleted := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.DeleteHistory(context.Background(), "analysis_9"); err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}
	if deleted != "/analysis-history/analysis_9" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestAnalyzeTickerStatusGrades(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		wantErr string
	}{
		{
			name: "error status with top-level message",
			payload: map[string]any{
				"status": "error",
				"error":  "agent pipeline crashed",
			},
			wantErr: "agent pipeline crashed",
		},
		{
			name: "error status with nested message",
			payload: map[string]any{
				"status":     "error",
				"prediction": map[string]any{"error": "prediction analysis timed out"},
			},
			wantErr: "prediction analysis timed out",
		},
		{
			name: "error status without message",
			payload: map[string]any{
				"status": "error",
			},
			wantErr: "analysis failed for AAPL",
		},
		{
			name: "fallback status still yields a payload",
			payload: map[string]any{
				"status":     "fallback",
				"prediction": map[string]any{"market_analysis": "AAPL technical analysis unavailable."},
			},
		},
		{
			name: "timeout status still yields a payload",
			payload: map[string]any{
				"status":     "timeout",
				"prediction": map[string]any{"error": "prediction analysis timed out"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"reports": map[string]any{"AAPL": tt.payload},
				})
			}))
			defer server.Close()

			payload, err := newTestClient(server.URL).AnalyzeTicker(context.Background(), "AAPL")
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AnalyzeTicker: %v", err)
			}
			if payload == nil {
				t.Fatal("expected a payload for a degraded report")
			}
		})
	}
}
