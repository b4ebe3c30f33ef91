package models

import "testing"

func TestStartAnalysisRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tickers []string
		mode    AnalysisMode
		wantErr bool
	}{
		{"single ticker analyze", []string{"AAPL"}, ModeAnalyze, false},
		{"five tickers analyze", []string{"AAPL", "MSFT", "NVDA", "AMD", "INTC"}, ModeAnalyze, false},
		{"two tickers compare", []string{"AAPL", "MSFT"}, ModeCompare, false},
		{"no tickers", nil, ModeAnalyze, true},
		{"empty ticker slice", []string{}, ModeAnalyze, true},
		{"six tickers", []string{"A", "B", "C", "D", "E", "F"}, ModeAnalyze, true},
		{"blank ticker", []string{"AAPL", ""}, ModeAnalyze, true},
		{"non-alphanumeric ticker", []string{"AA-PL"}, ModeAnalyze, true},
		{"single ticker compare", []string{"AAPL"}, ModeCompare, true},
		{"unknown mode", []string{"AAPL"}, AnalysisMode("predict"), true},
		{"missing mode", []string{"AAPL"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := StartAnalysisRequest{Tickers: tt.tickers, Mode: tt.mode}
			err := request.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
