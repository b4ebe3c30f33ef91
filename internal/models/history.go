package models

import (
	"encoding/json"
	"time"
)

// HistoryEntry is a completed analysis persisted by the remote history store.
// Entries are read-only to the orchestrator; the backend owns retention
// (it keeps the most recent ten per user).
type HistoryEntry struct {
	ID           string                     `json:"id"`
	Tickers      []string                   `json:"tickers"`
	AnalysisType string                     `json:"analysis_type"`
	Status       string                     `json:"status,omitempty"`
	StartTime    *time.Time                 `json:"startTime,omitempty"`
	CompletedAt  *time.Time                 `json:"completedAt,omitempty"`
	Results      map[string]json.RawMessage `json:"results,omitempty"`
	Comparison   json.RawMessage            `json:"comparison,omitempty"`
}

// SelectedTickers mirrors the UI's ticker picker into the local store so the
// selection survives reloads. Cleared on "Clear All" or run completion.
type SelectedTickers struct {
	Key       string    `json:"key" badgerhold:"key"`
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}
