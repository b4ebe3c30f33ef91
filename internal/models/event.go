package models

import "time"

// AnalysisEventType identifies an orchestrator event
type AnalysisEventType string

const (
	EventAnalysisStarted     AnalysisEventType = "ANALYSIS_STARTED"
	EventAnalysisProgress    AnalysisEventType = "ANALYSIS_PROGRESS"
	EventTickerCompleted     AnalysisEventType = "TICKER_COMPLETED"
	EventTickerError         AnalysisEventType = "TICKER_ERROR"
	EventComparisonCompleted AnalysisEventType = "COMPARISON_COMPLETED"
	EventAnalysisCompleted   AnalysisEventType = "ANALYSIS_COMPLETED"
	EventAnalysisError       AnalysisEventType = "ANALYSIS_ERROR"
	EventAnalysisCancelled   AnalysisEventType = "ANALYSIS_CANCELLED"
	EventStatusResponse      AnalysisEventType = "STATUS_RESPONSE"
)

// AnalysisEvent is one entry in a run's event stream. For a single run the
// order is guaranteed:
//
//	started -> (progress | ticker_completed | ticker_error)* ->
//	(comparison_completed, compare mode only) -> completed | cancelled | error
//
// Only the fields relevant to the event type are populated.
type AnalysisEvent struct {
	Type       AnalysisEventType `json:"type"`
	AnalysisID string            `json:"analysisId"`
	Timestamp  time.Time         `json:"timestamp"`

	// ANALYSIS_PROGRESS
	Progress float64 `json:"progress,omitempty"`
	Phase    string  `json:"phase,omitempty"`

	// TICKER_COMPLETED / TICKER_ERROR
	Ticker string           `json:"ticker,omitempty"`
	Report *CanonicalReport `json:"report,omitempty"`

	// TICKER_ERROR / ANALYSIS_ERROR
	Error string `json:"error,omitempty"`

	// COMPARISON_COMPLETED
	Comparison *ComparisonResult `json:"comparison,omitempty"`

	// ANALYSIS_COMPLETED
	Results map[string]*CanonicalReport `json:"results,omitempty"`
	Errors  map[string]string           `json:"errors,omitempty"`

	// STATUS_RESPONSE
	Run *AnalysisRun `json:"run,omitempty"`
}
