package models

import (
	"fmt"
	"time"
)

// AnalysisMode selects the workflow for a run
type AnalysisMode string

const (
	// ModeAnalyze produces one independent report per ticker
	ModeAnalyze AnalysisMode = "analyze"
	// ModeCompare produces reports for all tickers plus a ranking and winner
	ModeCompare AnalysisMode = "compare"
)

// AnalysisStatus is the lifecycle state of a run
type AnalysisStatus string

const (
	StatusRunning   AnalysisStatus = "running"
	StatusCompleted AnalysisStatus = "completed"
	StatusCancelled AnalysisStatus = "cancelled"
	StatusError     AnalysisStatus = "error"
)

// AnalysisRun is one invocation of the orchestrator covering a set of tickers
// in one mode. The orchestrator is the sole mutator; once the status leaves
// "running" the run is terminal and only read thereafter.
type AnalysisRun struct {
	ID          string                      `json:"id" badgerhold:"key"`
	Tickers     []string                    `json:"tickers"`
	Mode        AnalysisMode                `json:"mode"`
	Status      AnalysisStatus              `json:"status"`
	StartTime   time.Time                   `json:"startTime"`
	CompletedAt *time.Time                  `json:"completedAt,omitempty"`
	Progress    float64                     `json:"progress"` // 0-100, non-decreasing within a run
	Phase       string                      `json:"phase"`
	Results     map[string]*CanonicalReport `json:"results"`
	Errors      map[string]string           `json:"errors"`
	Comparison  *ComparisonResult           `json:"comparison,omitempty"`
}

// NewAnalysisRun creates a run in its initial running state
func NewAnalysisRun(id string, tickers []string, mode AnalysisMode) *AnalysisRun {
	return &AnalysisRun{
		ID:        id,
		Tickers:   tickers,
		Mode:      mode,
		Status:    StatusRunning,
		StartTime: time.Now(),
		Progress:  0,
		Phase:     "Initializing analysis...",
		Results:   make(map[string]*CanonicalReport),
		Errors:    make(map[string]string),
	}
}

// IsTerminal reports whether the run has finished (completed, cancelled or error)
func (r *AnalysisRun) IsTerminal() bool {
	return r.Status != StatusRunning
}

// MarkTerminal flips the run to a terminal status and stamps the completion time
func (r *AnalysisRun) MarkTerminal(status AnalysisStatus) {
	now := time.Now()
	r.Status = status
	r.CompletedAt = &now
}

// SetProgress raises the run progress, preserving monotonicity. Lower values
// are ignored so late-firing progress ticks can never move the run backwards.
func (r *AnalysisRun) SetProgress(progress float64, phase string) {
	if progress > r.Progress {
		r.Progress = progress
	}
	if phase != "" {
		r.Phase = phase
	}
}

// Clone returns a deep-enough copy safe to hand outside the orchestrator's
// lock. Reports are immutable once produced, so sharing them is fine.
func (r *AnalysisRun) Clone() *AnalysisRun {
	clone := *r
	clone.Tickers = append([]string(nil), r.Tickers...)
	clone.Results = make(map[string]*CanonicalReport, len(r.Results))
	for k, v := range r.Results {
		clone.Results[k] = v
	}
	clone.Errors = make(map[string]string, len(r.Errors))
	for k, v := range r.Errors {
		clone.Errors[k] = v
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// Validate checks the run invariants that do not depend on backend state
func (r *AnalysisRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("analysis run has no ID")
	}
	if len(r.Tickers) == 0 {
		return fmt.Errorf("analysis run has no tickers")
	}
	if r.Mode != ModeAnalyze && r.Mode != ModeCompare {
		return fmt.Errorf("invalid analysis mode: %s", r.Mode)
	}
	return nil
}
