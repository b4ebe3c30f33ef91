package interfaces

import (
	"context"

	"github.com/finsight/stockpulse/internal/models"
)

// AnalysisService is the background task host owning the lifecycle of
// analysis runs. It never returns backend failures to callers; all outcomes
// flow through the event stream.
type AnalysisService interface {
	// StartAnalysis validates the request, cancels any in-flight run, creates
	// a new run and returns its ID immediately. Background work proceeds
	// after return.
	StartAnalysis(ctx context.Context, tickers []string, mode models.AnalysisMode) (string, error)

	// CancelAnalysis cooperatively cancels a running analysis. Idempotent;
	// cancelling a terminal or unknown run is a no-op.
	CancelAnalysis(id string) error

	// GetAnalysis returns a snapshot of one run, if known
	GetAnalysis(id string) (*models.AnalysisRun, bool)

	// GetAllAnalyses returns snapshots of all runs currently in the local
	// store, including terminal runs not yet evicted
	GetAllAnalyses() []*models.AnalysisRun

	// Resume re-animates runs left in status=running by a previous process.
	// Called once at startup.
	Resume(ctx context.Context) error

	// Stop halts background work for shutdown
	Stop()
}
