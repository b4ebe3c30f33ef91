package interfaces

import (
	"context"
	"errors"

	"github.com/finsight/stockpulse/internal/models"
)

// ErrAuth is returned by the backend client on a 401. Auth failures are never
// retried and never degrade to a per-ticker error: the orchestrator fails the
// whole run, since every remaining request would fail the same way.
var ErrAuth = errors.New("authentication failed - please sign in again")

// CompareResponse is the comparison endpoint envelope. Analyses carry the
// same heterogeneous per-ticker payloads as the per-ticker endpoint; unknown
// fields are tolerated and ignored.
type CompareResponse struct {
	Analyses          map[string]map[string]any `json:"analyses"`
	ComparisonSummary string                    `json:"comparison_summary"`
	RecommendedStock  string                    `json:"recommended_stock"`
	Ranking           []models.RankingEntry     `json:"ranking"`
	Timestamp         string                    `json:"timestamp,omitempty"`
}

// BackendClient talks to the external multi-agent analysis backend. Calls are
// long-running (tens of seconds to minutes); callers pass a context and rely
// on the client's configured timeouts. No retries are performed.
type BackendClient interface {
	// AnalyzeTicker requests a single-ticker analysis and returns the raw
	// report payload (one of the three shapes the normalizer accepts).
	AnalyzeTicker(ctx context.Context, symbol string) (map[string]any, error)

	// Compare requests a comparison across the full ticker set
	Compare(ctx context.Context, tickers []string) (*CompareResponse, error)

	// ListHistory fetches the remote analysis history, newest first
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)

	// GetHistory fetches one history entry by analysis ID
	GetHistory(ctx context.Context, id string) (*models.HistoryEntry, error)

	// DeleteHistory removes one history entry by analysis ID
	DeleteHistory(ctx context.Context, id string) error
}
