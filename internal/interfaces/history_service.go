package interfaces

import (
	"context"

	"github.com/finsight/stockpulse/internal/models"
)

// HistoryService exposes the remote analysis history, cached briefly to keep
// the UI snappy. Entries are sorted by completion time, newest first.
type HistoryService interface {
	List(ctx context.Context) ([]models.HistoryEntry, error)
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
	Delete(ctx context.Context, id string) error

	// Invalidate drops the cache; the orchestrator calls this after a run
	// completes so the next List reflects it
	Invalidate()
}
