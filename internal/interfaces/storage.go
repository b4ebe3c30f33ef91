package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/finsight/stockpulse/internal/models"
)

// ErrRunNotFound is returned when an analysis run does not exist in the store
var ErrRunNotFound = errors.New("analysis run not found")

// RunStorage is the local ephemeral store for analysis runs. It survives
// process restarts (reloads) but is scoped to one deployment; long-term
// history lives in the remote store.
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
	GetRun(ctx context.Context, id string) (*models.AnalysisRun, error)
	GetAllRuns(ctx context.Context) ([]*models.AnalysisRun, error)
	DeleteRun(ctx context.Context, id string) error

	// EvictExpired deletes terminal runs whose completion is older than ttl.
	// Returns the number of runs removed.
	EvictExpired(ctx context.Context, ttl time.Duration) (int, error)
}

// TickerStorage mirrors the UI's selected-tickers list into the local store
type TickerStorage interface {
	SaveSelected(ctx context.Context, symbols []string) error
	GetSelected(ctx context.Context) ([]string, error)
	ClearSelected(ctx context.Context) error
}

// StorageManager bundles the local stores behind one lifecycle
type StorageManager interface {
	Runs() RunStorage
	Tickers() TickerStorage
	Close() error
}
