package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

// RunStorage implements the RunStorage interface for Badger. One record per
// analysis run, keyed by the run ID.
type RunStorage struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(store *badgerhold.Store, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		store:  store,
		logger: logger,
	}
}

// SaveRun inserts or updates an analysis run
func (s *RunStorage) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid run: %w", err)
	}

	if err := s.store.Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetRun retrieves one analysis run by ID
func (s *RunStorage) GetRun(ctx context.Context, id string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := s.store.Get(id, &run)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return &run, nil
}

// GetAllRuns returns all stored runs, newest first
func (s *RunStorage) GetAllRuns(ctx context.Context) ([]*models.AnalysisRun, error) {
	var runs []models.AnalysisRun
	err := s.store.Find(&runs, badgerhold.Where("ID").Ne("").SortBy("StartTime").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}

	out := make([]*models.AnalysisRun, len(runs))
	for i := range runs {
		out[i] = &runs[i]
	}
	return out, nil
}

// DeleteRun removes one analysis run
func (s *RunStorage) DeleteRun(ctx context.Context, id string) error {
	err := s.store.Delete(id, &models.AnalysisRun{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrRunNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}
	return nil
}

// EvictExpired deletes terminal runs whose completion is older than ttl
func (s *RunStorage) EvictExpired(ctx context.Context, ttl time.Duration) (int, error) {
	runs, err := s.GetAllRuns(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-ttl)
	evicted := 0

	for _, run := range runs {
		if !run.IsTerminal() || run.CompletedAt == nil || run.CompletedAt.After(cutoff) {
			continue
		}
		if err := s.store.Delete(run.ID, &models.AnalysisRun{}); err != nil {
			s.logger.Warn().Err(err).Str("analysis_id", run.ID).Msg("Failed to evict expired run")
			continue
		}
		evicted++
	}

	if evicted > 0 {
		s.logger.Debug().Int("count", evicted).Msg("Evicted expired analysis runs")
	}
	return evicted, nil
}
