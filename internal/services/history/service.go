// Package history exposes the remote analysis history behind a short-lived
// cache so repeated UI polls do not hammer the backend.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

const cacheTTL = 30 * time.Second

// Service implements interfaces.HistoryService over the backend client
type Service struct {
	backend interfaces.BackendClient
	logger  arbor.ILogger

	mu        sync.Mutex
	cached    []models.HistoryEntry
	fetchedAt time.Time
}

func NewService(backend interfaces.BackendClient, logger arbor.ILogger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// List returns history entries newest first. A cached result is served while
// fresh; otherwise the backend is consulted and the cache refreshed.
func (s *Service) List(ctx context.Context) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < cacheTTL {
		entries := append([]models.HistoryEntry(nil), s.cached...)
		s.mu.Unlock()
		return entries, nil
	}
	s.mu.Unlock()

	entries, err := s.backend.ListHistory(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to fetch analysis history")
		return nil, err
	}

	sortNewestFirst(entries)

	s.mu.Lock()
	s.cached = entries
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(entries)).Msg("Analysis history refreshed")

	return append([]models.HistoryEntry(nil), entries...), nil
}

// Get fetches one entry by ID. Served from cache when present, otherwise
// straight from the backend.
func (s *Service) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < cacheTTL {
		for i := range s.cached {
			if s.cached[i].ID == id {
				entry := s.cached[i]
				s.mu.Unlock()
				return &entry, nil
			}
		}
	}
	s.mu.Unlock()

	return s.backend.GetHistory(ctx, id)
}

// Delete removes one entry and drops the cache so the next List reflects it
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteHistory(ctx, id); err != nil {
		return err
	}

	s.Invalidate()
	s.logger.Info().Str("history_id", id).Msg("History entry deleted")
	return nil
}

// Invalidate drops the cache
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// sortNewestFirst orders entries by completion time descending, falling back
// to start time for entries the backend returned without one
func sortNewestFirst(entries []models.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i]).After(entryTime(entries[j]))
	})
}

func entryTime(e models.HistoryEntry) time.Time {
	if e.CompletedAt != nil {
		return *e.CompletedAt
	}
	if e.StartTime != nil {
		return *e.StartTime
	}
	return time.Time{}
}
