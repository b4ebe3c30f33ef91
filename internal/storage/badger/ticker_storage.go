package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

// selectedTickersKey is the single record key for the UI's ticker selection
const selectedTickersKey = "selected_tickers"

// TickerStorage implements the TickerStorage interface for Badger
type TickerStorage struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewTickerStorage creates a new TickerStorage instance
func NewTickerStorage(store *badgerhold.Store, logger arbor.ILogger) interfaces.TickerStorage {
	return &TickerStorage{
		store:  store,
		logger: logger,
	}
}

// SaveSelected mirrors the UI's selected-tickers list into the store
func (s *TickerStorage) SaveSelected(ctx context.Context, symbols []string) error {
	record := models.SelectedTickers{
		Key:       selectedTickersKey,
		Symbols:   common.NormalizeSymbols(symbols),
		UpdatedAt: time.Now(),
	}

	if err := s.store.Upsert(selectedTickersKey, &record); err != nil {
		return fmt.Errorf("failed to save selected tickers: %w", err)
	}
	return nil
}

// GetSelected returns the persisted ticker selection (empty when none)
func (s *TickerStorage) GetSelected(ctx context.Context) ([]string, error) {
	var record models.SelectedTickers
	err := s.store.Get(selectedTickersKey, &record)
	if err == badgerhold.ErrNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selected tickers: %w", err)
	}
	return record.Symbols, nil
}

// ClearSelected removes the persisted ticker selection
func (s *TickerStorage) ClearSelected(ctx context.Context) error {
	err := s.store.Delete(selectedTickersKey, &models.SelectedTickers{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to clear selected tickers: %w", err)
	}
	return nil
}
