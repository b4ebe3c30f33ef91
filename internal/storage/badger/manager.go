package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
)

// Manager owns the embedded Badger database and bundles the run and ticker
// stores behind one lifecycle
type Manager struct {
	store   *badgerhold.Store
	runs    interfaces.RunStorage
	tickers interfaces.TickerStorage
	logger  arbor.ILogger
}

// NewManager opens the database at the configured path and wires the stores
func NewManager(config *common.BadgerConfig, logger arbor.ILogger) (interfaces.StorageManager, error) {
	store, err := openStore(config, logger)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:   store,
		runs:    NewRunStorage(store, logger),
		tickers: NewTickerStorage(store, logger),
		logger:  logger,
	}, nil
}

// Runs returns the analysis run store
func (m *Manager) Runs() interfaces.RunStorage {
	return m.runs
}

// Tickers returns the selected-tickers store
func (m *Manager) Tickers() interfaces.TickerStorage {
	return m.tickers
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage manager")
	return m.store.Close()
}

// openStore opens (or creates) the badgerhold store. reset_on_startup wipes
// the database directory first, for clean-slate test deployments.
func openStore(config *common.BadgerConfig, logger arbor.ILogger) (*badgerhold.Store, error) {
	if config.ResetOnStartup {
		if err := os.RemoveAll(config.Path); err != nil {
			logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to reset database directory")
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Badger's own logger is noisy; arbor logs the lifecycle

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", config.Path, err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger store opened")
	return store, nil
}
