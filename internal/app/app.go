package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/backend"
	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/handlers"
	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/services/analysis"
	"github.com/finsight/stockpulse/internal/services/events"
	"github.com/finsight/stockpulse/internal/services/history"
	badgerstorage "github.com/finsight/stockpulse/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	EventService    interfaces.EventService
	BackendClient   interfaces.BackendClient
	AnalysisService interfaces.AnalysisService
	HistoryService  interfaces.HistoryService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnalysisHandler *handlers.AnalysisHandler
	HistoryHandler  *handlers.HistoryHandler
	TickerHandler   *handlers.TickerHandler
	WSHandler       *handlers.WebSocketHandler

	evictionCron *cron.Cron
	orchestrator *analysis.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage layer (embedded Badger)
	storageManager, err := badgerstorage.NewManager(&cfg.Storage.Badger, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager
	logger.Debug().
		Str("storage", "badger").
		Str("path", cfg.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// Services
	app.EventService = events.NewService(logger)
	app.BackendClient = backend.NewClient(&cfg.Backend, logger)
	app.HistoryService = history.NewService(app.BackendClient, logger)

	app.orchestrator = analysis.NewService(
		app.BackendClient,
		app.EventService,
		app.StorageManager,
		app.HistoryService,
		&cfg.Analysis,
		logger,
	)
	app.AnalysisService = app.orchestrator

	// Re-animate runs interrupted by the previous process
	if err := app.AnalysisService.Resume(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Resumption scan failed - continuing without resumed runs")
	}

	// Handlers
	app.APIHandler = handlers.NewAPIHandler()
	app.AnalysisHandler = handlers.NewAnalysisHandler(app.AnalysisService, logger)
	app.HistoryHandler = handlers.NewHistoryHandler(app.HistoryService, logger)
	app.TickerHandler = handlers.NewTickerHandler(app.StorageManager.Tickers(), logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, app.AnalysisService, &cfg.WebSocket, logger)

	// Periodic eviction of terminal runs past their TTL
	if err := app.startEvictionSweep(); err != nil {
		return nil, fmt.Errorf("failed to start eviction sweep: %w", err)
	}

	logger.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("eviction_schedule", cfg.Analysis.EvictionSchedule).
		Msg("Application initialization complete")

	return app, nil
}

// startEvictionSweep schedules the local store sweep that removes terminal
// runs older than the configured TTL
func (a *App) startEvictionSweep() error {
	a.evictionCron = cron.New()

	_, err := a.evictionCron.AddFunc(a.Config.Analysis.EvictionSchedule, func() {
		evicted, err := a.StorageManager.Runs().EvictExpired(context.Background(), a.Config.Analysis.RunTTL)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Eviction sweep failed")
			return
		}
		if evicted > 0 {
			a.Logger.Debug().Int("evicted", evicted).Msg("Evicted expired analysis runs")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid eviction schedule %q: %w", a.Config.Analysis.EvictionSchedule, err)
	}

	a.evictionCron.Start()
	return nil
}

// Close shuts down application components in reverse dependency order
func (a *App) Close() {
	if a.evictionCron != nil {
		a.evictionCron.Stop()
	}

	if a.orchestrator != nil {
		a.orchestrator.Stop()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}

	a.Logger.Info().Msg("Application closed")
}
