// Package analysis implements the orchestrator: the background task host
// that drives analyze and compare runs against the analysis backend, emits
// the typed event stream, simulates progress while requests are outstanding,
// and persists run state for resumption across restarts.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
	"github.com/finsight/stockpulse/internal/report"
)

// resumeGrace is how long past the progress window a resumed run may wait
// for a backend response that most likely died with the previous process
const resumeGrace = 30 * time.Second

const interruptedMessage = "analysis interrupted by a restart - please run it again"

type activeRun struct {
	run     *models.AnalysisRun
	cancel  context.CancelFunc
	resumed bool
}

// Service is the analysis orchestrator. All run-state mutation happens under
// one mutex; subscribers observe state changes only through the event stream.
type Service struct {
	backend interfaces.BackendClient
	events  interfaces.EventService
	storage interfaces.StorageManager
	history interfaces.HistoryService
	config  *common.AnalysisConfig
	logger  arbor.ILogger

	mu        sync.Mutex
	runs      map[string]*activeRun
	currentID string // ID of the run currently in status=running, if any

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewService creates the orchestrator. The history service may be nil when
// no remote store is configured.
func NewService(
	backend interfaces.BackendClient,
	eventService interfaces.EventService,
	storage interfaces.StorageManager,
	history interfaces.HistoryService,
	config *common.AnalysisConfig,
	logger arbor.ILogger,
) *Service {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Service{
		backend:    backend,
		events:     eventService,
		storage:    storage,
		history:    history,
		config:     config,
		logger:     logger,
		runs:       make(map[string]*activeRun),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}

// StartAnalysis validates the ticker set, cancels any in-flight run, creates
// a new run and returns its ID. Background work begins before return but all
// outcomes are delivered via events only.
func (s *Service) StartAnalysis(ctx context.Context, tickers []string, mode models.AnalysisMode) (string, error) {
	symbols := common.NormalizeSymbols(tickers)

	request := models.StartAnalysisRequest{Tickers: symbols, Mode: mode}
	if err := request.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()

	// One running analysis per session: a new start displaces the old run
	if s.currentID != "" {
		if prior, ok := s.runs[s.currentID]; ok && !prior.run.IsTerminal() {
			s.logger.Info().
				Str("analysis_id", s.currentID).
				Msg("Cancelling in-flight analysis displaced by new request")
			s.cancelLocked(prior)
		}
	}

	id := common.NewAnalysisID()
	run := models.NewAnalysisRun(id, symbols, mode)
	runCtx, cancel := context.WithCancel(s.baseCtx)

	s.runs[id] = &activeRun{run: run, cancel: cancel}
	s.currentID = id

	s.saveLocked(run)
	s.events.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: id})
	s.mu.Unlock()

	runLogger := s.logger.WithCorrelationId(id)
	runLogger.Info().
		Strs("tickers", symbols).
		Str("mode", string(mode)).
		Msg("Analysis run started")

	s.wg.Add(2)
	go s.progressLoop(runCtx, id)
	go s.execute(runCtx, id, runLogger)

	return id, nil
}

// CancelAnalysis cooperatively cancels a running analysis. Idempotent.
func (s *Service) CancelAnalysis(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		return nil
	}

	s.cancelLocked(ar)
	return nil
}

// cancelLocked flips a run to cancelled, stops its background work and emits
// the terminal event. Caller holds s.mu.
func (s *Service) cancelLocked(ar *activeRun) {
	ar.run.MarkTerminal(models.StatusCancelled)
	ar.cancel()
	s.saveLocked(ar.run)
	s.events.Publish(models.AnalysisEvent{Type: models.EventAnalysisCancelled, AnalysisID: ar.run.ID})

	if s.currentID == ar.run.ID {
		s.currentID = ""
	}

	s.logger.Info().Str("analysis_id", ar.run.ID).Msg("Analysis run cancelled")
}

// GetAnalysis returns a snapshot of one run, if known
func (s *Service) GetAnalysis(id string) (*models.AnalysisRun, bool) {
	s.mu.Lock()
	if ar, ok := s.runs[id]; ok {
		snapshot := ar.run.Clone()
		s.mu.Unlock()
		return snapshot, true
	}
	s.mu.Unlock()

	// Terminal runs evicted from memory may still sit in the local store
	run, err := s.storage.Runs().GetRun(context.Background(), id)
	if err != nil {
		return nil, false
	}
	return run, true
}

// GetAllAnalyses returns snapshots of every run in the local store,
// including terminal runs not yet evicted
func (s *Service) GetAllAnalyses() []*models.AnalysisRun {
	runs, err := s.storage.Runs().GetAllRuns(context.Background())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list analysis runs from store")
		return nil
	}

	// Prefer in-memory state for live runs; the stored copy may lag a tick
	s.mu.Lock()
	for i, run := range runs {
		if ar, ok := s.runs[run.ID]; ok {
			runs[i] = ar.run.Clone()
		}
	}
	s.mu.Unlock()

	return runs
}

// Resume re-animates runs left in status=running by a previous process.
// The original HTTP work did not survive, so resumption is best effort:
// progress continues from the stored start time and the run is failed with a
// restart prompt once the progress window plus grace has elapsed.
func (s *Service) Resume(ctx context.Context) error {
	runs, err := s.storage.Runs().GetAllRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan local store for resumable runs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range runs {
		if run.IsTerminal() {
			continue
		}

		runCtx, cancel := context.WithCancel(s.baseCtx)
		run.Phase = "Resuming analysis..."
		s.runs[run.ID] = &activeRun{run: run, cancel: cancel, resumed: true}
		s.currentID = run.ID
		s.saveLocked(run)

		s.logger.Info().
			Str("analysis_id", run.ID).
			Strs("tickers", run.Tickers).
			Str("elapsed", time.Since(run.StartTime).Round(time.Second).String()).
			Msg("Resuming analysis run from local store")

		s.wg.Add(1)
		go s.progressLoop(runCtx, run.ID)
	}

	return nil
}

// Stop halts all background work for shutdown
func (s *Service) Stop() {
	s.baseCancel()
	s.wg.Wait()
}

// execute runs the backend workflow for one run
func (s *Service) execute(ctx context.Context, id string, logger arbor.ILogger) {
	defer s.wg.Done()

	s.mu.Lock()
	ar, ok := s.runs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	mode := ar.run.Mode
	tickers := append([]string(nil), ar.run.Tickers...)
	s.mu.Unlock()

	switch mode {
	case models.ModeCompare:
		s.executeCompare(ctx, id, tickers, logger)
	default:
		s.executeAnalyze(ctx, id, tickers, logger)
	}
}

// executeAnalyze fans out one backend request per ticker. All requests are
// launched before any is awaited; a single ticker's failure becomes an
// errors entry without aborting the run. An auth failure is not a per-ticker
// condition and fails the whole run instead.
func (s *Service) executeAnalyze(ctx context.Context, id string, tickers []string, logger arbor.ILogger) {
	var wg sync.WaitGroup

	for _, ticker := range tickers {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			payload, err := s.backend.AnalyzeTicker(ctx, symbol)
			if err != nil {
				if errors.Is(err, interfaces.ErrAuth) {
					s.failRun(id, err, logger)
					return
				}
				s.completeTicker(id, symbol, nil, err, logger)
				return
			}
			s.completeTicker(id, symbol, report.Normalize(payload), nil, logger)
		}(ticker)
	}

	wg.Wait()
	s.finalize(id, logger)
}

// completeTicker records one ticker outcome and emits its event. Outcomes
// arriving after the run went terminal (cancellation) are discarded.
func (s *Service) completeTicker(id, symbol string, rpt *models.CanonicalReport, err error, logger arbor.ILogger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		logger.Debug().Str("ticker", symbol).Msg("Discarding ticker result for terminal run")
		return
	}

	if err != nil {
		ar.run.Errors[symbol] = err.Error()
		s.saveLocked(ar.run)
		s.events.Publish(models.AnalysisEvent{
			Type:       models.EventTickerError,
			AnalysisID: id,
			Ticker:     symbol,
			Error:      err.Error(),
		})
		logger.Warn().Err(err).Str("ticker", symbol).Msg("Ticker analysis failed")
		return
	}

	ar.run.Results[symbol] = rpt
	s.saveLocked(ar.run)
	s.events.Publish(models.AnalysisEvent{
		Type:       models.EventTickerCompleted,
		AnalysisID: id,
		Ticker:     symbol,
		Report:     rpt,
	})
	logger.Info().Str("ticker", symbol).Msg("Ticker analysis completed")
}

// executeCompare issues the single comparison request and unpacks both the
// per-ticker analyses and the cross-ticker verdict
func (s *Service) executeCompare(ctx context.Context, id string, tickers []string, logger arbor.ILogger) {
	resp, err := s.backend.Compare(ctx, tickers)
	if err != nil {
		s.failRun(id, err, logger)
		return
	}

	s.mu.Lock()
	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		s.mu.Unlock()
		logger.Debug().Msg("Discarding comparison result for terminal run")
		return
	}

	// Per-ticker reports first, in request order
	for _, symbol := range tickers {
		payload, found := resp.Analyses[symbol]
		if !found {
			ar.run.Errors[symbol] = "no analysis returned for ticker"
			s.events.Publish(models.AnalysisEvent{
				Type:       models.EventTickerError,
				AnalysisID: id,
				Ticker:     symbol,
				Error:      ar.run.Errors[symbol],
			})
			continue
		}

		rpt := report.Normalize(payload)
		ar.run.Results[symbol] = rpt
		s.events.Publish(models.AnalysisEvent{
			Type:       models.EventTickerCompleted,
			AnalysisID: id,
			Ticker:     symbol,
			Report:     rpt,
		})
	}

	comparison := &models.ComparisonResult{
		Winner:            strings.ToUpper(strings.TrimSpace(resp.RecommendedStock)),
		Ranking:           resp.Ranking,
		ComparisonSummary: resp.ComparisonSummary,
	}
	ar.run.Comparison = comparison
	s.saveLocked(ar.run)
	s.events.Publish(models.AnalysisEvent{
		Type:       models.EventComparisonCompleted,
		AnalysisID: id,
		Comparison: comparison,
	})
	s.mu.Unlock()

	logger.Info().
		Str("winner", comparison.Winner).
		Int("ranked", len(comparison.Ranking)).
		Msg("Comparison completed")

	s.finalize(id, logger)
}

// finalize flips a run to completed, jumps progress to 100 and emits the
// terminal event. Completion on every ticker is guaranteed by construction:
// each ticker ended in Results or Errors before the fan-out returned.
func (s *Service) finalize(id string, logger arbor.ILogger) {
	s.mu.Lock()

	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		s.mu.Unlock()
		return
	}

	ar.run.SetProgress(100, "Analysis complete")
	ar.run.MarkTerminal(models.StatusCompleted)
	s.saveLocked(ar.run)

	s.events.Publish(models.AnalysisEvent{
		Type:       models.EventAnalysisCompleted,
		AnalysisID: id,
		Results:    ar.run.Results,
		Errors:     ar.run.Errors,
	})

	if s.currentID == id {
		s.currentID = ""
	}
	resultCount := len(ar.run.Results)
	errorCount := len(ar.run.Errors)
	s.mu.Unlock()

	logger.Info().
		Int("results", resultCount).
		Int("errors", errorCount).
		Msg("Analysis run completed")

	// The UI's ticker picker is cleared once its run lands, and the remote
	// history now contains the new entry
	if err := s.storage.Tickers().ClearSelected(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear selected tickers after completion")
	}
	if s.history != nil {
		s.history.Invalidate()
	}
}

// failRun flips a run to error. Used for compare-mode failure, analyze-mode
// auth failure and resumed runs that outlived their window; cancelled runs
// are left untouched.
func (s *Service) failRun(id string, cause error, logger arbor.ILogger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		return
	}

	ar.run.Errors["_run"] = cause.Error()
	ar.run.MarkTerminal(models.StatusError)
	s.saveLocked(ar.run)

	s.events.Publish(models.AnalysisEvent{
		Type:       models.EventAnalysisError,
		AnalysisID: id,
		Error:      cause.Error(),
	})

	if s.currentID == id {
		s.currentID = ""
	}

	logger.Warn().Err(cause).Str("analysis_id", id).Msg("Analysis run failed")
}

// progressLoop emits simulated progress on a one-second cadence until the
// run reaches a terminal status
func (s *Service) progressLoop(ctx context.Context, id string) {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.progressTick(id) {
				return
			}
		}
	}
}

// progressTick advances simulated progress once. Returns false when the run
// is terminal and the loop should stop.
func (s *Service) progressTick(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, ok := s.runs[id]
	if !ok || ar.run.IsTerminal() {
		return false
	}

	elapsed := time.Since(ar.run.StartTime)

	// A resumed run has no live backend request behind it; once it has
	// outlived the progress window plus grace, give up and prompt a restart
	if ar.resumed && elapsed > s.config.ProgressWindow+resumeGrace {
		ar.run.Errors["_run"] = interruptedMessage
		ar.run.MarkTerminal(models.StatusError)
		s.saveLocked(ar.run)
		s.events.Publish(models.AnalysisEvent{
			Type:       models.EventAnalysisError,
			AnalysisID: id,
			Error:      interruptedMessage,
		})
		if s.currentID == id {
			s.currentID = ""
		}
		return false
	}

	progress := simulatedProgress(elapsed, s.config.ProgressWindow, s.config.ProgressCeiling)
	if progress > ar.run.Progress {
		ar.run.SetProgress(progress, phaseForProgress(progress))
		s.saveLocked(ar.run)
	}

	s.events.Publish(models.AnalysisEvent{
		Type:       models.EventAnalysisProgress,
		AnalysisID: id,
		Progress:   ar.run.Progress,
		Phase:      ar.run.Phase,
	})

	return true
}

// saveLocked persists the run, logging rather than propagating store errors.
// Caller holds s.mu.
func (s *Service) saveLocked(run *models.AnalysisRun) {
	if err := s.storage.Runs().SaveRun(context.Background(), run.Clone()); err != nil {
		s.logger.Error().Err(err).Str("analysis_id", run.ID).Msg("Failed to persist analysis run")
	}
}
