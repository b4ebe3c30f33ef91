// Package events implements the per-analysis event bus. The orchestrator
// publishes from a single goroutine per run, so each subscriber channel
// observes events in publish order.
package events

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

// subscriberBuffer sizes each listener channel. A full channel drops events
// rather than blocking the orchestrator.
const subscriberBuffer = 256

type subscriber struct {
	analysisID string
	ch         chan models.AnalysisEvent
}

// Service implements EventService with an analysisID-keyed listener registry
type Service struct {
	subscribers map[string][]*subscriber
	mu          sync.RWMutex
	closed      bool
	logger      arbor.ILogger
}

// NewService creates a new event service
func NewService(logger arbor.ILogger) interfaces.EventService {
	return &Service{
		subscribers: make(map[string][]*subscriber),
		logger:      logger,
	}
}

// Subscribe registers a listener for one analysis ID (or SubscribeAll)
func (s *Service) Subscribe(analysisID string) (<-chan models.AnalysisEvent, func()) {
	sub := &subscriber{
		analysisID: analysisID,
		ch:         make(chan models.AnalysisEvent, subscriberBuffer),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	s.subscribers[analysisID] = append(s.subscribers[analysisID], sub)
	count := len(s.subscribers[analysisID])
	s.mu.Unlock()

	s.logger.Debug().
		Str("analysis_id", analysisID).
		Int("subscriber_count", count).
		Msg("Event listener subscribed")

	cancel := func() { s.unsubscribe(sub) }
	return sub.ch, cancel
}

// unsubscribe removes one listener and closes its channel
func (s *Service) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listeners := s.subscribers[sub.analysisID]
	for i, candidate := range listeners {
		if candidate == sub {
			s.subscribers[sub.analysisID] = append(listeners[:i], listeners[i+1:]...)
			close(sub.ch)

			s.logger.Debug().
				Str("analysis_id", sub.analysisID).
				Msg("Event listener unsubscribed")
			return
		}
	}
}

// Publish delivers an event to listeners of its analysis ID plus wildcard
// listeners. Sends never block; a listener that cannot keep up loses events.
func (s *Service) Publish(event models.AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	for _, sub := range s.subscribers[event.AnalysisID] {
		s.deliver(sub, event)
	}
	if event.AnalysisID != interfaces.SubscribeAll {
		for _, sub := range s.subscribers[interfaces.SubscribeAll] {
			s.deliver(sub, event)
		}
	}
}

func (s *Service) deliver(sub *subscriber, event models.AnalysisEvent) {
	select {
	case sub.ch <- event:
	default:
		s.logger.Warn().
			Str("analysis_id", event.AnalysisID).
			Str("event_type", string(event.Type)).
			Msg("Event dropped - listener channel full")
	}
}

// Close shuts down the event service and closes all listener channels
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, listeners := range s.subscribers {
		for _, sub := range listeners {
			close(sub.ch)
		}
	}
	s.subscribers = make(map[string][]*subscriber)

	s.logger.Debug().Msg("Event service closed")
	return nil
}
