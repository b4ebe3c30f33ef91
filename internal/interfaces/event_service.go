package interfaces

import "github.com/finsight/stockpulse/internal/models"

// SubscribeAll is the wildcard analysis ID: subscribers registered under it
// receive events from every run (used by the WebSocket broadcast path).
const SubscribeAll = "*"

// EventService manages the per-analysis event stream. Events published for a
// given run are delivered to each subscriber in publish order; a subscriber's
// channel therefore observes the ordering guarantees the orchestrator makes.
type EventService interface {
	// Subscribe registers a listener for one analysis ID (or SubscribeAll).
	// The returned cancel func unregisters the listener and closes the channel.
	Subscribe(analysisID string) (<-chan models.AnalysisEvent, func())

	// Publish delivers an event to all listeners of its analysis ID and to
	// wildcard listeners. Never blocks the caller; slow listeners drop events.
	Publish(event models.AnalysisEvent)

	// Close shuts down the event service and closes all subscriber channels
	Close() error
}
