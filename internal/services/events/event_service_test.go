package events

import (
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

func newTestService() interfaces.EventService {
	return NewService(arbor.NewLogger())
}

func receiveEvent(t *testing.T, ch <-chan models.AnalysisEvent) models.AnalysisEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for event")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.AnalysisEvent{}
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	service := newTestService()
	defer service.Close()

	ch, unsubscribe := service.Subscribe("analysis_1")
	defer unsubscribe()

	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_1"})
	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisProgress, AnalysisID: "analysis_1", Progress: 10})
	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisCompleted, AnalysisID: "analysis_1"})

	expected := []models.AnalysisEventType{
		models.EventAnalysisStarted,
		models.EventAnalysisProgress,
		models.EventAnalysisCompleted,
	}
	for i, want := range expected {
		event := receiveEvent(t, ch)
		if event.Type != want {
			t.Errorf("event %d: got %s, want %s", i, event.Type, want)
		}
	}
}

func TestPublishRoutesByAnalysisID(t *testing.T) {
	service := newTestService()
	defer service.Close()

	chA, cancelA := service.Subscribe("analysis_a")
	defer cancelA()
	chB, cancelB := service.Subscribe("analysis_b")
	defer cancelB()

	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_a"})

	event := receiveEvent(t, chA)
	if event.AnalysisID != "analysis_a" {
		t.Errorf("got analysis ID %s, want analysis_a", event.AnalysisID)
	}

	select {
	case stray := <-chB:
		t.Errorf("subscriber for analysis_b received stray event %s", stray.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWildcardSubscriberReceivesAll(t *testing.T) {
	service := newTestService()
	defer service.Close()

	ch, unsubscribe := service.Subscribe(interfaces.SubscribeAll)
	defer unsubscribe()

	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_1"})
	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_2"})

	first := receiveEvent(t, ch)
	second := receiveEvent(t, ch)
	if first.AnalysisID != "analysis_1" || second.AnalysisID != "analysis_2" {
		t.Errorf("wildcard subscriber got %s then %s", first.AnalysisID, second.AnalysisID)
	}
}

func TestPublishStampsTimestamp(t *testing.T) {
	service := newTestService()
	defer service.Close()

	ch, unsubscribe := service.Subscribe("analysis_1")
	defer unsubscribe()

	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_1"})

	event := receiveEvent(t, ch)
	if event.Timestamp.IsZero() {
		t.Error("expected a publish timestamp on the event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	service := newTestService()
	defer service.Close()

	ch, unsubscribe := service.Subscribe("analysis_1")
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}

	// Unsubscribed listeners no longer receive; publish must not panic
	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_1"})
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	service := newTestService()

	ch, _ := service.Subscribe("analysis_1")
	if err := service.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after service close")
	}

	// Publish and Subscribe after close are safe no-ops
	service.Publish(models.AnalysisEvent{Type: models.EventAnalysisStarted, AnalysisID: "analysis_1"})
	late, _ := service.Subscribe("analysis_1")
	if _, ok := <-late; ok {
		t.Error("expected a closed channel from a post-close subscribe")
	}

	if err := service.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}
