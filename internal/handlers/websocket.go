package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/finsight/stockpulse/internal/common"
	"github.com/finsight/stockpulse/internal/interfaces"
	"github.com/finsight/stockpulse/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler streams analysis events to UI clients. Each connection
// subscribes to one analysis ID (or all runs) and receives the typed event
// stream in publish order; progress frames are rate limited per client.
type WebSocketHandler struct {
	eventService     interfaces.EventService
	analysisService  interfaces.AnalysisService
	logger           arbor.ILogger
	throttleInterval time.Duration
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

func NewWebSocketHandler(
	eventService interfaces.EventService,
	analysisService interfaces.AnalysisService,
	config *common.WebSocketConfig,
	logger arbor.ILogger,
) *WebSocketHandler {
	h := &WebSocketHandler{
		eventService:     eventService,
		analysisService:  analysisService,
		logger:           logger,
		serverInstanceID: uuid.New().String(),
	}

	if config != nil && config.ProgressThrottle != "" {
		if interval, err := time.ParseDuration(config.ProgressThrottle); err == nil {
			h.throttleInterval = interval
			logger.Debug().
				Str("interval", config.ProgressThrottle).
				Msg("Progress event throttling enabled")
		} else {
			logger.Warn().
				Err(err).
				Str("interval", config.ProgressThrottle).
				Msg("Failed to parse progress throttle interval - throttling disabled")
		}
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	return h
}

// clientMessage is what a connected client may send over the socket
type clientMessage struct {
	Action     string `json:"action"`
	AnalysisID string `json:"analysis_id"`
}

// helloMessage is sent once on connect so clients can detect server restarts
type helloMessage struct {
	Type             string `json:"type"`
	ServerInstanceID string `json:"serverInstanceId"`
	AnalysisID       string `json:"analysisId"`
}

// HandleWebSocket upgrades the connection and streams events for the run
// named by the analysis_id query parameter ("*" or absent subscribes to all)
// GET /ws?analysis_id=analysis_xxx
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	analysisID := r.URL.Query().Get("analysis_id")
	if analysisID == "" {
		analysisID = interfaces.SubscribeAll
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	events, unsubscribe := h.eventService.Subscribe(analysisID)
	defer unsubscribe()

	// Serializes writes between the event pump and the read loop's replies
	var writeMu sync.Mutex

	h.logger.Debug().
		Str("analysis_id", analysisID).
		Str("remote", r.RemoteAddr).
		Msg("WebSocket client connected")

	if err := h.writeJSON(conn, &writeMu, helloMessage{
		Type:             "HELLO",
		ServerInstanceID: h.serverInstanceID,
		AnalysisID:       analysisID,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send hello frame")
		return
	}

	done := make(chan struct{})
	go h.pumpEvents(conn, &writeMu, events, done)

	// Read loop keeps the connection alive and services status requests
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug().Err(err).Msg("Ignoring malformed WebSocket message")
			continue
		}

		if msg.Action == "status" {
			h.sendStatus(conn, &writeMu, msg.AnalysisID, analysisID)
		}
	}

	close(done)
	h.logger.Debug().Str("analysis_id", analysisID).Msg("WebSocket client disconnected")
}

// pumpEvents forwards subscribed events to the client until the subscription
// channel closes or the connection is done. Progress frames beyond the
// configured rate are dropped; the next frame carries a newer snapshot anyway.
func (h *WebSocketHandler) pumpEvents(conn *websocket.Conn, writeMu *sync.Mutex, events <-chan models.AnalysisEvent, done <-chan struct{}) {
	var progressThrottler *rate.Limiter
	if h.throttleInterval > 0 {
		progressThrottler = rate.NewLimiter(rate.Every(h.throttleInterval), 1)
	}

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			if event.Type == models.EventAnalysisProgress &&
				progressThrottler != nil && !progressThrottler.Allow() {
				continue
			}

			if err := h.writeJSON(conn, writeMu, event); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send event to WebSocket client")
				return
			}
		}
	}
}

// sendStatus replies to a client status request with a run snapshot
func (h *WebSocketHandler) sendStatus(conn *websocket.Conn, writeMu *sync.Mutex, requestedID, subscribedID string) {
	id := requestedID
	if id == "" && subscribedID != interfaces.SubscribeAll {
		id = subscribedID
	}
	if id == "" {
		return
	}

	event := models.AnalysisEvent{
		Type:       models.EventStatusResponse,
		AnalysisID: id,
		Timestamp:  time.Now(),
	}
	if run, ok := h.analysisService.GetAnalysis(id); ok {
		event.Run = run
		event.Progress = run.Progress
		event.Phase = run.Phase
	}

	if err := h.writeJSON(conn, writeMu, event); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send status response")
	}
}

func (h *WebSocketHandler) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}
