// Package websocket pushes dashboard invalidation events to connected
// pages. Each client is bound to one dashboard session; the hub routes
// session events only to that session's clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"salespulse/internal/infrastructure"
)

// Message type constants
const (
	TypeConnection     = "connection"
	TypeDatasetRefresh = "dataset:refresh"
	TypeError          = "error"
)

// Event is the wire format of a hub message
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and routes events to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Outbound events
	events chan Event

	mu     sync.RWMutex
	logger *slog.Logger

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts down the hub and disconnects all clients
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("session_id", client.sessionID),
				slog.Int("client_count", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("client_count", count))

		case event := <-h.events:
			h.deliver(event)
		}
	}
}

// NotifySession sends an event to every client bound to the given
// session
func (h *Hub) NotifySession(sessionID, eventType string, payload interface{}) {
	h.dispatch(Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	h.dispatch(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) dispatch(event Event) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping event",
			slog.String("type", event.Type))
	}
}

func (h *Hub) deliver(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		// Session-scoped events go only to that session's clients
		if event.SessionID != "" && client.sessionID != event.SessionID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping message",
				slog.String("client_id", client.id))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
