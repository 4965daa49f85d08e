package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/voxrelay/voxctl/internal/metrics"
)

// Frame is one live-channel message pushed to connected agents.
type Frame struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

// Hub fans live-channel frames out to every connected agent. Agents that
// miss frames recover through the polling relay; the hub never buffers.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handle upgrades the connection and keeps it registered until it closes.
// Inbound frames are drained and ignored; agents answer through HTTP.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	metrics.ConnectedAgents.Inc()
	log.Info().Str("remote", r.RemoteAddr).Msg("agent connected")

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		metrics.ConnectedAgents.Dec()
		conn.Close()
		log.Info().Str("remote", r.RemoteAddr).Msg("agent disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes one frame to every connected agent. Write failures drop
// only the failing connection.
func (h *Hub) Broadcast(event string, data map[string]any) {
	frame := Frame{Event: event, Data: data, Timestamp: time.Now().UnixMilli()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn().Err(err).Msg("live channel write failed")
			conn.Close()
			delete(h.conns, conn)
			metrics.ConnectedAgents.Dec()
		}
	}
}

// Connected reports the number of registered agents.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
