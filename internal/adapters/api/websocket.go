package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dnsmonitor/internal/application/monitor"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Websocket event names
const (
	EventConnected       = "connected"
	EventCheckCompleted  = "check_completed"
	EventChangesDetected = "changes_detected"
)

const writeWait = 10 * time.Second

// Event is the message sent to websocket clients
type Event struct {
	Event  string               `json:"event"`
	Domain string               `json:"domain"`
	Result *monitor.CheckResult `json:"result,omitempty"`
}

// Hub fans check events out to the connected websocket clients
type Hub struct {
	domain      string
	connections map[*websocket.Conn]*sync.Mutex // conn -> write lock
	mu          sync.RWMutex
}

// NewHub creates a new websocket hub
func NewHub(domain string) *Hub {
	return &Hub{
		domain:      domain,
		connections: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = &sync.Mutex{}
	log.Info().Str("remote_addr", conn.RemoteAddr().String()).Int("clients", len(h.connections)).Msg("WebSocket connection registered")
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, conn)
	log.Info().Str("remote_addr", conn.RemoteAddr().String()).Int("clients", len(h.connections)).Msg("WebSocket connection unregistered")
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// NotifyChanges implements monitor.Notifier
func (h *Hub) NotifyChanges(ctx context.Context, result *monitor.CheckResult) error {
	h.Broadcast(EventChangesDetected, result)
	return nil
}

// Broadcast sends an event to every connected client. Clients that cannot be
// written to are dropped.
func (h *Hub) Broadcast(event string, result *monitor.CheckResult) {
	data, err := json.Marshal(Event{Event: event, Domain: h.domain, Result: result})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	type target struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}
	targets := make([]target, 0, len(h.connections))
	for conn, lock := range h.connections {
		targets = append(targets, target{conn, lock})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		if err := h.write(t.conn, t.lock, data); err != nil {
			log.Warn().Err(err).Str("remote_addr", t.conn.RemoteAddr().String()).Msg("Failed to send event")
			h.Unregister(t.conn)
			_ = t.conn.Close()
		}
	}
	log.Debug().Str("event", event).Int("clients", len(targets)).Msg("Event broadcast")
}

func (h *Hub) write(conn *websocket.Conn, lock *sync.Mutex, data []byte) error {
	lock.Lock()
	defer lock.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// HandleWebSocket godoc
//
//	@Summary		Live check feed
//	@Description	Upgrades to a websocket that receives an event for every check run through the API and every change detected
//	@Tags			checks
//	@Success		101
//	@Router			/ws [get]
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
	}()

	log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("WebSocket connection established")

	h.hub.Register(conn)

	hello, _ := json.Marshal(Event{Event: EventConnected, Domain: h.hub.domain})
	h.hub.mu.RLock()
	lock := h.hub.connections[conn]
	h.hub.mu.RUnlock()
	if err := h.hub.write(conn, lock, hello); err != nil {
		log.Error().Err(err).Msg("Failed to send greeting")
		return
	}

	// Keep connection alive and listen for close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("WebSocket connection closed")
			break
		}
	}
}
