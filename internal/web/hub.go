package web

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local tool, any origin may connect.
	},
}

// Broadcast frame types delivered to every dashboard client.
const (
	frameProgressUpdate = "progress_update"
	frameSessionUpdate  = "session_update"
)

// progressFrame reports accumulation progress for one session.
type progressFrame struct {
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	Scraped   int     `json:"scraped"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
}

// sessionFrame reports a session status transition.
type sessionFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Scraped   int    `json:"scraped"`
	Skipped   int    `json:"skipped"`
	Filename  string `json:"filename,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Hub tracks connected WebSocket clients and fans session frames out to all
// of them. Clients that fail a write are dropped on the spot.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastJSON marshals v once and writes it to every connected client.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

// handleWS upgrades the request and parks the connection in the hub until the
// client goes away. The dashboard never sends anything meaningful upstream, so
// the read loop exists only to notice disconnects.
func (s *Server) handleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s.hub.Add(ws)
	s.logger.Debug("dashboard client connected", "clients", s.hub.Count())

	_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Remove(ws)
	s.logger.Debug("dashboard client disconnected", "clients", s.hub.Count())
}
