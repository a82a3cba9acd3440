package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

// WSMessage is the envelope for all pushed updates.
type WSMessage struct {
	Type    string `json:"type"` // "device", "stats"
	Payload any    `json:"payload"`
}

// WSManager pushes device upserts and periodic stats to connected
// dashboard clients.
type WSManager struct {
	Service ports.TrackerService
	clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
}

// NewWSManager creates a new WSManager.
func NewWSManager(service ports.TrackerService) *WSManager {
	return &WSManager{
		Service: service,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start launches the periodic stats broadcaster.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case <-ticker.C:
				stats := m.Service.GetStats(ctx)
				m.broadcast(WSMessage{Type: "stats", Payload: stats})
			}
		}
	}()
}

// HandleWebSocket upgrades the connection and registers the client.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	// Drain the read side so control frames get processed; drop the client
	// on any read error.
	go func() {
		defer m.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastDevice pushes an upserted device record to all clients.
func (m *WSManager) BroadcastDevice(d domain.Device) {
	m.broadcast(WSMessage{Type: "device", Payload: d})
}

func (m *WSManager) broadcast(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

func (m *WSManager) drop(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn.Close()
	delete(m.clients, conn)
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.Close()
		delete(m.clients, conn)
	}
}
