package server

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// CollabServer manages WebSocket connections and the project rooms they
// broadcast through. It carries no canvas state of its own: edits flow
// through it untouched, and each client applies what it receives.
type CollabServer struct {
	upgrader     websocket.Upgrader
	rooms        *RoomManager
	clients      map[*Client]bool
	clientsMutex sync.RWMutex
	startedAt    time.Time

	// Counters surfaced by the metrics endpoint.
	pixelBatches atomic.Int64
	joins        atomic.Int64
}

// NewCollabServer initializes a CollabServer.
func NewCollabServer() *CollabServer {
	return &CollabServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development. RESTRICT THIS IN PRODUCTION!
				return true
			},
		},
		rooms:     NewRoomManager(),
		clients:   make(map[*Client]bool),
		startedAt: time.Now(),
	}
}

// HandleConnections upgrades HTTP requests to WebSocket connections and
// starts the client's pumps. Clients join a project room with a subsequent
// join-project message.
func (s *CollabServer) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, uuid.New().String())
	s.clientsMutex.Lock()
	s.clients[client] = true
	s.clientsMutex.Unlock()
	log.Printf("Client %s connected from %s.", client.socketID, conn.RemoteAddr().String())

	go client.WritePump()
	go client.ReadPump(s)
}

// unregisterClient removes a client from the active list and its room.
// Called by the client's ReadPump on any terminal read error.
func (s *CollabServer) unregisterClient(client *Client) {
	s.clientsMutex.Lock()
	registered := s.clients[client]
	if registered {
		delete(s.clients, client)
		close(client.send)
	}
	s.clientsMutex.Unlock()

	if registered {
		s.rooms.RemoveClientFromRoom(client)
		log.Printf("Client %s unregistered.", client.socketID)
	}
}

// Stats is a point-in-time snapshot of the collaboration server for the
// metrics endpoint.
type Stats struct {
	ActiveConnections int   `json:"active_connections"`
	ActiveRooms       int   `json:"active_rooms"`
	PixelBatchesTotal int64 `json:"pixel_batches_total"`
	JoinsTotal        int64 `json:"joins_total"`
	UptimeSec         int64 `json:"uptime_sec"`
}

// Snapshot returns current server statistics.
func (s *CollabServer) Snapshot() Stats {
	s.clientsMutex.RLock()
	active := len(s.clients)
	s.clientsMutex.RUnlock()
	return Stats{
		ActiveConnections: active,
		ActiveRooms:       s.rooms.RoomCount(),
		PixelBatchesTotal: s.pixelBatches.Load(),
		JoinsTotal:        s.joins.Load(),
		UptimeSec:         int64(time.Since(s.startedAt).Seconds()),
	}
}
