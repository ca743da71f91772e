package server

import (
	"encoding/json"
	"log"
	"sync"
)

// Room is the broadcast scope for one project: every client editing the
// project belongs to its room and receives the edits and presence notices
// the others send. The server relays; it never merges. Concurrent edits to
// the same pixel resolve purely by apply order at each receiver.
type Room struct {
	ID           string // project id
	clients      map[*Client]bool
	clientsMutex sync.RWMutex
}

// NewRoom creates an empty room for a project id.
func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[*Client]bool),
	}
}

// AddClient places a client in the room and notifies existing members with
// a user-joined notice. No membership roster is kept for clients; peers are
// discovered only through join/leave events.
func (r *Room) AddClient(client *Client) {
	r.clientsMutex.Lock()
	r.clients[client] = true
	r.clientsMutex.Unlock()

	client.roomID = r.ID

	notice, err := json.Marshal(map[string]interface{}{
		"type": "user-joined",
		"data": map[string]interface{}{
			"socketId": client.socketID,
			"user":     client.user,
		},
	})
	if err != nil {
		log.Printf("Room %s: error marshaling user-joined: %v", r.ID, err)
		return
	}
	r.BroadcastExcept(client, notice)
	log.Printf("Room %s: client %s (%s) joined.", r.ID, client.socketID, client.user.Name)
}

// RemoveClient drops a client from the room and notifies the remaining
// members with a user-left notice.
func (r *Room) RemoveClient(client *Client) {
	removed := false
	r.clientsMutex.Lock()
	if _, exists := r.clients[client]; exists {
		delete(r.clients, client)
		removed = true
	}
	r.clientsMutex.Unlock()

	if !removed {
		return
	}
	client.roomID = ""

	notice, err := json.Marshal(map[string]interface{}{
		"type": "user-left",
		"data": map[string]interface{}{"socketId": client.socketID},
	})
	if err != nil {
		log.Printf("Room %s: error marshaling user-left: %v", r.ID, err)
		return
	}
	r.BroadcastExcept(nil, notice)
	log.Printf("Room %s: client %s left.", r.ID, client.socketID)
}

// BroadcastExcept queues a message to every room member except the sender.
// Pass nil to reach everyone. Sends never block: a full client buffer drops
// that client's copy.
func (r *Room) BroadcastExcept(sender *Client, message []byte) {
	r.clientsMutex.RLock()
	defer r.clientsMutex.RUnlock()
	for client := range r.clients {
		if client == sender {
			continue
		}
		client.trySend(message)
	}
}

// Size returns the current member count.
func (r *Room) Size() int {
	r.clientsMutex.RLock()
	defer r.clientsMutex.RUnlock()
	return len(r.clients)
}
