package server

import (
	"log"
	"sync"
)

// RoomManager tracks the active project rooms, creating them on first join
// and dropping them when the last member leaves.
type RoomManager struct {
	rooms      map[string]*Room
	roomsMutex sync.RWMutex
}

// NewRoomManager creates an empty manager.
func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room)}
}

func (rm *RoomManager) getOrCreateRoom(projectID string) *Room {
	rm.roomsMutex.RLock()
	room, exists := rm.rooms[projectID]
	rm.roomsMutex.RUnlock()

	if !exists {
		rm.roomsMutex.Lock()
		// Double check after acquiring write lock
		room, exists = rm.rooms[projectID]
		if !exists {
			log.Printf("Creating room for project %s", projectID)
			room = NewRoom(projectID)
			rm.rooms[projectID] = room
		}
		rm.roomsMutex.Unlock()
	}
	return room
}

// AddClientToRoom places a client in the room for a project, moving it out
// of its previous room first when it had one.
func (rm *RoomManager) AddClientToRoom(client *Client, projectID string) *Room {
	rm.RemoveClientFromRoom(client)
	room := rm.getOrCreateRoom(projectID)
	room.AddClient(client)
	return room
}

// RemoveClientFromRoom drops a client from its current room, if any, and
// reaps the room when it empties.
func (rm *RoomManager) RemoveClientFromRoom(client *Client) {
	if client.roomID == "" {
		return
	}
	rm.roomsMutex.RLock()
	room, exists := rm.rooms[client.roomID]
	rm.roomsMutex.RUnlock()
	if !exists {
		client.roomID = ""
		return
	}

	room.RemoveClient(client)
	if room.Size() == 0 {
		rm.roomsMutex.Lock()
		if room.Size() == 0 {
			delete(rm.rooms, room.ID)
			log.Printf("Room %s empty, removed.", room.ID)
		}
		rm.roomsMutex.Unlock()
	}
}

// GetRoom returns the room for a project id if one is active.
func (rm *RoomManager) GetRoom(projectID string) (*Room, bool) {
	rm.roomsMutex.RLock()
	defer rm.roomsMutex.RUnlock()
	room, exists := rm.rooms[projectID]
	return room, exists
}

// RoomCount returns the number of active rooms.
func (rm *RoomManager) RoomCount() int {
	rm.roomsMutex.RLock()
	defer rm.roomsMutex.RUnlock()
	return len(rm.rooms)
}
