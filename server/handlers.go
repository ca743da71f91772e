package server

import (
	"encoding/json"
	"log"

	"poxil-server/editor"
)

// clientMessage is the generic envelope of messages from the client.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// joinProjectData is the payload of a "join-project" message.
type joinProjectData struct {
	ProjectID string   `json:"projectId"`
	User      UserInfo `json:"user"`
}

// PixelUpdateData is the payload of a "pixel-update" message: one batch of
// cell writes for one layer of one frame. It is relayed verbatim to the
// sender's room; receivers apply it through their engine's explicit-layer
// path, bypassing local lock and visibility state.
type PixelUpdateData struct {
	ProjectID  string               `json:"projectId"`
	LayerID    string               `json:"layerId"`
	FrameIndex int                  `json:"frameIndex"`
	Updates    []editor.PixelUpdate `json:"updates"`
}

// cursorMoveData is the payload of a "cursor-move" message. Best-effort
// presence; dropped copies are never resent.
type cursorMoveData struct {
	ProjectID string `json:"projectId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	UserName  string `json:"userName"`
}

// leaveProjectData is the payload of a "leave-project" message.
type leaveProjectData struct {
	ProjectID string `json:"projectId"`
}

// handleClientMessage processes one incoming JSON message from a client.
// Malformed payloads are dropped with a log line so one bad peer cannot
// take the server down.
func (s *CollabServer) handleClientMessage(client *Client, message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Client %s: error unmarshaling message: %v", client.socketID, err)
		return
	}

	switch msg.Type {
	case "join-project":
		var data joinProjectData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("Client %s: bad join-project payload: %v", client.socketID, err)
			return
		}
		s.processJoinProject(client, data)
	case "pixel-update":
		var data PixelUpdateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("Client %s: bad pixel-update payload: %v", client.socketID, err)
			return
		}
		s.processPixelUpdate(client, data, message)
	case "cursor-move":
		var data cursorMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return // volatile traffic, drop silently
		}
		s.processCursorMove(client, data, message)
	case "leave-project":
		var data leaveProjectData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("Client %s: bad leave-project payload: %v", client.socketID, err)
			return
		}
		s.processLeaveProject(client, data)
	default:
		log.Printf("Client %s: unknown message type %q.", client.socketID, msg.Type)
	}
}

func (s *CollabServer) processJoinProject(client *Client, data joinProjectData) {
	if data.ProjectID == "" {
		log.Printf("Client %s: join-project without project id.", client.socketID)
		return
	}
	client.user = data.User
	if client.user.ID == "" {
		client.user.ID = client.socketID
	}
	s.rooms.AddClientToRoom(client, data.ProjectID)
	s.joins.Add(1)
}

// processPixelUpdate relays a pixel batch to the sender's room, excluding
// the sender, whose local apply already happened. The raw message is
// forwarded untouched once validated.
func (s *CollabServer) processPixelUpdate(client *Client, data PixelUpdateData, raw []byte) {
	if data.ProjectID == "" || data.LayerID == "" || data.FrameIndex < 0 || len(data.Updates) == 0 {
		log.Printf("Client %s: dropping malformed pixel-update.", client.socketID)
		return
	}
	if client.roomID != data.ProjectID {
		log.Printf("Client %s: pixel-update for project %s while in room %q.", client.socketID, data.ProjectID, client.roomID)
		return
	}
	room, ok := s.rooms.GetRoom(data.ProjectID)
	if !ok {
		return
	}
	room.BroadcastExcept(client, raw)
	s.pixelBatches.Add(1)
}

func (s *CollabServer) processCursorMove(client *Client, data cursorMoveData, raw []byte) {
	if data.ProjectID == "" || client.roomID != data.ProjectID {
		return
	}
	room, ok := s.rooms.GetRoom(data.ProjectID)
	if !ok {
		return
	}
	room.BroadcastExcept(client, raw)
}

func (s *CollabServer) processLeaveProject(client *Client, data leaveProjectData) {
	if data.ProjectID == "" || client.roomID != data.ProjectID {
		return
	}
	s.rooms.RemoveClientFromRoom(client)
}
