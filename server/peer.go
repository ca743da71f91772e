package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"poxil-server/editor"
)

// Peer is the client half of the synchronizer: it joins one project room,
// sends the local edits it is handed, and applies inbound peer edits
// directly into its engine. Remote batches bypass the lock/visibility guard
// and history: the remote editor's own checks already governed intent, and
// remote edits must never become local undo steps.
//
// All inbound applies run on the peer's single read loop, so the engine
// sees strictly serialized mutations, matching the event-driven model.
type Peer struct {
	conn      *websocket.Conn
	engine    *editor.Engine
	projectID string
	user      UserInfo

	writeMutex sync.Mutex // websocket writes come from multiple callers
	done       chan struct{}

	// PeerJoined and PeerLeft, when set, observe presence notices.
	PeerJoined func(socketID string, user UserInfo)
	PeerLeft   func(socketID string)
	// CursorMoved, when set, observes peer cursor positions.
	CursorMoved func(x, y int, userName string)
}

// Dial connects a peer to a collaboration endpoint, joins the project room
// and starts the apply loop.
func Dial(url, projectID string, user UserInfo, engine *editor.Engine) (*Peer, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	p := &Peer{
		conn:      conn,
		engine:    engine,
		projectID: projectID,
		user:      user,
		done:      make(chan struct{}),
	}
	if err := p.sendEnvelope("join-project", joinProjectData{ProjectID: projectID, User: user}); err != nil {
		conn.Close()
		return nil, err
	}
	go p.readLoop()
	return p, nil
}

// SendBatch broadcasts a local batch for a layer and frame of the joined
// project. The local apply already happened through the engine; sending is
// fire-and-forget and never awaited before further local mutation.
func (p *Peer) SendBatch(layerID string, frameIndex int, updates []editor.PixelUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return p.sendEnvelope("pixel-update", PixelUpdateData{
		ProjectID:  p.projectID,
		LayerID:    layerID,
		FrameIndex: frameIndex,
		Updates:    updates,
	})
}

// SendCursor broadcasts the local cursor position. Best effort.
func (p *Peer) SendCursor(x, y int) error {
	return p.sendEnvelope("cursor-move", cursorMoveData{
		ProjectID: p.projectID,
		X:         x,
		Y:         y,
		UserName:  p.user.Name,
	})
}

// Leave announces departure from the room and closes the connection.
func (p *Peer) Leave() error {
	err := p.sendEnvelope("leave-project", leaveProjectData{ProjectID: p.projectID})
	p.Close()
	return err
}

// Close tears the connection down without a leave notice, as on navigation
// away; the server's pumps detect the drop and relay user-left.
func (p *Peer) Close() {
	p.conn.Close()
}

// Done is closed when the read loop exits.
func (p *Peer) Done() <-chan struct{} { return p.done }

func (p *Peer) sendEnvelope(msgType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(clientMessage{Type: msgType, Data: raw})
	if err != nil {
		return err
	}
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, msg)
}

func (p *Peer) readLoop() {
	defer close(p.done)
	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		p.handleMessage(message)
	}
}

// handleMessage applies one inbound room message. Malformed payloads are
// dropped so one bad peer message cannot crash the session.
func (p *Peer) handleMessage(message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Peer %s: dropping unparseable message: %v", p.user.Name, err)
		return
	}
	switch msg.Type {
	case "pixel-update":
		var data PixelUpdateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("Peer %s: dropping malformed pixel-update: %v", p.user.Name, err)
			return
		}
		if data.LayerID == "" || data.FrameIndex < 0 {
			return
		}
		p.engine.SetLayerPixels(data.FrameIndex, data.LayerID, data.Updates)
	case "user-joined":
		if p.PeerJoined == nil {
			return
		}
		var data struct {
			SocketID string   `json:"socketId"`
			User     UserInfo `json:"user"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		p.PeerJoined(data.SocketID, data.User)
	case "user-left":
		if p.PeerLeft == nil {
			return
		}
		var data struct {
			SocketID string `json:"socketId"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		p.PeerLeft(data.SocketID)
	case "cursor-move":
		if p.CursorMoved == nil {
			return
		}
		var data cursorMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		p.CursorMoved(data.X, data.Y, data.UserName)
	}
}
