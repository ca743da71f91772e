package server

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// WebSocket heartbeat settings to detect disconnected clients
	pingInterval = 10 * time.Second // Frequency of sending ping messages
	pongWait     = 60 * time.Second // Time to wait for a pong before considering the client gone

	writeWait = 10 * time.Second // Deadline for a single outbound frame

	sendBufferSize = 256
)

// UserInfo is the ephemeral identity a client presents when joining a
// project room. It is display data, not authentication.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client represents a single connected editor over a WebSocket.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte   // Outgoing messages to this client
	socketID string        // Server-assigned identity for presence messages
	user     UserInfo      // Set on join-project
	roomID   string        // Project room the client is in, "" when none
	done     chan struct{} // Signals the WritePump to terminate
}

// NewClient creates a Client for an upgraded connection.
func NewClient(conn *websocket.Conn, socketID string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		socketID: socketID,
		done:     make(chan struct{}),
	}
}

// SocketID returns the server-assigned identity of this client.
func (c *Client) SocketID() string { return c.socketID }

// ReadPump continuously reads messages from the WebSocket connection.
// It handles disconnection detection and signals the WritePump to terminate.
func (c *Client) ReadPump(srv *CollabServer) {
	defer func() {
		srv.unregisterClient(c)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s: unexpected WebSocket close: %v", c.socketID, err)
			}
			break
		}
		srv.handleClientMessage(c, message)
	}
}

// WritePump sends queued messages and periodic pings, terminating when the
// send channel closes or the done signal fires.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Send channel closed by unregistration.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Client %s: error sending message: %v", c.socketID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// trySend queues a message without blocking. A full buffer drops the
// message; delivery is at-most-once by contract and a persistently blocked
// client is torn down by its pumps.
func (c *Client) trySend(message []byte) {
	select {
	case c.send <- message:
	default:
		log.Printf("Client %s: send buffer full, dropping message", c.socketID)
	}
}
