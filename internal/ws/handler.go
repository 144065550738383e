package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Add proper origin checking in production.
		return true
	},
}

// StateProvider supplies a snapshot for a freshly connected client so it
// doesn't have to wait for the next tick to see the world (spec.md §6
// "new connections receive a current snapshot before streaming deltas").
type StateProvider interface {
	FullState() (interface{}, error)
}

// Handler handles WebSocket connections for the world viewer feed.
type Handler struct {
	hub           *Hub
	stateProvider StateProvider
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, stateProvider StateProvider) *Handler {
	return &Handler{
		hub:           hub,
		stateProvider: stateProvider,
	}
}

// ServeWS handles WebSocket requests from viewers. faces narrows the
// initial subscription; an empty slice subscribes to the whole world.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, faces []int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		ID:   uuid.New(),
		Conn: conn,
		Send: make(chan []byte, 256),
		hub:  h.hub,
	}
	client.SubscribeFaces(faces)

	h.hub.Register(client)

	if h.stateProvider != nil {
		state, err := h.stateProvider.FullState()
		if err == nil {
			data, _ := json.Marshal(state)
			client.Send <- data
		}
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce any already-queued messages into this frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from a viewer: pings and
// face subscription changes. The core itself never receives player
// commands over this connection; those go through the HTTP command
// surface of spec.md §6, not this feed.
func (c *Client) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Failed to parse client message: %v", err)
		return
	}

	switch msg.Type {
	case "ping":
		response, _ := json.Marshal(map[string]string{"type": "pong"})
		c.Send <- response

	case "subscribe_faces":
		c.SubscribeFaces(msg.Faces)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// ClientMessage represents a message from a WebSocket viewer.
type ClientMessage struct {
	Type  string          `json:"type"`
	Faces []int           `json:"faces,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}
