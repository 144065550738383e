package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client represents a WebSocket viewer connection. Unlike the teacher's
// per-game Client, there is one running world, so a client narrows its
// feed by face instead of by room: an empty faces set means "send me
// every face" (full-world spectating / admin tooling), matching spec.md
// §4.8's per-face delta grouping.
type Client struct {
	ID   uuid.UUID
	Conn *websocket.Conn
	Send chan []byte
	hub  *Hub

	mu    sync.RWMutex
	faces map[int]bool
}

// SubscribeFaces replaces the client's face subscription set. An empty
// slice subscribes to all faces.
func (c *Client) SubscribeFaces(faces []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faces = make(map[int]bool, len(faces))
	for _, f := range faces {
		c.faces[f] = true
	}
}

func (c *Client) wantsFace(face int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.faces) == 0 || c.faces[face]
}

// Hub fans out per-face delta batches (spec.md §4.8, Design Note §9
// "Broadcast decoupling": the core never calls a transport directly, it
// only emits to the Event Bus). Grounded on the teacher's Hub
// register/unregister/broadcast channel loop, generalized from per-game
// rooms to per-face client subscriptions.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan FaceMessage
}

// FaceMessage is one face's outbound payload for a single tick.
type FaceMessage struct {
	Face    int
	Payload interface{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan FaceMessage, 256),
	}
}

// Run drives the hub's event loop. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case msg := <-h.broadcast:
			h.broadcastFace(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("ws: client %s connected", client.ID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		log.Printf("ws: client %s disconnected", client.ID)
	}
}

// broadcastFace sends one face's payload to every client subscribed to
// that face.
func (h *Hub) broadcastFace(msg FaceMessage) {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		log.Printf("Failed to marshal face %d broadcast: %v", msg.Face, err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.wantsFace(msg.Face) {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Client buffer full, disconnect. broadcastFace runs on the
			// Run goroutine, which is the only reader of h.unregister, so
			// the client is unregistered directly.
			h.unregisterClient(client)
		}
	}
}

// BroadcastFace queues a face's payload for every subscribed client. This
// is the one entry point cmd/server wires to the Driver's Event Bus
// drain: the core never imports ws, it only produces []sim.Delta batches
// that the wiring code groups by face and hands here.
func (h *Hub) BroadcastFace(face int, payload interface{}) {
	h.broadcast <- FaceMessage{Face: face, Payload: payload}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToClient sends a message to one specific client, for request/reply
// style messages. The initial full-state snapshot does not go through
// here: ServeWS writes it to the client's Send channel directly.
func (h *Hub) SendToClient(clientID uuid.UUID, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	for client := range h.clients {
		if client.ID == clientID {
			select {
			case client.Send <- data:
			default:
				// Buffer full.
			}
			return
		}
	}
}
