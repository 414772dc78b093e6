package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/pacman/game/engine"
	"github.com/wricardo/mcp-training/pacman/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Frames buffered per client before it counts as slow and is dropped.
	clientBuffer = 64

	// Messages buffered between publishers and the hub loop.
	broadcastBuffer = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message types
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
	TypeError    = "error"
	TypeInput    = "input"
	TypeRestart  = "restart"
)

// Message is a frame sent to clients
type Message struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	Snapshot  *engine.Snapshot   `json:"snapshot,omitempty"`
	Event     *service.GameEvent `json:"event,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// ClientMessage is a frame received from clients
type ClientMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
}

// Controller receives client input. GameService satisfies it.
type Controller interface {
	Input(ctx context.Context, sessionID, direction string) (*service.InputResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	format    Format
}

// direct is a message for one client
type direct struct {
	client  *Client
	message *Message
}

// Hub maintains the set of active clients and broadcasts messages. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for every client of a session
	broadcast chan *Message

	// Outbound messages for a single client
	direct chan direct

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	controller Controller
	log        *log.Entry
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		direct:     make(chan direct, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws"),
	}
}

// SetController routes client input to c. Call before Run.
func (h *Hub) SetController(c Controller) {
	h.controller = c
}

// Run starts the hub's event loop and closes every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case d := <-h.direct:
			if h.sessions[d.client.sessionID][d.client] {
				h.deliver(d.client, d.message)
			}
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, format Format) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, clientBuffer),
		sessionID: sessionID,
		format:    format,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	// the current picture, so clients of idle sessions draw something
	if h.controller != nil {
		if snap, err := h.controller.GetSnapshot(r.Context(), sessionID); err == nil {
			h.sendTo(client, &Message{Type: TypeSnapshot, SessionID: sessionID, Snapshot: snap})
		}
	}
}

// PublishSnapshot queues a snapshot for every client of the session. It never
// blocks; when the hub is saturated the snapshot is dropped.
func (h *Hub) PublishSnapshot(sessionID string, snap *engine.Snapshot) {
	h.enqueue(&Message{Type: TypeSnapshot, SessionID: sessionID, Snapshot: snap})
}

// PublishEvent queues a game event for every client of the session.
func (h *Hub) PublishEvent(sessionID string, event service.GameEvent) {
	h.enqueue(&Message{Type: TypeEvent, SessionID: sessionID, Event: &event})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.WithField("session", message.SessionID).Debug("hub saturated, message dropped")
	}
}

func (h *Hub) sendTo(client *Client, message *Message) {
	select {
	case h.direct <- direct{client: client, message: message}:
	default:
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.log.WithFields(log.Fields{
		"session": client.sessionID,
		"format":  client.format,
		"clients": len(h.sessions[client.sessionID]),
	}).Info("client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			h.log.WithFields(log.Fields{
				"session": client.sessionID,
				"clients": len(clients),
			}).Info("client unregistered")
		}
	}
}

// broadcastMessage sends a message to all clients in a session, encoding it
// once per format
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	encoded := make(map[Format][]byte, 2)
	for client := range clients {
		data, ok := encoded[client.format]
		if !ok {
			var err error
			data, err = client.format.Encode(message)
			if err != nil {
				h.log.WithError(err).Error("failed to encode broadcast message")
				return
			}
			encoded[client.format] = data
		}
		h.push(client, data)
	}
}

func (h *Hub) deliver(client *Client, message *Message) {
	data, err := client.format.Encode(message)
	if err != nil {
		h.log.WithError(err).Error("failed to encode message")
		return
	}
	h.push(client, data)
}

// push drops clients that cannot keep up
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.WithField("session", client.sessionID).Warn("slow client dropped")
		h.unregisterClient(client)
	}
}

// handle routes one client frame to the controller
func (c *Client) handle(frameType int, data []byte) {
	var msg ClientMessage
	if err := Decode(frameType, data, &msg); err != nil {
		c.hub.sendTo(c, &Message{Type: TypeError, SessionID: c.sessionID, Error: "malformed message"})
		return
	}
	if c.hub.controller == nil {
		return
	}

	ctx := context.Background()
	var err error
	switch msg.Type {
	case TypeInput:
		_, err = c.hub.controller.Input(ctx, c.sessionID, msg.Direction)
	case TypeRestart:
		_, err = c.hub.controller.Restart(ctx, c.sessionID)
	default:
		c.hub.sendTo(c, &Message{Type: TypeError, SessionID: c.sessionID, Error: "unknown message type " + msg.Type})
		return
	}
	if err != nil {
		c.hub.sendTo(c, &Message{Type: TypeError, SessionID: c.sessionID, Error: err.Error()})
	}
}

// readPump pumps messages from the WebSocket connection to the controller
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket read failed")
			}
			break
		}
		c.handle(frameType, data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(c.format.frameType(), message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
