// Package ws delivers realtime notification pushes over WebSocket using
// gorilla/websocket. Connections are keyed by the authenticated user id so
// a notification can be pushed to exactly its recipient.
//
//	// In the route file:
//	r.Get("/api/notifications/stream", "notifications.stream", controller.Stream)
//
//	// From a queue job:
//	hub.SendToUser(userID.Hex(), payload)
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/saydalia/saydalia/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client represents a single connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			break
		}
		// The stream is push-only; inbound frames keep the read deadline fresh.
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ─── Hub ──────────────────────────────────────────────────────────────────────

// targeted is a message addressed to one user's connections.
type targeted struct {
	userID string
	data   []byte
}

// Hub maintains all active WebSocket connections, indexed by user id, and
// handles broadcast and per-user delivery.
type Hub struct {
	clients    map[*Client]bool
	byUser     map[string]map[*Client]bool
	Broadcast  chan []byte // send to all connected clients
	direct     chan targeted
	register   chan *Client
	unregister chan *Client
	count      chan chan int
}

// NewHub creates a new Hub. Call hub.Run() in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		Broadcast:  make(chan []byte, 256),
		direct:     make(chan targeted, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
	}
}

// SendToUser queues data for every connection the user currently holds.
// A user with no open connection simply misses the push; the stored
// notification remains the source of truth.
func (h *Hub) SendToUser(userID string, data []byte) {
	select {
	case h.direct <- targeted{userID: userID, data: data}:
	default:
		// Hub saturated — drop the push, the DB record survives.
	}
}

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.byUser[client.userID] == nil {
				h.byUser[client.userID] = make(map[*Client]bool)
			}
			h.byUser[client.userID][client] = true
			logger.Info("ws: client connected", "user", client.userID, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Info("ws: client disconnected", "user", client.userID, "total", len(h.clients))
			}

		case msg := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.drop(client)
				}
			}

		case msg := <-h.direct:
			for client := range h.byUser[msg.userID] {
				select {
				case client.send <- msg.data:
				default:
					h.drop(client)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	if peers, ok := h.byUser[client.userID]; ok {
		delete(peers, client)
		if len(peers) == 0 {
			delete(h.byUser, client.userID)
		}
	}
	close(client.send)
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	h.count <- reply
	return <-reply
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a WebSocket and registers the
// resulting client under userID with the given hub.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), userID: userID}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}
