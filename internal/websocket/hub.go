package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handle is a live connection of a user that can receive pushed messages.
type Handle interface {
	// Send queues a payload; it reports false when the connection is gone or saturated.
	Send(payload []byte) bool
}

// Locator finds the live connection of a user.
type Locator interface {
	Locate(userID uint) (Handle, bool)
}

// Client represents a single connected WebSocket client
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// Send implements Handle
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks connected users. The Run loop owns registration; Locate reads
// the index under a read lock.
type Hub struct {
	mu         sync.RWMutex
	byUser     map[uint]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logrus.Logger
}

// NewHub initializes a new presence hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		byUser:     make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if prev, ok := h.byUser[client.userID]; ok && prev != client {
				prev.close()
			}
			h.byUser[client.userID] = client
			h.mu.Unlock()
			h.logger.WithField("user_id", client.userID).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.byUser[client.userID]; ok && current == client {
				delete(h.byUser, client.userID)
				client.close()
				h.logger.WithField("user_id", client.userID).Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Stop ends the Run loop
func (h *Hub) Stop() {
	close(h.done)
}

// Locate implements Locator; the most recent connection of a user wins.
func (h *Hub) Locate(userID uint) (Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.byUser[userID]
	if !ok {
		return nil, false
	}
	return client, true
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump keeps the connection alive and unregisters on close
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("websocket read failed")
			}
			break
		}
	}
}

// ServeWs upgrades an already authenticated request and registers the user.
func ServeWs(hub *Hub, c *gin.Context, userID uint) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, conn: conn, userID: userID, send: make(chan []byte, 256)}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
