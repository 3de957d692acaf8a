package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"dashboard/internal/authz"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is the JSON frame pushed to browser sessions.
type Event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// TokenParser verifies an access token and returns its identity.
type TokenParser interface {
	Parse(token string) (authz.Identity, error)
}

// Client represents a single connected WebSocket session of one user
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	username string
}

type userMessage struct {
	username string
	payload  []byte
}

// Hub tracks connected sessions per username and delivers events to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	direct     chan userMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	log        logrus.FieldLogger
}

// NewHub initializes a new WS Hub instance
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		direct:     make(chan userMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run dispatches hub events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, sessions := range h.clients {
				for client := range sessions {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.username] == nil {
				h.clients[client.username] = make(map[*Client]bool)
			}
			h.clients[client.username][client] = true
			h.mu.Unlock()
			h.log.WithField("username", client.username).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			h.log.WithField("username", client.username).Debug("websocket client disconnected")
		case msg := <-h.direct:
			h.mu.Lock()
			for client := range h.clients[msg.username] {
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(client *Client) {
	sessions := h.clients[client.username]
	if _, ok := sessions[client]; !ok {
		return
	}
	delete(sessions, client)
	close(client.send)
	if len(sessions) == 0 {
		delete(h.clients, client.username)
	}
}

// PushToUser queues event for every session of username. Delivery is best
// effort: when the queue is full the event is dropped.
func (h *Hub) PushToUser(username string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode websocket event")
		return
	}

	select {
	case h.direct <- userMessage{username: username, payload: payload}:
	default:
		h.log.WithField("username", username).Warn("websocket queue full, event dropped")
	}
}

// Connected returns the number of open sessions for username.
func (h *Hub) Connected(username string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[username])
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

// readPump keeps the connection alive until the peer goes away
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket read failed")
			}
			break
		}
	}
}

// ServeWs authenticates the token query param and attaches the session to the hub.
func ServeWs(hub *Hub, c *gin.Context, parser TokenParser) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Info("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	identity, err := parser.Parse(tokenString)
	if err != nil {
		hub.log.WithError(err).Info("websocket connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), username: identity.Username}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
