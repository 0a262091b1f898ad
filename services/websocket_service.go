package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"quill-notes/quill/broker"
	"quill-notes/quill/config"
	"quill-notes/quill/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// RealtimeSenderInterface is the delivery surface the notification
// dispatcher depends on. Keeping it narrow lets the in-process hub be
// swapped for a distributed registry without touching dispatch logic.
type RealtimeSenderInterface interface {
	SendToUser(userID string, message []byte) bool
	SendToUsers(userIDs []string, message []byte) int
	BroadcastMessage(message []byte)
}

// WebSocketServiceInterface defines the operations provided by the
// WebSocket service.
type WebSocketServiceInterface interface {
	RealtimeSenderInterface
	Start(cfg config.Config)
	Stop()
	HandleConnection(c *gin.Context)
	IsOnline(userID string) bool
}

// Client represents a connected WebSocket client.
type Client struct {
	ID     string
	UserID string
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte
}

// WebSocketService is the in-memory presence registry: one live connection
// per user identity, last writer wins. A user opening a second tab takes
// over delivery from the first.
type WebSocketService struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	broadcast    chan []byte
	clientsMutex sync.RWMutex

	upgrader websocket.Upgrader

	isRunning bool
	stopChan  chan struct{}

	announcements *broker.Consumer
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},

		stopChan: make(chan struct{}),
	}
}

// Start launches the hub loop and, when the broker is reachable, the
// cross-instance announcement feed.
func (ws *WebSocketService) Start(cfg config.Config) {
	if ws.isRunning {
		return
	}
	ws.isRunning = true

	go ws.run()

	consumer, err := broker.InitConsumer(cfg, []string{broker.AnnouncementSubject}, "")
	if err != nil {
		log.Printf("Warning: announcement consumer unavailable: %v", err)
		log.Println("Realtime broadcasts will only reach this instance's clients")
		return
	}
	ws.announcements = consumer
	go ws.forwardAnnouncements(consumer.GetMessageChannel())
}

// Stop gracefully shuts down the WebSocket service.
func (ws *WebSocketService) Stop() {
	if !ws.isRunning {
		return
	}
	ws.isRunning = false
	close(ws.stopChan)

	if ws.announcements != nil {
		ws.announcements.Close()
	}

	ws.clientsMutex.Lock()
	for _, client := range ws.clients {
		if client != nil && client.Conn != nil {
			client.Conn.Close()
		}
	}
	ws.clientsMutex.Unlock()

	log.Println("WebSocket service stopped")
}

// run handles the client registry hub.
func (ws *WebSocketService) run() {
	for {
		select {
		case <-ws.stopChan:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			if previous, ok := ws.clients[client.UserID]; ok {
				// Last writer wins: the newest connection replaces any
				// earlier one for the same identity.
				close(previous.Send)
				if previous.Conn != nil {
					previous.Conn.Close()
				}
			}
			ws.clients[client.UserID] = client
			ws.clientsMutex.Unlock()
			log.Printf("Client connected: %s (user: %s)", client.ID, client.UserID)

		case client := <-ws.unregister:
			ws.clientsMutex.Lock()
			if current, ok := ws.clients[client.UserID]; ok && current.ID == client.ID {
				delete(ws.clients, client.UserID)
				close(client.Send)
				log.Printf("Client disconnected: %s (user: %s)", client.ID, client.UserID)
			}
			ws.clientsMutex.Unlock()

		case message := <-ws.broadcast:
			ws.clientsMutex.Lock()
			for userID, client := range ws.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(ws.clients, userID)
				}
			}
			ws.clientsMutex.Unlock()
		}
	}
}

// forwardAnnouncements relays broker announcements to every client
// connected to this instance.
func (ws *WebSocketService) forwardAnnouncements(messages chan *nats.Msg) {
	for {
		select {
		case <-ws.stopChan:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			ws.BroadcastMessage(msg.Data)
		}
	}
}

// HandleConnection upgrades an authenticated HTTP request to a WebSocket
// connection and registers it under the requesting identity. The auth
// middleware has already validated the bearer credential; a request
// without an identity is rejected outright.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID.String(),
		Hub:    ws,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	ws.register <- client

	go client.readPump()
	go client.writePump()
}

// IsOnline reports whether the user currently holds a live connection.
func (ws *WebSocketService) IsOnline(userID string) bool {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	_, ok := ws.clients[userID]
	return ok
}

// SendToUser unicasts to the user's current connection. Returns false when
// the user is offline; callers treat that as non-fatal.
func (ws *WebSocketService) SendToUser(userID string, message []byte) bool {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()

	client, ok := ws.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.Send <- message:
		return true
	default:
		close(client.Send)
		delete(ws.clients, userID)
		return false
	}
}

// SendToUsers multicasts to an explicit list of user identities and
// returns how many were reached.
func (ws *WebSocketService) SendToUsers(userIDs []string, message []byte) int {
	delivered := 0
	for _, userID := range userIDs {
		if ws.SendToUser(userID, message) {
			delivered++
		}
	}
	return delivered
}

// BroadcastMessage sends a message to all connected clients.
func (ws *WebSocketService) BroadcastMessage(message []byte) {
	ws.broadcast <- message
}

// readPump handles incoming messages from the WebSocket client.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading from WebSocket: %v", err)
			}
			break
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything already queued into the same frame batch.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage handles messages received from the client. Delivery is
// push-only; the only client-initiated message is a keepalive.
func (c *Client) processMessage(msg []byte) {
	var clientMsg models.ClientMessage
	if err := clientMsg.FromJSON(msg); err != nil {
		log.Printf("Error parsing client message: %v", err)
		return
	}

	switch clientMsg.Type {
	case "ping":
		// Keepalive, no response needed.
	default:
		log.Printf("Unknown message type: %s", clientMsg.Type)
	}
}

var WebSocketServiceInstance WebSocketServiceInterface
