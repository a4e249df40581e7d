package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/unobots/internal/server" // Reuse message types
)

// Client is a WebSocket client for the game server
type Client struct {
	serverURL  string
	conn       *websocket.Conn
	send       chan *server.Message
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	connected  bool
	playerName string
	token      string
	gameID     string
	closeOnce  sync.Once

	handlersMu sync.RWMutex
	handlers   map[server.MessageType][]EventHandler
}

// EventHandler is a function that handles incoming messages
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[server.MessageType][]EventHandler),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect() error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	go c.writeLoop()

	c.logger.Info("Connected to server")
	return nil
}

// Close shuts down the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connected = false
		c.mu.Unlock()
	})
}

// Connected reports whether the client has an open connection
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// PlayerName returns the authenticated player name
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// GameID returns the game this client has joined
func (c *Client) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

// SetGameID records the game this client is playing in
func (c *Client) SetGameID(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

// On registers a handler for a message type. Handlers run on the read
// loop goroutine and must not block.
func (c *Client) On(messageType server.MessageType, handler EventHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

// Send queues a message for delivery to the server
func (c *Client) Send(messageType server.MessageType, data interface{}) error {
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Authenticate sends the auth handshake and records identity on success
func (c *Client) Authenticate(name string) error {
	return c.Send(server.MessageTypeAuth, server.AuthData{PlayerName: name})
}

// setIdentity is called by the auth response handler
func (c *Client) setIdentity(playerName, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerName = playerName
	c.token = token
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.ctx.Done():
			default:
				c.logger.Error("Connection lost", "error", err)
			}
			return
		}

		c.dispatch(&msg)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to send message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) dispatch(msg *server.Message) {
	c.handlersMu.RLock()
	handlers := c.handlers[msg.Type]
	c.handlersMu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("Unhandled message", "type", msg.Type)
		return
	}
	for _, handler := range handlers {
		handler(msg)
	}
}
