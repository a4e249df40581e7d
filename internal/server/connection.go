package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/card"
	"github.com/lox/unobots/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client. The player
// identity is an opaque pre-authenticated token as far as the engine is
// concerned; this layer mints session tokens on auth.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	token       string
	gameID      string
	logger      zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger zerolog.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.With().Str("component", "conn").Logger(),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug().Interface("recovered", r).Msg("send on closed connection")
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn().Msg("connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetGame returns the game this connection is watching
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Connection) setPlayer(playerID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.token = token
}

func (c *Connection) setGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket error")
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug().Stringer("type", msg.Type).Str("player", c.GetPlayer()).Msg("received message")

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateGame:
		c.handleCreateGame()

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse play card data")
			return
		}
		c.handlePlayCard(data)

	case MessageTypeDeclareLow:
		var data DeclareLowData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse declare low data")
			return
		}
		c.handleDeclareLow(data)

	case MessageTypeListGames:
		c.handleListGames()

	case MessageTypeGameState:
		var data GameStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse game state data")
			return
		}
		c.handleGameState(data)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.reply(MessageTypeAuthResponse, AuthResponseData{Success: false, Error: "player name required"})
		return
	}

	token := data.Token
	if token == "" {
		token = uuid.NewString()
	}
	c.setPlayer(data.PlayerName, token)

	c.logger.Info().Str("player", data.PlayerName).Msg("player authenticated")
	c.reply(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
		Token:    token,
	})
}

// requireAuth returns the player ID, or sends an error and returns ""
func (c *Connection) requireAuth() string {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "authenticate before sending game operations")
	}
	return playerID
}

func (c *Connection) handleCreateGame() {
	if c.requireAuth() == "" {
		return
	}

	snap := c.gameService.CreateGame()
	c.reply(MessageTypeGameCreated, GameCreatedData{Game: snap})
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}

	if err := c.gameService.Join(data.GameID, playerID); err != nil {
		c.sendEngineError(err)
		return
	}

	c.setGame(data.GameID)
	c.reply(MessageTypeGameJoined, GameJoinedData{GameID: data.GameID, PlayerID: playerID})
}

func (c *Connection) handleStartGame(data StartGameData) {
	if c.requireAuth() == "" {
		return
	}

	if err := c.gameService.Start(data.GameID); err != nil {
		c.sendEngineError(err)
		return
	}
	c.reply(MessageTypeOK, OKData{Op: MessageTypeStartGame.String()})
}

func (c *Connection) handlePlayCard(data PlayCardData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}

	proposed, err := parseCardData(data.Card)
	if err != nil {
		c.sendError("invalid_message", err.Error())
		return
	}

	if err := c.gameService.PlayCard(data.GameID, playerID, proposed); err != nil {
		c.sendEngineError(err)
		return
	}
	c.reply(MessageTypeOK, OKData{Op: MessageTypePlayCard.String()})
}

func (c *Connection) handleDeclareLow(data DeclareLowData) {
	playerID := c.requireAuth()
	if playerID == "" {
		return
	}

	if err := c.gameService.DeclareLow(data.GameID, playerID); err != nil {
		c.sendEngineError(err)
		return
	}
	c.reply(MessageTypeOK, OKData{Op: MessageTypeDeclareLow.String()})
}

func (c *Connection) handleListGames() {
	c.reply(MessageTypeGameList, GameListData{Games: c.gameService.ListGames()})
}

func (c *Connection) handleGameState(data GameStateData) {
	snap, err := c.gameService.Snapshot(data.GameID)
	if err != nil {
		c.sendEngineError(err)
		return
	}
	c.reply(MessageTypeGameState, snap)
}

func parseCardData(data CardData) (card.Card, error) {
	color, err := card.ParseColor(data.Color)
	if err != nil {
		return card.Card{}, err
	}
	typ, err := card.ParseType(data.Type)
	if err != nil {
		return card.Card{}, err
	}
	return card.Card{Color: color, Type: typ, Rank: data.Rank}, nil
}

// sendEngineError maps an engine error to a wire error with its stable code
func (c *Connection) sendEngineError(err error) {
	var engineErr *game.Error
	if errors.As(err, &engineErr) {
		c.sendError(engineErr.Code, engineErr.Error())
		return
	}
	c.sendError("internal_error", err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to create error message")
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) reply(typ MessageType, data interface{}) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error().Err(err).Stringer("type", typ).Msg("failed to create message")
		return
	}
	_ = c.SendMessage(msg)
}
