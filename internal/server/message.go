package server

import (
	"encoding/json"
	"time"

	"github.com/lox/unobots/internal/game"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeCreateGame MessageType = "create_game"
	MessageTypeJoinGame   MessageType = "join_game"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlayCard   MessageType = "play_card"
	MessageTypeDeclareLow MessageType = "declare_low"
	MessageTypeListGames  MessageType = "list_games"
	MessageTypeGameState  MessageType = "game_state"

	// Server to client messages
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeError        MessageType = "error"
	MessageTypeGameCreated  MessageType = "game_created"
	MessageTypeGameJoined   MessageType = "game_joined"
	MessageTypeGameList     MessageType = "game_list"
	MessageTypeOK           MessageType = "ok"

	// Broadcast game events reuse the engine's event type names
	MessageTypePlayerJoined    MessageType = "player_joined"
	MessageTypeGameStarted     MessageType = "game_started"
	MessageTypeSetupComplete   MessageType = "setup_complete"
	MessageTypeCardPlayed      MessageType = "card_played"
	MessageTypeLowHandDeclared MessageType = "low_hand_declared"
	MessageTypeGameEnded       MessageType = "game_ended"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinGameData struct {
	GameID string `json:"gameId"`
}

type StartGameData struct {
	GameID string `json:"gameId"`
}

// CardData is the wire form of a card proposal
type CardData struct {
	Color string `json:"color"`
	Type  string `json:"type"`
	Rank  int    `json:"rank,omitempty"`
}

type PlayCardData struct {
	GameID string   `json:"gameId"`
	Card   CardData `json:"card"`
}

type DeclareLowData struct {
	GameID string `json:"gameId"`
}

type GameStateData struct {
	GameID string `json:"gameId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameCreatedData struct {
	Game game.Snapshot `json:"game"`
}

type GameJoinedData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameListData struct {
	Games []game.Snapshot `json:"games"`
}

type OKData struct {
	Op string `json:"op"`
}

// Broadcast event payloads

type PlayerJoinedData struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
	Seat   int    `json:"seat"`
}

type GameStartedData struct {
	GameID  string   `json:"gameId"`
	Players []string `json:"players"`
}

type SetupCompleteData struct {
	GameID        string `json:"gameId"`
	StartingSeat  int    `json:"startingSeat"`
	StartingColor string `json:"startingColor"`
	TopCard       string `json:"topCard"`
}

type CardPlayedData struct {
	GameID    string   `json:"gameId"`
	Player    string   `json:"player"`
	Card      CardData `json:"card"`
	HandSize  int      `json:"handSize"`
	NextSeat  int      `json:"nextSeat"`
	Direction string   `json:"direction"`
}

type LowHandDeclaredData struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

type GameEndedData struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner"`
}
