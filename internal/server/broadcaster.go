package server

import (
	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/card"
	"github.com/lox/unobots/internal/game"
)

// EventBroadcaster forwards engine events to the connections watching
// each game. It runs synchronously under the game's lock, so it only
// marshals and enqueues; the connection write pumps do the actual IO.
type EventBroadcaster struct {
	server *Server
	logger zerolog.Logger
}

// NewEventBroadcaster creates a broadcaster bound to a server
func NewEventBroadcaster(server *Server, logger zerolog.Logger) *EventBroadcaster {
	return &EventBroadcaster{
		server: server,
		logger: logger.With().Str("component", "broadcaster").Logger(),
	}
}

// OnEvent implements the game.EventSubscriber interface
func (b *EventBroadcaster) OnEvent(event game.Event) {
	switch e := event.(type) {
	case game.GameCreatedEvent:
		// Nobody is watching a game before it exists; creation is
		// acknowledged directly to the creating connection.
	case game.PlayerJoinedEvent:
		b.broadcast(e.GameID, MessageTypePlayerJoined, PlayerJoinedData{
			GameID: e.GameID,
			Player: e.Player,
			Seat:   e.Seat,
		})
	case game.GameStartedEvent:
		b.broadcast(e.GameID, MessageTypeGameStarted, GameStartedData{
			GameID:  e.GameID,
			Players: e.Players,
		})
	case game.SetupCompleteEvent:
		b.broadcast(e.GameID, MessageTypeSetupComplete, SetupCompleteData{
			GameID:        e.GameID,
			StartingSeat:  e.StartingSeat,
			StartingColor: e.StartingColor.String(),
			TopCard:       e.TopCard.String(),
		})
	case game.CardPlayedEvent:
		b.broadcast(e.GameID, MessageTypeCardPlayed, CardPlayedData{
			GameID:    e.GameID,
			Player:    e.Player,
			Card:      cardDataFrom(e.Card),
			HandSize:  e.HandSize,
			NextSeat:  e.NextSeat,
			Direction: e.Direction.String(),
		})
	case game.LowHandDeclaredEvent:
		b.broadcast(e.GameID, MessageTypeLowHandDeclared, LowHandDeclaredData{
			GameID: e.GameID,
			Player: e.Player,
		})
	case game.GameEndedEvent:
		b.broadcast(e.GameID, MessageTypeGameEnded, GameEndedData{
			GameID: e.GameID,
			Winner: e.Winner,
		})
	}
}

func (b *EventBroadcaster) broadcast(gameID string, typ MessageType, data interface{}) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		b.logger.Error().Err(err).Stringer("type", typ).Msg("failed to create broadcast message")
		return
	}
	b.server.BroadcastToGame(gameID, msg)
}

func cardDataFrom(c card.Card) CardData {
	data := CardData{Color: c.Color.String(), Type: c.Type.String()}
	if c.Type == card.Number {
		data.Rank = c.Rank
	}
	return data
}
