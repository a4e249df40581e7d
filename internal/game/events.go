package game

import (
	"time"

	"github.com/lox/unobots/internal/card"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameCreated     EventType = "game_created"
	EventTypePlayerJoined    EventType = "player_joined"
	EventTypeGameStarted     EventType = "game_started"
	EventTypeSetupComplete   EventType = "setup_complete"
	EventTypeCardPlayed      EventType = "card_played"
	EventTypeLowHandDeclared EventType = "low_hand_declared"
	EventTypeGameEnded       EventType = "game_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents any event that occurs during a game
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// GameCreatedEvent is published when the registry allocates a new game
type GameCreatedEvent struct {
	GameID    string
	timestamp time.Time
}

func (e GameCreatedEvent) EventType() EventType { return EventTypeGameCreated }
func (e GameCreatedEvent) Timestamp() time.Time { return e.timestamp }

// NewGameCreatedEvent creates a new game created event
func NewGameCreatedEvent(gameID string) GameCreatedEvent {
	return GameCreatedEvent{GameID: gameID, timestamp: time.Now()}
}

// PlayerJoinedEvent is published when a player takes a seat
type PlayerJoinedEvent struct {
	GameID    string
	Player    string
	Seat      int
	timestamp time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }

// GameStartedEvent is published when the game transitions to InProgress.
// Turn, color and top card are not known yet; they arrive with
// SetupCompleteEvent once the seed is delivered.
type GameStartedEvent struct {
	GameID    string
	Players   []string
	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// SetupCompleteEvent is published when the random seed has been applied
// and the opening turn, color and top card are fixed
type SetupCompleteEvent struct {
	GameID        string
	StartingSeat  int
	StartingColor card.Color
	TopCard       card.Card
	timestamp     time.Time
}

func (e SetupCompleteEvent) EventType() EventType { return EventTypeSetupComplete }
func (e SetupCompleteEvent) Timestamp() time.Time { return e.timestamp }

// CardPlayedEvent is published after an accepted play
type CardPlayedEvent struct {
	GameID    string
	Player    string
	Card      card.Card
	HandSize  int
	NextSeat  int
	Direction Direction
	timestamp time.Time
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }
func (e CardPlayedEvent) Timestamp() time.Time { return e.timestamp }

// LowHandDeclaredEvent is published when a player declares one card left
type LowHandDeclaredEvent struct {
	GameID    string
	Player    string
	timestamp time.Time
}

func (e LowHandDeclaredEvent) EventType() EventType { return EventTypeLowHandDeclared }
func (e LowHandDeclaredEvent) Timestamp() time.Time { return e.timestamp }

// GameEndedEvent is published when a player empties their hand
type GameEndedEvent struct {
	GameID    string
	Winner    string
	timestamp time.Time
}

func (e GameEndedEvent) EventType() EventType { return EventTypeGameEnded }
func (e GameEndedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives game events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation.
// Publishing is synchronous and may run under the owning game's lock,
// so subscribers must not call back into the engine.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
