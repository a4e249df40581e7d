package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/card"
)

// State represents the lifecycle state of a game
type State int

const (
	Waiting State = iota
	InProgress
	Ended
)

// String returns the string representation of a game state
func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case InProgress:
		return "in_progress"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Config holds per-game settings
type Config struct {
	MaxPlayers int // Seats before the game auto-starts
	MinPlayers int // Seats required for an explicit start
	HandSize   int // Cards dealt to each player on join
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxPlayers: 10,
		MinPlayers: 2,
		HandSize:   7,
	}
}

// Player is a seat at the table. Hand contents are not modelled, only
// the count; the dealing subsystem owns the actual cards.
type Player struct {
	ID          string
	HandSize    int
	DeclaredLow bool
}

// Game is the authoritative state machine for a single game. All
// mutating operations serialize on the game's own lock; operations on
// different games are fully independent. Rejected operations never
// mutate state.
type Game struct {
	mu     sync.Mutex
	id     string
	config Config
	logger zerolog.Logger
	bus    EventBus

	players      []*Player
	current      int
	direction    Direction
	currentColor card.Color
	topCard      card.Card
	state        State
	seeded       bool
	winner       string

	createdAt time.Time
	startedAt time.Time // set when Start transitions to InProgress
}

// New creates a game in the Waiting state
func New(id string, config Config, logger zerolog.Logger) *Game {
	return &Game{
		id:        id,
		config:    config,
		logger:    logger.With().Str("component", "game").Str("game_id", id).Logger(),
		bus:       NewEventBus(),
		players:   make([]*Player, 0, config.MaxPlayers),
		current:   -1,
		direction: Forward,
		state:     Waiting,
		createdAt: time.Now(),
	}
}

// ID returns the game identifier
func (g *Game) ID() string {
	return g.id
}

// Bus returns the event bus for subscribing to this game's events
func (g *Game) Bus() EventBus {
	return g.bus
}

// Join seats a player. The game must be Waiting and have a free seat.
// When the last seat fills, the game auto-starts; started reports
// whether that happened, in which case the caller must request a seed
// for the game.
func (g *Game) Join(playerID string) (started bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Waiting {
		return false, ErrGameNotWaiting
	}
	if len(g.players) >= g.config.MaxPlayers {
		return false, ErrGameFull
	}
	for _, p := range g.players {
		if p.ID == playerID {
			return false, ErrAlreadyJoined
		}
	}

	seat := len(g.players)
	g.players = append(g.players, &Player{ID: playerID, HandSize: g.config.HandSize})
	g.logger.Info().Str("player", playerID).Int("seat", seat).Int("players", len(g.players)).Msg("player joined")
	g.bus.Publish(PlayerJoinedEvent{GameID: g.id, Player: playerID, Seat: seat, timestamp: time.Now()})

	if len(g.players) == g.config.MaxPlayers && len(g.players) >= g.config.MinPlayers {
		g.begin()
		return true, nil
	}
	return false, nil
}

// Start transitions the game to InProgress. It requires at least
// MinPlayers seated players. The transition happens immediately, but
// turn, color and top card stay unset until ApplySeed delivers the
// random seed; plays submitted in that window fail with ErrSetupPending.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Waiting {
		return ErrGameNotWaiting
	}
	if len(g.players) < g.config.MinPlayers {
		return ErrNotEnoughPlayers
	}

	g.begin()
	return nil
}

// begin performs the Waiting -> InProgress transition. Callers hold the lock.
func (g *Game) begin() {
	g.state = InProgress
	g.startedAt = time.Now()

	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.ID
	}

	g.logger.Info().
		Int("players", len(g.players)).
		Dur("filled_in", time.Since(g.createdAt)).
		Msg("game started, awaiting seed")
	g.bus.Publish(GameStartedEvent{GameID: g.id, Players: names, timestamp: time.Now()})
}

// ApplySeed initializes the opening turn, color and top card from the
// delivered random seed. Delivery is at-most-once per start request;
// a duplicate or late delivery for an already-initialized game is
// ignored rather than reapplied.
func (g *Game) ApplySeed(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != InProgress || g.seeded {
		g.logger.Debug().Uint64("seed", seed).Msg("ignoring seed for initialized game")
		return
	}

	g.current = int(seed % uint64(len(g.players)))
	g.currentColor = card.Colors[seed%4]
	g.topCard = card.NewNumber(g.currentColor, int((seed/100)%10))
	g.seeded = true

	g.logger.Info().
		Uint64("seed", seed).
		Int("starting_seat", g.current).
		Stringer("color", g.currentColor).
		Stringer("top_card", g.topCard).
		Msg("setup complete")
	g.bus.Publish(SetupCompleteEvent{
		GameID:        g.id,
		StartingSeat:  g.current,
		StartingColor: g.currentColor,
		TopCard:       g.topCard,
		timestamp:     time.Now(),
	})
}

// PlayCard validates and applies a play by actor. On success the top
// card and color are replaced, the actor's hand shrinks by one, any
// special effect fires, and either the game ends (empty hand) or the
// turn advances.
func (g *Game) PlayCard(actor string, c card.Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != InProgress {
		return ErrGameNotInProgress
	}
	if !g.seeded {
		return ErrSetupPending
	}
	if g.players[g.current].ID != actor {
		return ErrNotYourTurn
	}
	if !c.Valid() || !IsLegalPlay(g.topCard, c) {
		return ErrIllegalPlay
	}

	player := g.players[g.current]
	g.topCard = c
	g.currentColor = c.Color
	player.HandSize--

	// Special-card effects fire before the win check and before the
	// normal advance: Skip and DrawTwo burn the next player's turn,
	// Reverse flips the traversal order. The DrawTwo/WildDrawFour card
	// penalties belong to the dealing subsystem, not this engine.
	switch c.Type {
	case card.Skip, card.DrawTwo:
		g.current = NextIndex(g.current, len(g.players), g.direction)
	case card.Reverse:
		g.direction = g.direction.Toggle()
	}

	if player.HandSize == 0 {
		g.state = Ended
		g.winner = actor
	} else {
		g.current = NextIndex(g.current, len(g.players), g.direction)
	}

	g.logger.Debug().
		Str("player", actor).
		Stringer("card", c).
		Int("hand_size", player.HandSize).
		Int("next_seat", g.current).
		Msg("card played")
	g.bus.Publish(CardPlayedEvent{
		GameID:    g.id,
		Player:    actor,
		Card:      c,
		HandSize:  player.HandSize,
		NextSeat:  g.current,
		Direction: g.direction,
		timestamp: time.Now(),
	})

	if g.state == Ended {
		g.logger.Info().Str("winner", actor).Dur("duration", time.Since(g.startedAt)).Msg("game ended")
		g.bus.Publish(GameEndedEvent{GameID: g.id, Winner: actor, timestamp: time.Now()})
	}
	return nil
}

// DeclareLow flags the actor as having declared exactly one card left.
// Any other hand count is ineligible. The engine applies no penalty for
// missing declarations; enforcement is an external policy.
func (g *Game) DeclareLow(actor string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != InProgress {
		return ErrGameNotInProgress
	}

	var player *Player
	for _, p := range g.players {
		if p.ID == actor {
			player = p
			break
		}
	}
	if player == nil {
		return ErrPlayerNotFound
	}
	if player.HandSize != 1 {
		return ErrNotEligible
	}

	player.DeclaredLow = true
	g.logger.Info().Str("player", actor).Msg("low hand declared")
	g.bus.Publish(LowHandDeclaredEvent{GameID: g.id, Player: actor, timestamp: time.Now()})
	return nil
}

// State returns the current lifecycle state
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SetupPending reports whether the game has started but not yet
// received its seed
func (g *Game) SetupPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == InProgress && !g.seeded
}

// PlayerSnapshot is a point-in-time copy of a seat
type PlayerSnapshot struct {
	ID          string `json:"id"`
	HandSize    int    `json:"handSize"`
	DeclaredLow bool   `json:"declaredLow"`
}

// Snapshot is a point-in-time copy of the full game state
type Snapshot struct {
	ID           string           `json:"id"`
	State        string           `json:"state"`
	Players      []PlayerSnapshot `json:"players"`
	CurrentSeat  int              `json:"currentSeat"`
	Direction    string           `json:"direction"`
	CurrentColor string           `json:"currentColor,omitempty"`
	TopCard      string           `json:"topCard,omitempty"`
	SetupPending bool             `json:"setupPending,omitempty"`
	Winner       string           `json:"winner,omitempty"`
}

// Snapshot returns a consistent copy of the game state for observers
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]PlayerSnapshot, len(g.players))
	for i, p := range g.players {
		players[i] = PlayerSnapshot{ID: p.ID, HandSize: p.HandSize, DeclaredLow: p.DeclaredLow}
	}

	snap := Snapshot{
		ID:           g.id,
		State:        g.state.String(),
		Players:      players,
		CurrentSeat:  g.current,
		Direction:    g.direction.String(),
		SetupPending: g.state == InProgress && !g.seeded,
		Winner:       g.winner,
	}
	if g.seeded {
		snap.CurrentColor = g.currentColor.String()
		snap.TopCard = g.topCard.String()
	}
	return snap
}
