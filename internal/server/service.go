package server

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/card"
	"github.com/lox/unobots/internal/game"
	"github.com/lox/unobots/internal/randsrc"
)

// GameService orchestrates games: registry lookups, seed plumbing and
// event fan-out. The engine itself never talks to the randomness
// provider or the notification sinks directly.
type GameService struct {
	logger   zerolog.Logger
	registry *Registry
	provider randsrc.Provider
	sinks    []game.EventSubscriber

	// pending correlates outstanding seed requests with the game that
	// made them, so a delivered seed always lands on its originating
	// game no matter what was created in between.
	mu      sync.Mutex
	pending map[randsrc.Handle]string
}

// NewGameService creates a game service around a registry. The caller
// wires the returned service's DeliverSeed into the provider's delivery
// callback.
func NewGameService(logger zerolog.Logger, registry *Registry) *GameService {
	return &GameService{
		logger:   logger.With().Str("component", "game_service").Logger(),
		registry: registry,
		pending:  make(map[randsrc.Handle]string),
	}
}

// SetProvider wires the randomness provider. Must be called before any
// game starts.
func (gs *GameService) SetProvider(provider randsrc.Provider) {
	gs.provider = provider
}

// AddSink subscribes an event sink to every current and future game.
// Sinks receive events synchronously, possibly under a game's lock, and
// must not call back into the service.
func (gs *GameService) AddSink(sink game.EventSubscriber) {
	gs.sinks = append(gs.sinks, sink)
}

// CreateGame allocates a new game and announces it
func (gs *GameService) CreateGame() game.Snapshot {
	g := gs.registry.Create()
	for _, sink := range gs.sinks {
		g.Bus().Subscribe(sink)
	}

	created := game.NewGameCreatedEvent(g.ID())
	for _, sink := range gs.sinks {
		sink.OnEvent(created)
	}
	return g.Snapshot()
}

// Join seats a player in a game, requesting a seed if the join filled
// the last seat and auto-started the game
func (gs *GameService) Join(gameID, playerID string) error {
	g, err := gs.registry.Get(gameID)
	if err != nil {
		return err
	}

	started, err := g.Join(playerID)
	if err != nil {
		return err
	}
	if started {
		gs.requestSeed(g)
	}
	return nil
}

// Start begins a game explicitly and requests its setup seed
func (gs *GameService) Start(gameID string) error {
	g, err := gs.registry.Get(gameID)
	if err != nil {
		return err
	}
	if err := g.Start(); err != nil {
		return err
	}
	gs.requestSeed(g)
	return nil
}

// PlayCard submits a play on behalf of actor
func (gs *GameService) PlayCard(gameID, actor string, c card.Card) error {
	g, err := gs.registry.Get(gameID)
	if err != nil {
		return err
	}
	return g.PlayCard(actor, c)
}

// DeclareLow records a low-hand declaration by actor
func (gs *GameService) DeclareLow(gameID, actor string) error {
	g, err := gs.registry.Get(gameID)
	if err != nil {
		return err
	}
	return g.DeclareLow(actor)
}

// Snapshot returns the current state of a game
func (gs *GameService) Snapshot(gameID string) (game.Snapshot, error) {
	g, err := gs.registry.Get(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// ListGames returns snapshots of all games in creation order
func (gs *GameService) ListGames() []game.Snapshot {
	return gs.registry.List()
}

func (gs *GameService) requestSeed(g *game.Game) {
	handle := gs.provider.Request()

	gs.mu.Lock()
	gs.pending[handle] = g.ID()
	gs.mu.Unlock()

	gs.logger.Debug().Str("game_id", g.ID()).Uint64("handle", uint64(handle)).Msg("seed requested")
}

// DeliverSeed routes a delivered seed to the game that requested it.
// Unknown handles are dropped; the engine additionally ignores a seed
// for a game that is already initialized, so delivery is at-most-once
// end to end.
func (gs *GameService) DeliverSeed(handle randsrc.Handle, seed uint64) {
	gs.mu.Lock()
	gameID, ok := gs.pending[handle]
	delete(gs.pending, handle)
	gs.mu.Unlock()

	if !ok {
		gs.logger.Warn().Uint64("handle", uint64(handle)).Msg("seed delivery for unknown request")
		return
	}

	g, err := gs.registry.Get(gameID)
	if err != nil {
		gs.logger.Warn().Str("game_id", gameID).Msg("seed delivery for removed game")
		return
	}
	g.ApplySeed(seed)
}
