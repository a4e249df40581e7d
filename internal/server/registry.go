package server

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/unobots/internal/game"
	"github.com/lox/unobots/internal/gameid"
)

// Registry tracks all games by identifier. It is the sole owner of
// game instances: everything else reaches a game by looking up its id
// here. Identifiers are strictly increasing.
type Registry struct {
	logger zerolog.Logger
	ids    *gameid.Generator
	config game.Config

	mu    sync.RWMutex
	games map[string]*game.Game
}

// NewRegistry constructs an empty registry creating games with config
func NewRegistry(logger zerolog.Logger, config game.Config) *Registry {
	return &Registry{
		logger: logger.With().Str("component", "registry").Logger(),
		ids:    gameid.NewGenerator(),
		config: config,
		games:  make(map[string]*game.Game),
	}
}

// Create allocates a new identifier and a game in the Waiting state
func (r *Registry) Create() *game.Game {
	id := r.ids.Next()
	g := game.New(id, r.config, r.logger)

	r.mu.Lock()
	r.games[id] = g
	r.mu.Unlock()

	r.logger.Info().Str("game_id", id).Msg("game created")
	return g
}

// Get retrieves a game by id. An unknown id is ErrGameNotFound,
// distinct from any wrong-state error the game itself may return.
func (r *Registry) Get(id string) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return g, nil
}

// Remove deletes a game by id and reports whether it existed
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return false
	}
	delete(r.games, id)
	return true
}

// List returns a snapshot of every game, ordered by id (allocation order)
func (r *Registry) List() []game.Snapshot {
	r.mu.RLock()
	games := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.RUnlock()

	snaps := make([]game.Snapshot, len(games))
	for i, g := range games {
		snaps[i] = g.Snapshot()
	}

	// Ids are fixed-width base32, so byte order is allocation order.
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ID < snaps[j].ID
	})
	return snaps
}

// Count returns the number of registered games
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

