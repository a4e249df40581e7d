// Package simulator plays full games in-process with scripted random
// players. It exercises the whole engine path (join, start, seeded
// setup, play, win) without a network in between, which makes it
// useful both as a soak tool and for reproducing rule bugs from a
// seed.
package simulator

import (
	"context"
	"fmt"
	"io"
	mathrand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unobots/internal/card"
	"github.com/lox/unobots/internal/game"
	"github.com/lox/unobots/internal/gameid"
)

// Config holds simulation settings
type Config struct {
	Games    int
	Players  int
	HandSize int
	Seed     int64
	Workers  int
	Logger   *log.Logger
}

// Result summarizes one simulated game
type Result struct {
	GameID string
	Winner string
	Plays  int
	Seed   uint64
}

// Stats aggregates results across a run
type Stats struct {
	mu         sync.Mutex
	Games      int
	TotalPlays int
	WinsBySeat map[int]int
}

func (s *Stats) add(r Result, winnerSeat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Games++
	s.TotalPlays += r.Plays
	if s.WinsBySeat == nil {
		s.WinsBySeat = make(map[int]int)
	}
	s.WinsBySeat[winnerSeat]++
}

// MeanPlays returns the average number of plays per game
func (s *Stats) MeanPlays() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalPlays) / float64(s.Games)
}

// Simulator runs scripted games
type Simulator struct {
	config Config
	ids    *gameid.Generator
}

// New creates a simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Players < 2 {
		config.Players = 2
	}
	if config.HandSize < 1 {
		config.HandSize = 7
	}
	return &Simulator{config: config, ids: gameid.NewGenerator()}
}

// Run plays the configured number of games across a worker pool and
// returns aggregate statistics. Each game derives its own seed from
// the run seed, so a run is reproducible from (seed, games, players).
func (s *Simulator) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Workers)

	for i := 0; i < s.config.Games; i++ {
		gameSeed := uint64(s.config.Seed) + uint64(i)*0x9e3779b97f4a7c15

		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, winnerSeat, err := s.playGame(gameSeed)
			if err != nil {
				return err
			}
			stats.add(result, winnerSeat)

			if s.config.Logger != nil {
				s.config.Logger.Debug("Game finished",
					"game", result.GameID, "winner", result.Winner, "plays", result.Plays)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// playGame drives one game to completion with random legal plays
func (s *Simulator) playGame(seed uint64) (Result, int, error) {
	rng := mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	config := game.Config{
		MaxPlayers: s.config.Players,
		MinPlayers: 2,
		HandSize:   s.config.HandSize,
	}

	g := game.New(s.ids.Next(), config, zerolog.New(io.Discard))
	players := make([]string, s.config.Players)
	for i := range players {
		players[i] = fmt.Sprintf("bot-%d", i)
	}
	for _, p := range players {
		if _, err := g.Join(p); err != nil {
			return Result{}, 0, fmt.Errorf("join %s: %w", p, err)
		}
	}
	g.ApplySeed(seed)

	plays := 0
	// Hand sizes bound the game: every play removes a card, so the
	// loop terminates within players*handSize plays.
	maxPlays := s.config.Players * s.config.HandSize
	for plays < maxPlays {
		snap := g.Snapshot()
		if snap.State == "ended" {
			break
		}

		actor := players[snap.CurrentSeat]
		if err := g.PlayCard(actor, randomLegalCard(rng, snap)); err != nil {
			return Result{}, 0, fmt.Errorf("game %s play %d: %w", g.ID(), plays, err)
		}
		plays++
	}

	final := g.Snapshot()
	if final.State != "ended" {
		return Result{}, 0, fmt.Errorf("game %s did not end after %d plays", g.ID(), plays)
	}

	winnerSeat := 0
	for i, p := range players {
		if p == final.Winner {
			winnerSeat = i
		}
	}

	return Result{GameID: g.ID(), Winner: final.Winner, Plays: plays, Seed: seed}, winnerSeat, nil
}

// randomLegalCard proposes a card that is legal on the current top
// card. Simulated players have no real hands, so any legal proposal
// will do; wilds keep play moving when the color is wild.
func randomLegalCard(rng *mathrand.Rand, snap game.Snapshot) card.Card {
	// Wild current color only happens after a wild play; answer with
	// another wild.
	if snap.CurrentColor == card.Wild.String() {
		return card.New(card.Wild, card.WildCard)
	}

	color, _ := card.ParseColor(snap.CurrentColor)

	switch rng.IntN(8) {
	case 0:
		return card.New(card.Wild, card.WildCard)
	case 1:
		return card.New(color, card.Skip)
	case 2:
		return card.New(color, card.Reverse)
	case 3:
		return card.New(color, card.DrawTwo)
	default:
		return card.NewNumber(color, rng.IntN(10))
	}
}
