package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/unobots/internal/simulator"
)

type SimulateCmd struct {
	Games    int   `kong:"default='1000',help='Number of games to simulate'"`
	Players  int   `kong:"default='4',help='Players per game'"`
	HandSize int   `kong:"default='7',help='Starting hand size'"`
	Seed     int64 `kong:"default='0',help='Run seed (0 derives one from the clock)'"`
	Workers  int   `kong:"default='0',help='Concurrent games (0 uses GOMAXPROCS)'"`
	Verbose  bool  `kong:"help='Log every finished game'"`
}

func (c *SimulateCmd) Run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if c.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := c.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Info("Starting simulation",
		"games", c.Games, "players", c.Players, "hand_size", c.HandSize,
		"seed", seed, "workers", workers)

	sim := simulator.New(simulator.Config{
		Games:    c.Games,
		Players:  c.Players,
		HandSize: c.HandSize,
		Seed:     seed,
		Workers:  workers,
		Logger:   logger,
	})

	start := time.Now()
	stats, err := sim.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Simulated %d games in %s (%.0f games/sec)\n",
		stats.Games, elapsed.Round(time.Millisecond), float64(stats.Games)/elapsed.Seconds())
	fmt.Printf("Mean plays per game: %.1f\n", stats.MeanPlays())

	seats := make([]int, 0, len(stats.WinsBySeat))
	for seat := range stats.WinsBySeat {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		wins := stats.WinsBySeat[seat]
		fmt.Printf("  seat %d: %d wins (%.1f%%)\n", seat, wins, 100*float64(wins)/float64(stats.Games))
	}
	return nil
}
