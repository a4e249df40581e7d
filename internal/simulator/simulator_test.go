package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorRunsAllGames(t *testing.T) {
	sim := New(Config{
		Games:    20,
		Players:  3,
		HandSize: 5,
		Seed:     42,
		Workers:  4,
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, stats.Games)
	assert.Greater(t, stats.TotalPlays, 0)
	assert.Greater(t, stats.MeanPlays(), 1.0)

	wins := 0
	for _, n := range stats.WinsBySeat {
		wins += n
	}
	assert.Equal(t, 20, wins)
}

func TestSimulatorReproducible(t *testing.T) {
	run := func() *Stats {
		sim := New(Config{Games: 5, Players: 2, HandSize: 4, Seed: 7, Workers: 1})
		stats, err := sim.Run(context.Background())
		require.NoError(t, err)
		return stats
	}

	first := run()
	second := run()
	assert.Equal(t, first.TotalPlays, second.TotalPlays)
	assert.Equal(t, first.WinsBySeat, second.WinsBySeat)
}

func TestSimulatorTwoPlayerMinimum(t *testing.T) {
	sim := New(Config{Games: 1, Players: 0, HandSize: 0, Seed: 1})
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Games)
}
