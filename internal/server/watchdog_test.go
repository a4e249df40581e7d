package server

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobots/internal/card"
	"github.com/lox/unobots/internal/game"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startWatchdog(t *testing.T, w *Watchdog, clock *quartz.Mock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	trap := clock.Trap().TickerFunc("watchdog-sweep")
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	trap.Close()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestWatchdogFlagsStuckGame(t *testing.T) {
	clock := quartz.NewMock(t)
	registry := NewRegistry(testLogger(), game.DefaultConfig())

	out := &syncBuffer{}
	w := NewWatchdog(zerolog.New(out), registry, WatchdogConfig{
		SweepInterval:    5 * time.Second,
		PendingThreshold: 30 * time.Second,
		EndedRetention:   time.Hour,
		Clock:            clock,
	})

	g := registry.Create()
	_, err := g.Join("alice")
	require.NoError(t, err)
	_, err = g.Join("bob")
	require.NoError(t, err)
	require.NoError(t, g.Start())
	require.True(t, g.SetupPending())

	startWatchdog(t, w, clock)

	ctx := context.Background()

	// First sweep observes the pending game, later sweeps age it. The
	// threshold is crossed 30s after first observation.
	for i := 0; i < 6; i++ {
		clock.Advance(5 * time.Second).MustWait(ctx)
		assert.NotContains(t, out.String(), "stuck awaiting seed")
	}
	clock.Advance(5 * time.Second).MustWait(ctx)

	logged := out.String()
	assert.Contains(t, logged, "stuck awaiting seed")
	assert.Contains(t, logged, g.ID())

	// Flagged once, not on every subsequent sweep
	clock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 1, strings.Count(out.String(), "stuck awaiting seed"))
}

func TestWatchdogEvictsEndedGames(t *testing.T) {
	clock := quartz.NewMock(t)
	config := game.DefaultConfig()
	config.MaxPlayers = 2
	config.HandSize = 1
	registry := NewRegistry(testLogger(), config)

	w := NewWatchdog(testLogger(), registry, WatchdogConfig{
		SweepInterval:    5 * time.Second,
		PendingThreshold: time.Hour,
		EndedRetention:   10 * time.Second,
		Clock:            clock,
	})

	g := registry.Create()
	_, err := g.Join("alice")
	require.NoError(t, err)
	_, err = g.Join("bob")
	require.NoError(t, err)
	g.ApplySeed(0)
	require.NoError(t, g.PlayCard("alice", card.NewNumber(card.Red, 3)))
	require.Equal(t, game.Ended, g.State())

	active := registry.Create()

	startWatchdog(t, w, clock)
	ctx := context.Background()

	// Sweep 1 first observes the ended game; retention runs from there.
	clock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 2, registry.Count())
	clock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 2, registry.Count())
	clock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 1, registry.Count())

	_, err = registry.Get(g.ID())
	require.ErrorIs(t, err, game.ErrGameNotFound)
	_, err = registry.Get(active.ID())
	require.NoError(t, err)
}
