package server

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobots/internal/game"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestRegistryCreateAssignsIncreasingIDs(t *testing.T) {
	registry := NewRegistry(testLogger(), game.DefaultConfig())

	prev := registry.Create().ID()
	for i := 0; i < 10; i++ {
		id := registry.Create().ID()
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, 11, registry.Count())
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(testLogger(), game.DefaultConfig())
	g := registry.Create()

	got, err := registry.Get(g.ID())
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = registry.Get("nonexistent-id")
	require.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestRegistryRemove(t *testing.T) {
	registry := NewRegistry(testLogger(), game.DefaultConfig())
	g := registry.Create()

	assert.True(t, registry.Remove(g.ID()))
	assert.False(t, registry.Remove(g.ID()))

	_, err := registry.Get(g.ID())
	require.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestRegistryListInCreationOrder(t *testing.T) {
	registry := NewRegistry(testLogger(), game.DefaultConfig())

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, registry.Create().ID())
	}

	snaps := registry.List()
	require.Len(t, snaps, 5)
	for i, snap := range snaps {
		assert.Equal(t, ids[i], snap.ID)
		assert.Equal(t, "waiting", snap.State)
	}
}
