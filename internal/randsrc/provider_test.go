package randsrc

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedSink struct {
	mu        sync.Mutex
	delivered map[Handle]uint64
}

func newSink() *seedSink {
	return &seedSink{delivered: make(map[Handle]uint64)}
}

func (c *seedSink) deliver(h Handle, seed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered[h] = seed
}

func (c *seedSink) get(h Handle) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seed, ok := c.delivered[h]
	return seed, ok
}

func (c *seedSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.delivered)
}

func TestDeliveryAfterDelay(t *testing.T) {
	clock := quartz.NewMock(t)
	sink := newSink()
	provider := NewLocal(zerolog.New(io.Discard), Config{
		Seed:  42,
		Delay: time.Second,
		Clock: clock,
	}, sink.deliver)

	h := provider.Request()

	_, ok := sink.get(h)
	assert.False(t, ok, "seed must not arrive before the delay elapses")

	clock.Advance(time.Second).MustWait(t.Context())

	seed, ok := sink.get(h)
	require.True(t, ok)
	assert.NotZero(t, seed)
}

func TestHandlesAreDistinct(t *testing.T) {
	clock := quartz.NewMock(t)
	sink := newSink()
	provider := NewLocal(zerolog.New(io.Discard), Config{Seed: 1, Clock: clock}, sink.deliver)

	h1 := provider.Request()
	h2 := provider.Request()
	h3 := provider.Request()

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h2, h3)

	clock.Advance(time.Millisecond).MustWait(t.Context())
	assert.Equal(t, 3, sink.count())
}

func TestDeterministicStreamIsReproducible(t *testing.T) {
	run := func() []uint64 {
		clock := quartz.NewMock(t)
		sink := newSink()
		provider := NewLocal(zerolog.New(io.Discard), Config{Seed: 7, Clock: clock}, sink.deliver)

		handles := make([]Handle, 5)
		for i := range handles {
			handles[i] = provider.Request()
		}
		clock.Advance(time.Millisecond).MustWait(t.Context())

		seeds := make([]uint64, len(handles))
		for i, h := range handles {
			seed, ok := sink.get(h)
			require.True(t, ok)
			seeds[i] = seed
		}
		return seeds
	}

	assert.Equal(t, run(), run(), "same configured seed must produce the same stream")
}

func TestCryptoSourceProducesVariedSeeds(t *testing.T) {
	sink := newSink()
	provider := NewLocal(zerolog.New(io.Discard), Config{}, sink.deliver)

	handles := make([]Handle, 8)
	for i := range handles {
		handles[i] = provider.Request()
	}

	deadline := time.Now().Add(time.Second)
	for sink.count() < len(handles) {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d seeds delivered", sink.count(), len(handles))
		}
		time.Sleep(time.Millisecond)
	}

	seen := make(map[uint64]bool)
	for _, h := range handles {
		seed, _ := sink.get(h)
		seen[seed] = true
	}
	assert.Greater(t, len(seen), 1, "crypto seeds should not collapse to one value")
}
