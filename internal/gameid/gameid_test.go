package gameid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	gen := NewGenerator()

	prev := gen.Next()
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		assert.Greater(t, id, prev, "ids must sort in allocation order")
		prev = id
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 31, 32, 1 << 20, 1<<64 - 1} {
		id := Encode(n)
		assert.Len(t, id, encodedLen)

		got, err := Decode(id)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestDecodeRejectsMalformedIDs(t *testing.T) {
	_, err := Decode("short")
	assert.Error(t, err)

	_, err = Decode("000000000000!")
	assert.Error(t, err)

	// 'u' is not in Crockford's alphabet
	_, err = Decode("000000000000u")
	assert.Error(t, err)
}

func TestConcurrentAllocation(t *testing.T) {
	gen := NewGenerator()

	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, gen.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker, "concurrent allocation must never produce duplicates")
}
