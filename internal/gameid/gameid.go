package gameid

import (
	"fmt"
	"sync/atomic"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// encodedLen is the fixed width of an encoded identifier: 13 base32
// digits cover the full 64-bit counter range.
const encodedLen = 13

// Generator allocates strictly-increasing game identifiers. Identifiers
// are a 64-bit counter encoded as fixed-width Crockford base32, so
// lexicographic order matches allocation order and ids are safe to use
// in URLs and filenames.
type Generator struct {
	counter atomic.Uint64
}

// NewGenerator creates a generator starting from 1
func NewGenerator() *Generator {
	return &Generator{}
}

// Next allocates the next identifier. Safe for concurrent use.
func (g *Generator) Next() string {
	return Encode(g.counter.Add(1))
}

// Encode renders a counter value as a fixed-width base32 identifier
func Encode(n uint64) string {
	var buf [encodedLen]byte
	for i := encodedLen - 1; i >= 0; i-- {
		buf[i] = alphabet[n&0x1f]
		n >>= 5
	}
	return string(buf[:])
}

// Decode recovers the counter value from an identifier
func Decode(id string) (uint64, error) {
	if len(id) != encodedLen {
		return 0, fmt.Errorf("invalid game id %q: want %d characters", id, encodedLen)
	}
	var n uint64
	for i := 0; i < encodedLen; i++ {
		v := decodeTable[id[i]]
		if v == 0xff {
			return 0, fmt.Errorf("invalid game id %q: bad character %q", id, id[i])
		}
		n = n<<5 | uint64(v)
	}
	return n, nil
}

var decodeTable [256]byte

func init() {
	for i := range decodeTable {
		decodeTable[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = byte(i)
	}
}
