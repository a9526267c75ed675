package pokerpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedSequence(t *testing.T) {
	a := &seedSequence{state: 7}
	b := &seedSequence{state: 7}
	c := &seedSequence{state: 8}

	var seen = make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		v := a.next()
		assert.Equal(t, v, b.next())
		assert.NotEqual(t, v, c.next())
		assert.False(t, seen[v])
		seen[v] = true
	}

	ra := (&seedSequence{state: 1}).newRand()
	rb := (&seedSequence{state: 1}).newRand()
	for i := 0; i < 10; i++ {
		assert.Equal(t, ra.Uint64(), rb.Uint64())
	}
}
