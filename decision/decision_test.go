package decision

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(n int) []float32 {
	retVal := make([]float32, n)
	for i := range retVal {
		retVal[i] = 1 / float32(n)
	}
	return retVal
}

func TestForOutputWidth(t *testing.T) {
	s, err := ForOutputWidth(5)
	require.NoError(t, err)
	assert.Equal(t, FiveBits, s.Kind())

	s, err = ForOutputWidth(32)
	require.NoError(t, err)
	assert.Equal(t, Combination, s.Kind())

	_, err = ForOutputWidth(7)
	assert.True(t, errors.Is(err, ErrUnsupportedWidth))
}

func TestExchangeVectorRoundTrip(t *testing.T) {
	for v := 0; v < NumCombinations; v++ {
		a := ExchangeVector(v)
		assert.Equal(t, v, IndexFromAction(a))
	}
	assert.Equal(t, Action{true, false, false, false, false}, ExchangeVector(1))
	assert.Equal(t, Action{false, false, false, false, true}, ExchangeVector(16))
	assert.Panics(t, func() { ExchangeVector(32) })
}

func TestZeroAdvantage(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, s := range []Strategy{New(FiveBits), New(Combination)} {
		outputs := uniform(s.Width())
		a, _ := s.SelectAction(outputs, r, true)
		out := s.Error(outputs, a, 0, make([]float32, s.Width()))
		for _, v := range out {
			assert.Zero(t, v, "%v", s.Kind())
		}
	}
}

func TestFiveBitsError(t *testing.T) {
	s := New(FiveBits)
	outputs := []float32{0.25, 0.75, 0.5, 1, 0}
	a := Action{true, false, true, false, true}
	out := s.Error(outputs, a, 2, make([]float32, 5))
	assert.Equal(t, []float32{-1.5, 1.5, -1, 2, -2}, out)
}

func TestCombinationError(t *testing.T) {
	s := New(Combination)
	outputs := uniform(32)
	a := ExchangeVector(3)
	out := s.Error(outputs, a, -2, make([]float32, 32))
	for i, v := range out {
		if i == 3 {
			assert.InDelta(t, (1.0/32-1)*-2, v, 1e-6)
		} else {
			assert.InDelta(t, -2.0/32, v, 1e-6)
		}
	}
}

func TestGreedySelection(t *testing.T) {
	five := New(FiveBits)
	a, exhausted := five.SelectAction([]float32{0.9, 0.1, 0.5, 0.51, 0}, nil, false)
	assert.False(t, exhausted)
	assert.Equal(t, Action{true, false, false, true, false}, a)

	comb := New(Combination)
	outputs := uniform(32)
	outputs[19] = 0.5
	a, _ = comb.SelectAction(outputs, nil, false)
	assert.Equal(t, 19, IndexFromAction(a))
}

func TestCombinationSelectionDeterministic(t *testing.T) {
	s := New(Combination)
	outputs := uniform(32)
	draw := func() []int {
		r := rand.New(rand.NewPCG(2024, 7))
		retVal := make([]int, 100)
		for i := range retVal {
			a, _ := s.SelectAction(outputs, r, true)
			retVal[i] = IndexFromAction(a)
		}
		return retVal
	}
	first := draw()
	assert.Equal(t, first, draw())

	seen := make(map[int]bool)
	for _, v := range first {
		seen[v] = true
	}
	assert.True(t, len(seen) > 10, "a uniform policy should visit many combinations, got %d", len(seen))
}

func TestCombinationSelectionExhausted(t *testing.T) {
	s := New(Combination)
	r := rand.New(rand.NewPCG(3, 4))
	a, exhausted := s.SelectAction(make([]float32, 32), r, true)
	assert.True(t, exhausted)
	assert.Equal(t, NumCombinations-1, IndexFromAction(a))

	certain := make([]float32, 32)
	certain[6] = 1
	a, exhausted = s.SelectAction(certain, r, true)
	assert.False(t, exhausted)
	assert.Equal(t, 6, IndexFromAction(a))
}

func TestEntropy(t *testing.T) {
	comb := New(Combination)
	assert.InDelta(t, math32.Log(32), comb.Entropy(uniform(32)), 1e-5)

	certain := make([]float32, 32)
	certain[0] = 1
	assert.Zero(t, comb.Entropy(certain))

	five := New(FiveBits)
	half := []float32{0.5, 0.5, 0.5, 0.5, 0.5}
	assert.InDelta(t, 5*math32.Log(2), five.Entropy(half), 1e-5)
}

func TestEntropyErrorZeroBeta(t *testing.T) {
	for _, s := range []Strategy{New(FiveBits), New(Combination)} {
		outputs := make([]float32, s.Width())
		for i := range outputs {
			outputs[i] = float32(i+1) / float32(2*s.Width())
		}
		out := make([]float32, s.Width())
		for i := range out {
			out[i] = 99
		}
		out = s.EntropyError(outputs, s.Entropy(outputs), 0, out)
		for _, v := range out {
			assert.Zero(t, v)
		}
	}
}

func TestEntropyErrorUniformIsZero(t *testing.T) {
	comb := New(Combination)
	outputs := uniform(32)
	out := comb.EntropyError(outputs, comb.Entropy(outputs), 0.5, make([]float32, 32))
	for _, v := range out {
		assert.InDelta(t, 0, v, 1e-6)
	}

	five := New(FiveBits)
	half := []float32{0.5, 0.5, 0.5, 0.5, 0.5}
	out = five.EntropyError(half, five.Entropy(half), 0.5, make([]float32, 5))
	for _, v := range out {
		assert.InDelta(t, 0, v, 1e-6)
	}

	skewed := []float32{0.9, 0.1, 0, 1, 0.5}
	out = five.EntropyError(skewed, five.Entropy(skewed), 1, make([]float32, 5))
	assert.True(t, out[0] > 0)
	assert.True(t, out[1] < 0)
	assert.Zero(t, out[2])
	assert.Zero(t, out[3])
}

func TestSelectActionPanicsOnWidth(t *testing.T) {
	assert.Panics(t, func() { New(FiveBits).SelectAction(uniform(32), nil, false) })
}
