package neural

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1337, 42)) }

var smallPolicy = Topology{
	{Neurons: 6, Activation: Linear},
	{Neurons: 8, Activation: ReLU},
	{Neurons: 5, Activation: Sigmoid},
	{Neurons: 4, Activation: Softmax},
}

func TestNewNet(t *testing.T) {
	assert := assert.New(t)
	n := New(smallPolicy, testRand())
	assert.Equal(6, n.InputWidth())
	assert.Equal(4, n.OutputWidth())
	require.Len(t, n.Layers(), 3)
	for i, l := range n.Layers() {
		assert.Equal(smallPolicy[i].Neurons, l.NumInputs())
		assert.Equal(smallPolicy[i+1].Neurons, l.NumNeurons())
		assert.Len(l.Weights, l.NumInputs()*l.NumNeurons())
		for _, b := range l.Biases {
			assert.Zero(b)
		}
	}

	// the topology is copied
	top := smallPolicy.Clone()
	n = New(top, testRand())
	top[1].Neurons = 100
	assert.Equal(8, n.Topology()[1].Neurons)
}

func TestNewNetInvalid(t *testing.T) {
	assert.Panics(t, func() { New(Topology{{Neurons: 3}}, testRand()) })
	assert.Panics(t, func() { New(Topology{{Neurons: 3}, {Neurons: 0}}, testRand()) })
	assert.Panics(t, func() { New(Topology{{Neurons: 3}, {Neurons: 1, Activation: MAXACTIVATION}}, testRand()) })
}

func TestNetDeterministic(t *testing.T) {
	a := New(smallPolicy, testRand())
	b := New(smallPolicy, testRand())
	for i := range a.Layers() {
		assert.Equal(t, a.Layers()[i].Weights, b.Layers()[i].Weights)
	}
}

func TestNetFeedForward(t *testing.T) {
	assert := assert.New(t)
	n := New(smallPolicy, testRand())
	in := []float32{1, 0, 0, 1, 0.5, -0.5}
	out := n.FeedForward(in)
	require.Len(t, out, 4)
	var sum float32
	for _, v := range out {
		sum += v
	}
	assert.InDelta(1, sum, 1e-5)

	ws := NewInferenceWorkspace(n)
	assert.True(cmp.Equal(out, ws.FeedForward(in), cmpopts.EquateApprox(0, 1e-6)))
	assert.Panics(func() { ws.FeedForward(in[:5]) })
}

func TestNetZeroInput(t *testing.T) {
	top := Topology{
		{Neurons: 3, Activation: Linear},
		{Neurons: 3, Activation: Linear},
		{Neurons: 3, Activation: Linear},
	}
	n := New(top, testRand())
	assert.Equal(t, []float32{0, 0, 0}, n.FeedForward(make([]float32, 3)))
}

func TestNetUpdate(t *testing.T) {
	assert := assert.New(t)
	n := New(smallPolicy, testRand())
	before := n.LayerWeightNormsSquared()

	ws := NewTrainingWorkspace(n)
	n.Update(0.1, ws.WeightGradients(), ws.BiasGradients())
	assert.Equal(before, n.LayerWeightNormsSquared(), "zero gradients should not move the weights")

	assert.Panics(func() { n.Update(0.1, ws.WeightGradients()[:1], ws.BiasGradients()) })
}

func TestNetFormat(t *testing.T) {
	n := New(smallPolicy, testRand())
	assert.Equal(t, "NeuralNet Topology: 6-8-5-4", fmt.Sprintf("%v", n))
	s := fmt.Sprintf("%+v", n)
	assert.Contains(t, s, "Layer 0: 6 -> 8 ReLU")
	assert.Contains(t, s, "Layer 2: 5 -> 4 Softmax")
}

func TestCopyParams(t *testing.T) {
	a := New(smallPolicy, testRand())
	b := New(smallPolicy, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, CopyParams(b, a))
	in := []float32{1, 2, 3, 4, 5, 6}
	assert.Equal(t, a.FeedForward(in), b.FeedForward(in))

	b.Layers()[0].Weights[0]++
	assert.NotEqual(t, a.Layers()[0].Weights[0], b.Layers()[0].Weights[0], "parameters are copied, not shared")

	assert.Error(t, CopyParams(tinyNet(), a))
}
