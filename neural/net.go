package neural

import (
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
)

// Net is a dense feed-forward network. It owns every trainable parameter.
//
// A Net is not safe for concurrent mutation: workers may read it through their workspaces
// concurrently, but Update must only be called while no workspace is in use.
type Net struct {
	topology Topology
	layers   []*Layer
}

// New creates a network with freshly initialized weights. It panics if the topology is invalid.
func New(topology Topology, r *rand.Rand) *Net {
	if err := topology.Validate(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	retVal := &Net{
		topology: topology.Clone(),
		layers:   make([]*Layer, 0, len(topology)-1),
	}
	for i := 1; i < len(topology); i++ {
		retVal.layers = append(retVal.layers, newLayer(topology[i].Neurons, topology[i-1].Neurons, topology[i].Activation, r))
	}
	return retVal
}

func (n *Net) Topology() Topology { return n.topology }
func (n *Net) Layers() []*Layer   { return n.layers }
func (n *Net) InputWidth() int    { return n.topology.InputWidth() }
func (n *Net) OutputWidth() int   { return n.topology.OutputWidth() }

// FeedForward runs the network on a freshly allocated set of buffers and returns the output.
// Hot loops should use a workspace instead.
func (n *Net) FeedForward(inputs []float32) []float32 {
	return NewInferenceWorkspace(n).FeedForward(inputs)
}

// Update applies a gradient descent step to every layer. The gradients are indexed in forward
// order, matching the topology.
func (n *Net) Update(learningRate float32, weightGrads, biasGrads [][]float32) {
	checkWidth("Net.Update weights", len(n.layers), len(weightGrads))
	checkWidth("Net.Update biases", len(n.layers), len(biasGrads))
	for i, l := range n.layers {
		l.Update(learningRate, weightGrads[i], biasGrads[i])
	}
}

// CopyParams overwrites the weights and biases of dst with those of src. Both networks must have
// the same layer shapes and activations.
func CopyParams(dst, src *Net) error {
	if len(dst.layers) != len(src.layers) {
		return errors.Errorf("cannot copy a %d layer network into a %d layer network", len(src.layers), len(dst.layers))
	}
	for i, l := range dst.layers {
		s := src.layers[i]
		if l.inputs != s.inputs || l.neurons != s.neurons || l.Activation != s.Activation {
			return errors.Errorf("layer %d: cannot copy %d -> %d %v into %d -> %d %v", i, s.inputs, s.neurons, s.Activation, l.inputs, l.neurons, l.Activation)
		}
	}
	for i, l := range dst.layers {
		copy(l.Weights, src.layers[i].Weights)
		copy(l.Biases, src.layers[i].Biases)
	}
	return nil
}

// LayerWeightNormsSquared returns, per layer, the sum of the squared weights and biases.
func (n *Net) LayerWeightNormsSquared() []float64 {
	retVal := make([]float64, len(n.layers))
	for i, l := range n.layers {
		retVal[i] = l.NormSquared()
	}
	return retVal
}

func (n *Net) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "NeuralNet Topology: %v", n.topology)
	if c == 'v' && s.Flag('+') {
		for i, l := range n.layers {
			fmt.Fprintf(s, "\n\tLayer %d: %d -> %d %v |w|² %.4g", i, l.inputs, l.neurons, l.Activation, l.NormSquared())
		}
	}
}
