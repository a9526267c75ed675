package neural

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"gorgonia.org/vecf32"
)

// Layer is a single dense transform. Weights are stored neuron-major:
// the weights feeding neuron n are Weights[n*inputs : (n+1)*inputs].
type Layer struct {
	Weights    []float32
	Biases     []float32
	Activation Activation

	inputs, neurons int
}

func newLayer(neurons, inputs int, act Activation, r *rand.Rand) *Layer {
	l := &Layer{
		Weights:    make([]float32, neurons*inputs),
		Biases:     make([]float32, neurons),
		Activation: act,
		inputs:     inputs,
		neurons:    neurons,
	}
	scale := 1 / math32.Sqrt(float32(inputs))
	for i := range l.Weights {
		l.Weights[i] = (2*r.Float32() - 1) * scale
	}
	return l
}

func (l *Layer) NumInputs() int  { return l.inputs }
func (l *Layer) NumNeurons() int { return l.neurons }

func (l *Layer) row(n int) []float32 { return l.Weights[n*l.inputs : (n+1)*l.inputs] }

// Fire evaluates the layer. logits is scratch space of at least NumNeurons;
// out receives the activations and must be exactly NumNeurons wide.
func (l *Layer) Fire(inputs, logits, out []float32) {
	checkWidth("Fire", l.inputs, len(inputs))
	checkWidth("Fire output", l.neurons, len(out))
	logits = logits[:l.neurons]
	for n := range logits {
		sum := l.Biases[n]
		for i, w := range l.row(n) {
			sum += inputs[i] * w
		}
		logits[n] = sum
	}
	activate(l.Activation, logits, out)
}

// Backpropagate computes the layer's deltas from the upstream gradient and accumulates the
// weight and bias gradients into weightGrad and biasGrad. The gradient with respect to the
// layer's inputs is written (not accumulated) into downstream; a nil downstream skips it.
//
// For softmax layers the upstream gradient is used as the delta verbatim: the caller is
// expected to supply the combined softmax/cross-entropy gradient.
func (l *Layer) Backpropagate(upstream, inputs, activations, delta, weightGrad, biasGrad, downstream []float32) {
	checkWidth("Backpropagate upstream", l.neurons, len(upstream))
	checkWidth("Backpropagate inputs", l.inputs, len(inputs))
	delta = delta[:l.neurons]
	if l.Activation == Softmax {
		copy(delta, upstream)
	} else {
		for n, g := range upstream {
			delta[n] = derivative(l.Activation, activations[n]) * g
		}
	}

	for n, d := range delta {
		vecf32.IncrScale(inputs, d, weightGrad[n*l.inputs:(n+1)*l.inputs])
	}
	vecf32.Add(biasGrad[:l.neurons], delta)

	if downstream == nil {
		return
	}
	downstream = downstream[:l.inputs]
	for i := range downstream {
		downstream[i] = 0
	}
	for n, d := range delta {
		vecf32.IncrScale(l.row(n), d, downstream)
	}
}

// Update takes a plain gradient descent step. The gradients are expected to be batch averaged.
func (l *Layer) Update(learningRate float32, weightGrad, biasGrad []float32) {
	checkWidth("Update weights", len(l.Weights), len(weightGrad))
	checkWidth("Update biases", len(l.Biases), len(biasGrad))
	vecf32.IncrScale(weightGrad, -learningRate, l.Weights)
	vecf32.IncrScale(biasGrad, -learningRate, l.Biases)
}

// NormSquared returns the sum of the squares of all weights and biases.
func (l *Layer) NormSquared() float64 { return sumSquares(l.Weights) + sumSquares(l.Biases) }

func sumSquares(a []float32) (retVal float64) {
	for _, v := range a {
		retVal += float64(v) * float64(v)
	}
	return
}
