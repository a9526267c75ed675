package neural

import (
	"gorgonia.org/vecf32"
)

// InferenceWorkspace holds the scratch buffers needed to run a Net forwards without allocating.
// A workspace must not be used by more than one goroutine at a time.
type InferenceWorkspace struct {
	net *Net

	logits []float32

	// activations[0] is the latest input, activations[i+1] the output of layer i.
	activations [][]float32
}

func NewInferenceWorkspace(net *Net) *InferenceWorkspace {
	t := net.Topology()
	retVal := &InferenceWorkspace{
		net:         net,
		logits:      make([]float32, t.MaxWidth()),
		activations: make([][]float32, len(t)),
	}
	for i, s := range t {
		retVal.activations[i] = make([]float32, s.Neurons)
	}
	return retVal
}

// FeedForward copies inputs into the workspace and runs every layer in order.
// The returned slice is owned by the workspace and is overwritten by the next call.
func (w *InferenceWorkspace) FeedForward(inputs []float32) []float32 {
	checkWidth("FeedForward", len(w.activations[0]), len(inputs))
	copy(w.activations[0], inputs)
	for i, l := range w.net.layers {
		l.Fire(w.activations[i], w.logits, w.activations[i+1])
	}
	return w.Outputs()
}

// Outputs returns the activations of the last layer.
func (w *InferenceWorkspace) Outputs() []float32 { return w.activations[len(w.activations)-1] }

// Activations returns every layer's activations, input first.
func (w *InferenceWorkspace) Activations() [][]float32 { return w.activations }

// Net returns the network the workspace evaluates.
func (w *InferenceWorkspace) Net() *Net { return w.net }

// TrainingWorkspace extends an InferenceWorkspace with gradient accumulators.
//
// Gradients accumulate across every Backpropagate call until Reset is called, so a worker
// can run a whole mini-batch of hands before the totals are consumed.
type TrainingWorkspace struct {
	InferenceWorkspace

	weightGrads [][]float32
	biasGrads   [][]float32

	delta  []float32
	blameA []float32
	blameB []float32
}

func NewTrainingWorkspace(net *Net) *TrainingWorkspace {
	width := net.Topology().MaxWidth()
	retVal := &TrainingWorkspace{
		InferenceWorkspace: *NewInferenceWorkspace(net),
		weightGrads:        make([][]float32, len(net.layers)),
		biasGrads:          make([][]float32, len(net.layers)),
		delta:              make([]float32, width),
		blameA:             make([]float32, width),
		blameB:             make([]float32, width),
	}
	for i, l := range net.layers {
		retVal.weightGrads[i] = make([]float32, len(l.Weights))
		retVal.biasGrads[i] = make([]float32, len(l.Biases))
	}
	return retVal
}

// Backpropagate walks the layers back to front, starting from the error at the output layer,
// and accumulates every layer's gradients. It must follow a FeedForward on the same workspace.
func (w *TrainingWorkspace) Backpropagate(outputErrors []float32) {
	layers := w.net.layers
	blames := [2][]float32{w.blameA, w.blameB}
	upstream := outputErrors
	for i, k := len(layers)-1, 0; i >= 0; i, k = i-1, k^1 {
		l := layers[i]
		var downstream []float32
		if i > 0 {
			downstream = blames[k][:l.inputs]
		}
		l.Backpropagate(upstream, w.activations[i], w.activations[i+1], w.delta, w.weightGrads[i], w.biasGrads[i], downstream)
		upstream = downstream
	}
}

// Aggregate adds the accumulated gradients of other into w.
func (w *TrainingWorkspace) Aggregate(other *TrainingWorkspace) {
	checkWidth("Aggregate", len(w.weightGrads), len(other.weightGrads))
	for l := range w.weightGrads {
		checkWidth("Aggregate weights", len(w.weightGrads[l]), len(other.weightGrads[l]))
		checkWidth("Aggregate biases", len(w.biasGrads[l]), len(other.biasGrads[l]))
		vecf32.Add(w.weightGrads[l], other.weightGrads[l])
		vecf32.Add(w.biasGrads[l], other.biasGrads[l])
	}
}

// Batch divides the accumulated gradients by batchSize, turning the sums into means.
func (w *TrainingWorkspace) Batch(batchSize int) {
	s := 1 / float32(batchSize)
	for l := range w.weightGrads {
		vecf32.Scale(w.weightGrads[l], s)
		vecf32.Scale(w.biasGrads[l], s)
	}
}

// Reset zeroes the gradient accumulators. It is called at the start of a round, so the
// totals of the previous round stay readable until then.
func (w *TrainingWorkspace) Reset() {
	for l := range w.weightGrads {
		zero(w.weightGrads[l])
		zero(w.biasGrads[l])
	}
}

// WeightGradients returns the per layer weight gradient totals, in forward order.
func (w *TrainingWorkspace) WeightGradients() [][]float32 { return w.weightGrads }

// BiasGradients returns the per layer bias gradient totals, in forward order.
func (w *TrainingWorkspace) BiasGradients() [][]float32 { return w.biasGrads }

// LayerGradientNormsSquared returns, per layer, the sum of the squared weight and bias gradients.
func (w *TrainingWorkspace) LayerGradientNormsSquared() []float64 {
	retVal := make([]float64, len(w.weightGrads))
	for l := range w.weightGrads {
		retVal[l] = sumSquares(w.weightGrads[l]) + sumSquares(w.biasGrads[l])
	}
	return retVal
}

func zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}
