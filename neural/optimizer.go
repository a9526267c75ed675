package neural

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

// OptimizerKind enumerates the supported optimizers.
type OptimizerKind int

const (
	SGD OptimizerKind = iota
	Momentum
	MAXOPTIMIZER
)

func (k OptimizerKind) String() string {
	switch k {
	case SGD:
		return "SGD"
	case Momentum:
		return "Momentum"
	}
	return fmt.Sprintf("OptimizerKind(%d)", int(k))
}

// ParseOptimizerKind parses the names produced by String, case sensitively.
func ParseOptimizerKind(s string) (OptimizerKind, error) {
	for k := SGD; k < MAXOPTIMIZER; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return SGD, errors.Errorf("unknown optimizer %q", s)
}

// Optimizer turns a workspace's batch-averaged gradients into a weight update.
//
// Momentum uses the heavy-ball form
//	v = β·v + g
// and not β·v + (1-β)·g, so the effective step grows by up to 1/(1-β). Learning rates should
// be scaled down accordingly when β is raised.
type Optimizer struct {
	kind OptimizerKind
	beta float32

	weightVelocity [][]float32
	biasVelocity   [][]float32
}

// NewOptimizer creates an optimizer for net. beta is ignored by SGD.
func NewOptimizer(kind OptimizerKind, net *Net, beta float32) *Optimizer {
	retVal := &Optimizer{kind: kind, beta: beta}
	switch kind {
	case SGD:
	case Momentum:
		retVal.weightVelocity = make([][]float32, len(net.layers))
		retVal.biasVelocity = make([][]float32, len(net.layers))
		for i, l := range net.layers {
			retVal.weightVelocity[i] = make([]float32, len(l.Weights))
			retVal.biasVelocity[i] = make([]float32, len(l.Biases))
		}
	default:
		panic(fmt.Sprintf("unknown optimizer %v", kind))
	}
	return retVal
}

func (o *Optimizer) Kind() OptimizerKind { return o.kind }

// Step updates net using the gradients accumulated in ws.
func (o *Optimizer) Step(net *Net, ws *TrainingWorkspace, learningRate float32) {
	switch o.kind {
	case SGD:
		net.Update(learningRate, ws.WeightGradients(), ws.BiasGradients())
	case Momentum:
		o.accumulate(o.weightVelocity, ws.WeightGradients())
		o.accumulate(o.biasVelocity, ws.BiasGradients())
		net.Update(learningRate, o.weightVelocity, o.biasVelocity)
	}
}

func (o *Optimizer) accumulate(velocity, grads [][]float32) {
	for l := range velocity {
		vecf32.Scale(velocity[l], o.beta)
		vecf32.Add(velocity[l], grads[l])
	}
}

// Velocities returns the momentum buffers. Both are nil for SGD.
func (o *Optimizer) Velocities() (weights, biases [][]float32) {
	return o.weightVelocity, o.biasVelocity
}
