package neural

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Activation is the kind of non-linearity a layer applies to its logits.
type Activation int

const (
	Linear Activation = iota
	Sigmoid
	ReLU
	Softmax
	MAXACTIVATION
)

func (a Activation) String() string {
	switch a {
	case Linear:
		return "Linear"
	case Sigmoid:
		return "Sigmoid"
	case ReLU:
		return "ReLU"
	case Softmax:
		return "Softmax"
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

func (a Activation) IsValid() bool { return a >= Linear && a < MAXACTIVATION }

// activate applies the activation over a full row of logits, writing into out.
// out and logits must have the same length. out may alias logits.
func activate(a Activation, logits, out []float32) {
	out = out[:len(logits)]
	switch a {
	case Linear:
		copy(out, logits)
	case Sigmoid:
		for i, v := range logits {
			out[i] = 1 / (1 + math32.Exp(-v))
		}
	case ReLU:
		for i, v := range logits {
			if v > 0 {
				out[i] = v
			} else {
				out[i] = 0
			}
		}
	case Softmax:
		softmax(logits, out)
	default:
		panic(fmt.Sprintf("unknown activation %v", a))
	}
}

// softmax is numerically stabilized by subtracting the row max.
// A non-positive denominator leaves the exponentials un-normalized.
func softmax(logits, out []float32) {
	max := math32.Inf(-1)
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, v := range logits {
		out[i] = math32.Exp(v - max)
		sum += out[i]
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
}

// derivative computes f'(x) from the activation output y = f(x).
// Softmax has no elementwise derivative and is handled by the caller.
func derivative(a Activation, y float32) float32 {
	switch a {
	case Sigmoid:
		return y * (1 - y)
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	}
	return 1
}
