// Package decision maps the raw outputs of a policy network to a discard action, and maps the
// action actually taken back to the error signal that is fed to backpropagation.
package decision

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

// NumCards is the number of cards in a hand, and so the number of discard decisions.
const NumCards = 5

// NumCombinations is the number of distinct discard subsets.
const NumCombinations = 1 << NumCards

// ErrUnsupportedWidth is returned when no strategy can interpret an output layer.
var ErrUnsupportedWidth = errors.New("no decision strategy for output width")

// Kind enumerates the decision strategies.
type Kind int

const (
	// FiveBits treats each of the 5 outputs as an independent discard probability.
	FiveBits Kind = iota
	// Combination treats the outputs as a categorical distribution over all 32 discard subsets.
	Combination
)

func (k Kind) String() string {
	switch k {
	case FiveBits:
		return "FiveBits"
	case Combination:
		return "Combination"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is a discard vector: Action[i] is true when card i is exchanged.
type Action [NumCards]bool

func (a Action) Format(s fmt.State, c rune) {
	for i, d := range a {
		if d {
			fmt.Fprint(s, "X")
		} else {
			fmt.Fprint(s, "_")
		}
		if i < len(a)-1 {
			fmt.Fprint(s, " ")
		}
	}
}

// Count returns the number of cards discarded.
func (a Action) Count() (retVal int) {
	for _, d := range a {
		if d {
			retVal++
		}
	}
	return
}

// Strategy is stateless and safe to share between goroutines.
type Strategy struct {
	kind Kind
}

// New returns the strategy of the given kind.
func New(kind Kind) Strategy { return Strategy{kind: kind} }

// ForOutputWidth picks the strategy that interprets an output layer of width n.
func ForOutputWidth(n int) (Strategy, error) {
	switch n {
	case NumCards:
		return Strategy{kind: FiveBits}, nil
	case NumCombinations:
		return Strategy{kind: Combination}, nil
	}
	return Strategy{}, errors.Wrapf(ErrUnsupportedWidth, "width %d", n)
}

func (s Strategy) Kind() Kind { return s.kind }

// Width is the output layer width the strategy expects.
func (s Strategy) Width() int {
	if s.kind == Combination {
		return NumCombinations
	}
	return NumCards
}

func (s Strategy) check(outputs []float32) {
	if len(outputs) != s.Width() {
		panic(fmt.Sprintf("%v strategy expects %d outputs, got %d", s.kind, s.Width(), len(outputs)))
	}
}

// SelectAction picks a discard action. When explore is true the action is sampled from the
// distribution described by outputs; otherwise the most likely action is returned.
//
// exhausted reports that a sampled categorical walk ran off the end of the distribution (the
// outputs summed to less than the draw) and the last combination was chosen instead.
func (s Strategy) SelectAction(outputs []float32, r *rand.Rand, explore bool) (a Action, exhausted bool) {
	s.check(outputs)
	switch s.kind {
	case FiveBits:
		for i, p := range outputs {
			if explore {
				a[i] = p > r.Float32()
			} else {
				a[i] = p > 0.5
			}
		}
		return a, false
	case Combination:
		idx, exhausted := selectIndex(outputs, r, explore)
		return ExchangeVector(idx), exhausted
	}
	panic(fmt.Sprintf("unknown strategy %v", s.kind))
}

func selectIndex(outputs []float32, r *rand.Rand, explore bool) (int, bool) {
	if !explore {
		return vecf32.Argmax(outputs), false
	}
	target := r.Float32()
	for i, p := range outputs {
		target -= p
		if target <= 0 {
			return i, false
		}
	}
	return len(outputs) - 1, true
}

// Error writes the policy gradient error for having taken action into out and returns it.
// out must be at least Width long.
func (s Strategy) Error(outputs []float32, action Action, advantage float32, out []float32) []float32 {
	s.check(outputs)
	out = out[:len(outputs)]
	switch s.kind {
	case FiveBits:
		for i, p := range outputs {
			out[i] = (p - b2f(action[i])) * advantage
		}
	case Combination:
		copy(out, outputs)
		out[IndexFromAction(action)] -= 1
		vecf32.Scale(out, advantage)
	}
	return out
}

// EntropyError writes the gradient of the negated entropy, scaled by beta, into out and returns it.
// Adding it to the policy error pushes the policy towards uniformity. entropy must be
// Entropy(outputs). A zero beta yields all zeros.
func (s Strategy) EntropyError(outputs []float32, entropy, beta float32, out []float32) []float32 {
	s.check(outputs)
	out = out[:len(outputs)]
	for i, p := range outputs {
		out[i] = 0
		if beta == 0 {
			continue
		}
		switch s.kind {
		case FiveBits:
			if p > 0 && p < 1 {
				out[i] = beta * math32.Log(p/(1-p))
			}
		case Combination:
			if p > 0 {
				out[i] = beta * p * (math32.Log(p) + entropy)
			}
		}
	}
	return out
}

// Entropy is the entropy, in nats, of the distribution described by outputs. For FiveBits
// that is the sum of the entropies of the five independent Bernoulli variables.
func (s Strategy) Entropy(outputs []float32) (retVal float32) {
	s.check(outputs)
	for _, p := range outputs {
		if p > 0 {
			retVal -= p * math32.Log(p)
		}
		if s.kind == FiveBits && p < 1 {
			retVal -= (1 - p) * math32.Log(1-p)
		}
	}
	return
}

// ExchangeVector decodes a 5 bit discard mask. Bit i (LSB first) is card i.
func ExchangeVector(v int) (retVal Action) {
	if v < 0 || v >= NumCombinations {
		panic(fmt.Sprintf("discard mask %d out of range", v))
	}
	for i := range retVal {
		retVal[i] = v&1 == 1
		v >>= 1
	}
	return
}

// IndexFromAction is the inverse of ExchangeVector.
func IndexFromAction(a Action) (retVal int) {
	for i := NumCards - 1; i >= 0; i-- {
		retVal <<= 1
		if a[i] {
			retVal |= 1
		}
	}
	return
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
