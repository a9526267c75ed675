package neural

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// LayerSpec describes the shape of one layer.
type LayerSpec struct {
	Neurons    int
	Activation Activation
}

func (s LayerSpec) Format(f fmt.State, c rune) { fmt.Fprintf(f, "%d %v", s.Neurons, s.Activation) }

// Topology is an ordered list of layer specifications. The first entry is the
// virtual input layer: only its width is used and it carries no weights.
type Topology []LayerSpec

// Validate reports the first structural problem with the topology.
func (t Topology) Validate() error {
	if len(t) < 2 {
		return errors.Errorf("topology needs an input layer and at least one weighted layer, got %d entries", len(t))
	}
	for i, s := range t {
		if s.Neurons < 1 {
			return errors.Errorf("layer %d has %d neurons", i, s.Neurons)
		}
		if !s.Activation.IsValid() {
			return errors.Errorf("layer %d has invalid activation %v", i, s.Activation)
		}
	}
	return nil
}

func (t Topology) IsValid() bool { return t.Validate() == nil }

// InputWidth is the width of the virtual input layer.
func (t Topology) InputWidth() int { return t[0].Neurons }

// OutputWidth is the width of the last layer.
func (t Topology) OutputWidth() int { return t[len(t)-1].Neurons }

// MaxWidth is the widest entry in the topology, including the input layer.
func (t Topology) MaxWidth() (retVal int) {
	for _, s := range t {
		if s.Neurons > retVal {
			retVal = s.Neurons
		}
	}
	return
}

// String renders the topology as e.g. "85-170-170-32".
func (t Topology) String() string {
	var buf bytes.Buffer
	for i, s := range t {
		if i > 0 {
			buf.WriteByte('-')
		}
		fmt.Fprintf(&buf, "%d", s.Neurons)
	}
	return buf.String()
}

// Clone returns a copy of the topology.
func (t Topology) Clone() Topology {
	retVal := make(Topology, len(t))
	copy(retVal, t)
	return retVal
}
