package neural

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// WeightMatrix returns a (neurons, inputs) view of the layer's weights. The tensor shares
// its backing slice with the layer.
func (l *Layer) WeightMatrix() *tensor.Dense {
	return tensor.New(tensor.WithShape(l.neurons, l.inputs), tensor.WithBacking(l.Weights))
}

// BiasVector returns a view of the layer's biases.
func (l *Layer) BiasVector() *tensor.Dense {
	return tensor.New(tensor.WithShape(l.neurons), tensor.WithBacking(l.Biases))
}

// GobEncode writes the topology followed by each layer's weight matrix and bias vector.
func (n *Net) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(n.topology); err != nil {
		return nil, errors.WithStack(err)
	}
	for i, l := range n.layers {
		if err := enc.Encode(l.WeightMatrix()); err != nil {
			return nil, errors.Wrapf(err, "encoding weights of layer %d", i)
		}
		if err := enc.Encode(l.BiasVector()); err != nil {
			return nil, errors.Wrapf(err, "encoding biases of layer %d", i)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode replaces n with the network encoded in p.
func (n *Net) GobDecode(p []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(p))
	var topology Topology
	if err := dec.Decode(&topology); err != nil {
		return errors.WithStack(err)
	}
	if err := topology.Validate(); err != nil {
		return errors.WithMessage(err, "decoded topology is invalid")
	}

	layers := make([]*Layer, 0, len(topology)-1)
	for i := 1; i < len(topology); i++ {
		l := &Layer{
			Activation: topology[i].Activation,
			inputs:     topology[i-1].Neurons,
			neurons:    topology[i].Neurons,
		}
		var err error
		if l.Weights, err = decodeFloats(dec, l.neurons*l.inputs); err != nil {
			return errors.Wrapf(err, "decoding weights of layer %d", i-1)
		}
		if l.Biases, err = decodeFloats(dec, l.neurons); err != nil {
			return errors.Wrapf(err, "decoding biases of layer %d", i-1)
		}
		layers = append(layers, l)
	}
	n.topology = topology
	n.layers = layers
	return nil
}

func decodeFloats(dec *gob.Decoder, size int) ([]float32, error) {
	t := new(tensor.Dense)
	if err := dec.Decode(t); err != nil {
		return nil, err
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected []float32 data, got %T", t.Data())
	}
	if len(data) != size {
		return nil, errors.Errorf("expected %d values, got %d", size, len(data))
	}
	return data, nil
}

// Save writes the network to filename.
func (n *Net) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(n)
}

// Load reads a network previously written by Save.
func Load(filename string) (*Net, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	n := new(Net)
	if err = gob.NewDecoder(f).Decode(n); err != nil {
		return nil, errors.Wrapf(err, "decoding %v", filename)
	}
	return n, nil
}
