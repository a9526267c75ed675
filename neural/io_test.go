package neural

import (
	"bytes"
	"encoding/gob"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestNetGobRoundTrip(t *testing.T) {
	n := New(smallPolicy, testRand())
	in := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	want := n.FeedForward(in)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(n))

	got := new(Net)
	require.NoError(t, gob.NewDecoder(&buf).Decode(got))
	assert.Equal(t, n.Topology(), got.Topology())
	assert.Equal(t, want, got.FeedForward(in))
}

func TestNetSaveLoad(t *testing.T) {
	n := New(smallPolicy, testRand())
	filename := filepath.Join(t.TempDir(), "policy.gob")
	require.NoError(t, n.Save(filename))

	loaded, err := Load(filename)
	require.NoError(t, err)
	for i, l := range n.Layers() {
		assert.Equal(t, l.Weights, loaded.Layers()[i].Weights)
		assert.Equal(t, l.Biases, loaded.Layers()[i].Biases)
		assert.Equal(t, l.Activation, loaded.Layers()[i].Activation)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestWeightMatrix(t *testing.T) {
	n := New(smallPolicy, testRand())
	l := n.Layers()[1]
	m := l.WeightMatrix()
	assert.Equal(t, tensor.Shape{5, 8}, m.Shape())

	v, err := m.At(2, 3)
	require.NoError(t, err)
	assert.Equal(t, l.row(2)[3], v)

	// the matrix is a view
	l.Weights[0] = 42
	v, _ = m.At(0, 0)
	assert.Equal(t, float32(42), v)
}

func TestToDot(t *testing.T) {
	n := New(smallPolicy, testRand())
	dot := n.ToDot()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph G"))
	assert.Contains(t, dot, "input->layer0")
	assert.Contains(t, dot, "layer1->layer2")
	assert.Contains(t, dot, "Softmax")
}
