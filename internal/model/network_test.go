package model

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logistic(t *testing.T, weights []float32, bias float32) *Network {
	t.Helper()
	n, err := NewNetwork([]Layer{{
		In:         len(weights),
		Out:        1,
		Activation: Sigmoid,
		Weights:    weights,
		Biases:     []float32{bias},
	}})
	require.NoError(t, err)
	return n
}

func TestNetwork_Predict(t *testing.T) {
	n := logistic(t, []float32{2, -1}, 0)

	out, err := n.Predict([]float32{0, 0})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.5, out[0], 1e-6)

	out, err = n.Predict([]float32{5, 0})
	require.NoError(t, err)
	assert.Greater(t, out[0], float32(0.99))
}

func TestNetwork_PredictShape(t *testing.T) {
	n := logistic(t, []float32{1, 1}, 0)
	_, err := n.Predict([]float32{1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestNetwork_Hidden(t *testing.T) {
	n, err := NewNetwork([]Layer{
		{In: 2, Out: 2, Activation: ReLU, Weights: []float32{1, 0, 0, -1}, Biases: []float32{0, 0}},
		{In: 2, Out: 1, Activation: Linear, Weights: []float32{1, 1}, Biases: []float32{0.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n.Inputs())
	assert.Equal(t, 1, n.Outputs())

	out, err := n.Predict([]float32{3, 4})
	require.NoError(t, err)
	// relu(3)=3, relu(-4)=0 -> 3 + 0 + 0.5
	assert.InDelta(t, 3.5, out[0], 1e-6)
}

func TestNewNetwork_Invalid(t *testing.T) {
	_, err := NewNetwork(nil)
	assert.ErrorIs(t, err, ErrBadArtifact)

	_, err = NewNetwork([]Layer{{In: 2, Out: 1, Weights: []float32{1}, Biases: []float32{0}}})
	assert.ErrorIs(t, err, ErrBadArtifact)

	_, err = NewNetwork([]Layer{
		{In: 1, Out: 2, Weights: []float32{1, 1}, Biases: []float32{0, 0}},
		{In: 3, Out: 1, Weights: []float32{1, 1, 1}, Biases: []float32{0}},
	})
	assert.ErrorIs(t, err, ErrBadArtifact)
}

func TestEncodeDecode(t *testing.T) {
	n := logistic(t, []float32{0.25, -0.5, 1}, 0.1)

	var buf bytes.Buffer
	require.NoError(t, n.Encode(&buf))

	decoded, err := Decode(&buf, int64(buf.Len()))
	require.NoError(t, err)

	in := []float32{1, 2, 3}
	want, err := n.Predict(in)
	require.NoError(t, err)
	got, err := decoded.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecode_Garbage(t *testing.T) {
	garbage := []byte("not a model at all")
	_, err := Decode(bytes.NewReader(garbage), int64(len(garbage)))
	assert.ErrorIs(t, err, ErrBadArtifact)

	_, err = Decode(bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrBadArtifact)
}

func TestDecode_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, struct {
		Magic          [4]byte
		Version        uint32
		Layers         uint32
		In, Out, Activ uint32
	}{magic, formatVersion, 1, maxLayerWidth, maxLayerWidth, uint32(Sigmoid)}))

	_, err := Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, ErrBadArtifact)
	assert.Contains(t, err.Error(), "needs")

	// A complete artifact cut short fails the same way
	n := logistic(t, []float32{0.25, -0.5, 1}, 0.1)
	buf.Reset()
	require.NoError(t, n.Encode(&buf))
	short := buf.Bytes()[:buf.Len()-4]
	_, err = Decode(bytes.NewReader(short), int64(len(short)))
	assert.ErrorIs(t, err, ErrBadArtifact)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.splm")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, logistic(t, []float32{1, 1}, -1).Encode(f))
	require.NoError(t, f.Close())

	n, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n.Inputs())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.splm"))
	assert.Error(t, err)
}
