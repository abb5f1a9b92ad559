// Package model loads and evaluates the on-device spam model.
//
// An artifact is a little-endian binary file:
//
//	magic    [4]byte "SPLM"
//	version  uint32  (1)
//	layers   uint32
//	per layer:
//	  in, out     uint32
//	  activation  uint32
//	  weights     [out*in]float32, row-major by output
//	  biases      [out]float32
package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrBadArtifact is returned for files that are not valid model artifacts
	ErrBadArtifact = errors.New("model: invalid artifact")
	// ErrShape is returned when an input does not match the network
	ErrShape = errors.New("model: input shape mismatch")
)

const (
	formatVersion = 1
	maxLayerWidth = 1 << 16
)

var magic = [4]byte{'S', 'P', 'L', 'M'}

// Activation is applied to the output of a layer
type Activation uint32

const (
	Linear Activation = iota
	ReLU
	Sigmoid
	Tanh
)

func (a Activation) apply(x float32) float32 {
	switch a {
	case ReLU:
		if x < 0 {
			return 0
		}
		return x
	case Sigmoid:
		return float32(1 / (1 + math.Exp(-float64(x))))
	case Tanh:
		return float32(math.Tanh(float64(x)))
	default:
		return x
	}
}

// Layer is a fully connected layer
type Layer struct {
	In         int
	Out        int
	Activation Activation
	Weights    []float32
	Biases     []float32
}

func (l Layer) validate() error {
	if l.In <= 0 || l.Out <= 0 || l.In > maxLayerWidth || l.Out > maxLayerWidth {
		return fmt.Errorf("%w: layer size %dx%d", ErrBadArtifact, l.In, l.Out)
	}
	if len(l.Weights) != l.In*l.Out || len(l.Biases) != l.Out {
		return fmt.Errorf("%w: layer %dx%d has %d weights and %d biases",
			ErrBadArtifact, l.In, l.Out, len(l.Weights), len(l.Biases))
	}
	if l.Activation > Tanh {
		return fmt.Errorf("%w: unknown activation %d", ErrBadArtifact, l.Activation)
	}
	return nil
}

// Network is a feed-forward stack of dense layers
type Network struct {
	layers []Layer
}

// NewNetwork validates layers and chains them into a network
func NewNetwork(layers []Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrBadArtifact)
	}
	for i, l := range layers {
		if err := l.validate(); err != nil {
			return nil, err
		}
		if i > 0 && layers[i-1].Out != l.In {
			return nil, fmt.Errorf("%w: layer %d expects %d inputs, previous layer has %d outputs",
				ErrBadArtifact, i, l.In, layers[i-1].Out)
		}
	}
	return &Network{layers: layers}, nil
}

// Inputs returns the input width
func (n *Network) Inputs() int {
	return n.layers[0].In
}

// Outputs returns the output width
func (n *Network) Outputs() int {
	return n.layers[len(n.layers)-1].Out
}

// Predict runs one forward pass
func (n *Network) Predict(input []float32) ([]float32, error) {
	if len(input) != n.Inputs() {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrShape, len(input), n.Inputs())
	}

	x := input
	for _, l := range n.layers {
		y := make([]float32, l.Out)
		for o := 0; o < l.Out; o++ {
			sum := l.Biases[o]
			row := l.Weights[o*l.In : (o+1)*l.In]
			for i, w := range row {
				sum += w * x[i]
			}
			y[o] = l.Activation.apply(sum)
		}
		x = y
	}
	return x, nil
}

// Decode reads an artifact of size bytes. Layers that claim more data than
// is left are rejected before anything is allocated for them.
func Decode(r io.Reader, size int64) (*Network, error) {
	var header struct {
		Magic   [4]byte
		Version uint32
		Layers  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrBadArtifact, err)
	}
	remaining := size - int64(binary.Size(header))
	if header.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadArtifact, header.Magic[:])
	}
	if header.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, header.Version)
	}
	if header.Layers == 0 || header.Layers > 64 {
		return nil, fmt.Errorf("%w: %d layers", ErrBadArtifact, header.Layers)
	}

	layers := make([]Layer, 0, header.Layers)
	for i := uint32(0); i < header.Layers; i++ {
		var shape struct {
			In, Out, Activation uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &shape); err != nil {
			return nil, fmt.Errorf("%w: reading layer %d: %v", ErrBadArtifact, i, err)
		}
		if shape.In == 0 || shape.Out == 0 || shape.In > maxLayerWidth || shape.Out > maxLayerWidth {
			return nil, fmt.Errorf("%w: layer %d size %dx%d", ErrBadArtifact, i, shape.In, shape.Out)
		}
		remaining -= int64(binary.Size(shape))
		need := 4 * (int64(shape.In)*int64(shape.Out) + int64(shape.Out))
		if need > remaining {
			return nil, fmt.Errorf("%w: layer %d needs %d bytes, %d left", ErrBadArtifact, i, need, remaining)
		}
		remaining -= need

		l := Layer{
			In:         int(shape.In),
			Out:        int(shape.Out),
			Activation: Activation(shape.Activation),
			Weights:    make([]float32, shape.In*shape.Out),
			Biases:     make([]float32, shape.Out),
		}
		if err := binary.Read(r, binary.LittleEndian, l.Weights); err != nil {
			return nil, fmt.Errorf("%w: reading weights of layer %d: %v", ErrBadArtifact, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, l.Biases); err != nil {
			return nil, fmt.Errorf("%w: reading biases of layer %d: %v", ErrBadArtifact, i, err)
		}
		layers = append(layers, l)
	}

	return NewNetwork(layers)
}

// Encode writes the network as an artifact
func (n *Network) Encode(w io.Writer) error {
	header := struct {
		Magic   [4]byte
		Version uint32
		Layers  uint32
	}{magic, formatVersion, uint32(len(n.layers))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, l := range n.layers {
		shape := [3]uint32{uint32(l.In), uint32(l.Out), uint32(l.Activation)}
		if err := binary.Write(w, binary.LittleEndian, shape); err != nil {
			return fmt.Errorf("failed to write layer shape: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, l.Weights); err != nil {
			return fmt.Errorf("failed to write weights: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, l.Biases); err != nil {
			return fmt.Errorf("failed to write biases: %w", err)
		}
	}
	return nil
}
