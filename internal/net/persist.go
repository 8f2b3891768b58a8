package net

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/annt/internal/loss"
)

// snapshot is the gob encoded form of a network.
// The optimizer state is not saved; a loaded network uses SGD with the
// configured learning rate unless an option says otherwise.
type snapshot struct {
	Config Config
	Loss   string
	Params [][]float64
}

// Save saves the network to a file using gob encoding.
func (n *MultilayerPerceptron) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := n.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Encode writes the network to w using gob encoding.
func (n *MultilayerPerceptron) Encode(w io.Writer) error {
	s := snapshot{
		Config: n.Config(),
		Loss:   loss.Name(n.loss),
		Params: make([][]float64, len(n.layers)),
	}
	for i, l := range n.layers {
		s.Params[i] = append([]float64(nil), l.Params()...)
	}
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	return nil
}

// Load loads a network from a file written by Save.
func Load(filename string, opts ...Option) (*MultilayerPerceptron, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file, opts...)
}

// Decode reads a network written by Encode.
func Decode(r io.Reader, opts ...Option) (*MultilayerPerceptron, error) {
	var s snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}

	opts = append([]Option{WithLoss(loss.ByName(s.Loss))}, opts...)
	n, err := New(s.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid stored config: %w", err)
	}
	if len(s.Params) != len(n.layers) {
		return nil, fmt.Errorf("%w: stored %d layers, config describes %d", ErrShape, len(s.Params), len(n.layers))
	}
	for i, l := range n.layers {
		if len(s.Params[i]) != len(l.Params()) {
			return nil, fmt.Errorf("%w: layer %d has %d stored params, want %d",
				ErrShape, i, len(s.Params[i]), len(l.Params()))
		}
		l.SetParams(s.Params[i])
	}
	return n, nil
}
