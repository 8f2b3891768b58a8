package net

import (
	"fmt"
	"io"

	"github.com/FlavioCFOliveira/annt/internal/activations"
)

// Summary prints a summary of the network architecture.
func (n *MultilayerPerceptron) Summary(w io.Writer) {
	fmt.Fprintln(w, "Model: MultilayerPerceptron")
	fmt.Fprintln(w, "_________________________________________________________________")
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (activation)", "Output Shape", "Param #")
	fmt.Fprintln(w, "=================================================================")

	totalParams := 0
	for i, l := range n.layers {
		params := len(l.Params())
		totalParams += params
		name := fmt.Sprintf("dense_%d (%s)", i, activations.Name(l.Activation()))
		fmt.Fprintf(w, "%-25s %-20s %-10d\n", name, fmt.Sprintf("(%d)", l.OutSize()), params)
	}
	fmt.Fprintln(w, "=================================================================")
	fmt.Fprintf(w, "Total params: %d\n", totalParams)
	fmt.Fprintf(w, "Bias input: %v  Learning rate: %v\n", n.cfg.Bias, n.opt.LearningRate())
	fmt.Fprintln(w, "_________________________________________________________________")
}
