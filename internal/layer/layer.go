// Package layer provides neural network layer implementations.
package layer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/FlavioCFOliveira/annt/internal/activations"
	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer.
//
// Weights are held in a gonum matrix of shape [out, in+1]; the extra column
// is multiplied by the constant bias input, so a bias of 0 disables it.
// Forward and Backward reuse pre-allocated vectors and return views into them,
// which stay valid until the next call.
type Dense struct {
	weights *mat.Dense
	grad    *mat.Dense
	act     activations.Activation
	bias    float64
	inSize  int
	outSize int

	input  *mat.VecDense // [x; bias]
	preAct *mat.VecDense
	output *mat.VecDense
	delta  *mat.VecDense
	gradIn *mat.VecDense
}

// NewDense creates a dense layer with weights drawn uniformly from
// [minWeight, maxWeight). A nil rng uses a time seeded source.
func NewDense(in, out int, act activations.Activation, bias, minWeight, maxWeight float64, rng *rand.Rand) *Dense {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	data := make([]float64, out*(in+1))
	span := maxWeight - minWeight
	for i := range data {
		data[i] = minWeight + rng.Float64()*span
	}

	return &Dense{
		weights: mat.NewDense(out, in+1, data),
		grad:    mat.NewDense(out, in+1, nil),
		act:     act,
		bias:    bias,
		inSize:  in,
		outSize: out,
		input:   mat.NewVecDense(in+1, nil),
		preAct:  mat.NewVecDense(out, nil),
		output:  mat.NewVecDense(out, nil),
		delta:   mat.NewVecDense(out, nil),
		gradIn:  mat.NewVecDense(in+1, nil),
	}
}

// Forward computes f(W·[x; bias]).
// It panics if len(x) differs from InSize.
func (d *Dense) Forward(x []float64) []float64 {
	if len(x) != d.inSize {
		panic(fmt.Sprintf("Dense: input has %d values, layer expects %d", len(x), d.inSize))
	}
	in := d.input.RawVector().Data
	copy(in[:d.inSize], x)
	in[d.inSize] = d.bias

	d.preAct.MulVec(d.weights, d.input)

	z := d.preAct.RawVector().Data
	out := d.output.RawVector().Data
	for o := range out {
		out[o] = d.act.Activate(z[o])
	}
	return out
}

// Backward takes dL/d(output) and returns dL/d(input).
// The weight gradient delta ⊗ [x; bias] is stored for the optimizer.
func (d *Dense) Backward(grad []float64) []float64 {
	if len(grad) != d.outSize {
		panic(fmt.Sprintf("Dense: gradient has %d values, layer has %d outputs", len(grad), d.outSize))
	}
	z := d.preAct.RawVector().Data
	delta := d.delta.RawVector().Data
	for o := range delta {
		delta[o] = grad[o] * d.act.Derivative(z[o])
	}

	d.grad.Outer(1, d.delta, d.input)
	d.gradIn.MulVec(d.weights.T(), d.delta)

	return d.gradIn.RawVector().Data[:d.inSize]
}

// Params returns the weight matrix backing slice, bias column included.
// Updating it updates the layer.
func (d *Dense) Params() []float64 {
	return d.weights.RawMatrix().Data
}

// SetParams copies params into the weight matrix.
func (d *Dense) SetParams(params []float64) {
	copy(d.weights.RawMatrix().Data, params)
}

// Gradients returns the backing slice of the last weight gradient.
func (d *Dense) Gradients() []float64 {
	return d.grad.RawMatrix().Data
}

// Weights returns a copy of the weights without the bias column.
// Row i holds the incoming weights of node i.
func (d *Dense) Weights() *mat.Dense {
	return mat.DenseCopyOf(d.weights.Slice(0, d.outSize, 0, d.inSize))
}

// BiasWeights returns a copy of the bias column.
func (d *Dense) BiasWeights() []float64 {
	return mat.Col(nil, d.inSize, d.weights)
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Bias returns the constant bias input.
func (d *Dense) Bias() float64 {
	return d.bias
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}

// SetWeight sets the weight from input col to node row.
// col == InSize() addresses the bias weight.
func (d *Dense) SetWeight(row, col int, val float64) {
	d.weights.Set(row, col, val)
}

// Weight returns the weight from input col to node row.
func (d *Dense) Weight(row, col int) float64 {
	return d.weights.At(row, col)
}
