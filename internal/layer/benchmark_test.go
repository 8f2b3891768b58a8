package layer

import (
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/annt/internal/activations"
)

// fillRandom fills a slice with random values.
func fillRandom(rng *rand.Rand, slice []float64) {
	for i := range slice {
		slice[i] = rng.Float64()
	}
}

// BenchmarkDenseForward benchmarks Dense layer forward pass.
func BenchmarkDenseForward(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d := NewDense(784, 100, activations.Sigmoid{}, 1, -1, 1, rng)
	input := make([]float64, 784)
	fillRandom(rng, input)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Forward(input)
	}
}

// BenchmarkDenseBackward benchmarks Dense layer backward pass.
func BenchmarkDenseBackward(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d := NewDense(784, 100, activations.Sigmoid{}, 1, -1, 1, rng)
	input := make([]float64, 784)
	grad := make([]float64, 100)
	fillRandom(rng, input)
	fillRandom(rng, grad)
	d.Forward(input)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Backward(grad)
	}
}

// BenchmarkDenseFull benchmarks forward + backward pass.
func BenchmarkDenseFull(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d := NewDense(100, 10, activations.Sigmoid{}, 1, -1, 1, rng)
	input := make([]float64, 100)
	grad := make([]float64, 10)
	fillRandom(rng, input)
	fillRandom(rng, grad)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Forward(input)
		d.Backward(grad)
	}
}
