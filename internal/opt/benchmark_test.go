package opt

import (
	"math/rand"
	"testing"
)

// fillRandom fills a slice with random values.
func fillRandom(slice []float64) {
	for i := range slice {
		slice[i] = rand.Float64()
	}
}

// BenchmarkSGDStepInPlace benchmarks an in-place SGD update of a 784x101 weight matrix.
func BenchmarkSGDStepInPlace(b *testing.B) {
	params := make([]float64, 784*101)
	grads := make([]float64, len(params))
	fillRandom(params)
	fillRandom(grads)
	s := NewSGD(0.001)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.StepInPlace(params, grads)
	}
}

// BenchmarkMomentumStepInPlace benchmarks the momentum update of the same matrix.
func BenchmarkMomentumStepInPlace(b *testing.B) {
	params := make([]float64, 784*101)
	grads := make([]float64, len(params))
	fillRandom(params)
	fillRandom(grads)
	m := NewMomentum(0.001, 0.9)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.StepInPlace(params, grads)
	}
}
