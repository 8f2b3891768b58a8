package loss

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

// BenchmarkLossComparison compares forward + in-place backward of the losses.
func BenchmarkLossComparison(b *testing.B) {
	pred := make([]float64, 10)
	target := make([]float64, 10)
	grad := make([]float64, 10)
	fillRandom(pred)
	target[4] = 1

	for _, l := range []Loss{MSE{}, SSE{}} {
		l := l
		b.Run(Name(l), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				l.Forward(pred, target)
				l.(BackwardInPlacer).BackwardInPlace(pred, target, grad)
			}
		})
	}
}
