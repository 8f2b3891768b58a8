// Package opt provides unit tests for optimizers.
package opt

import (
	"math"
	"testing"
)

// TestSGDStepInPlace tests in-place SGD update.
func TestSGDStepInPlace(t *testing.T) {
	sgd := NewSGD(0.1)

	params := []float64{1.0, 2.0, 3.0}
	sgd.StepInPlace(params, []float64{0.1, 0.2, 0.3})

	expected := []float64{0.99, 1.98, 2.97}
	for i := range params {
		if math.Abs(params[i]-expected[i]) > 1e-10 {
			t.Errorf("params[%d] = %v, want %v", i, params[i], expected[i])
		}
	}
}

// TestMomentumAccumulates tests that repeated gradients build up velocity.
func TestMomentumAccumulates(t *testing.T) {
	m := NewMomentum(0.1, 0.9)
	params := []float64{0}
	grads := []float64{1}

	m.StepInPlace(params, grads) // v = -0.1
	m.StepInPlace(params, grads) // v = -0.19

	if want := -0.29; math.Abs(params[0]-want) > 1e-12 {
		t.Errorf("params[0] = %v, want %v", params[0], want)
	}

	// A different slice has its own velocity.
	other := []float64{0}
	m.StepInPlace(other, grads)
	if want := -0.1; math.Abs(other[0]-want) > 1e-12 {
		t.Errorf("other[0] = %v, want %v", other[0], want)
	}
}

// TestStepLR tests step decay.
func TestStepLR(t *testing.T) {
	sgd := NewSGD(1.0)
	s := NewStepLR(sgd, 2, 0.5)

	want := []float64{1.0, 0.5, 0.5, 0.25}
	for epoch, w := range want {
		s.Step()
		if got := s.LearningRate(); math.Abs(got-w) > 1e-12 {
			t.Errorf("epoch %d: lr = %v, want %v", epoch+1, got, w)
		}
	}
}

// TestExponentialLR tests exponential decay.
func TestExponentialLR(t *testing.T) {
	sgd := NewSGD(1.0)
	s := NewExponentialLR(sgd, 0.9)
	s.Step()
	s.Step()
	if got := sgd.LearningRate(); math.Abs(got-0.81) > 1e-12 {
		t.Errorf("lr = %v, want 0.81", got)
	}
}
