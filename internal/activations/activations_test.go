package activations

import (
	"errors"
	"math"
	"testing"
)

// TestReLU tests ReLU activation.
func TestReLU(t *testing.T) {
	relu := ReLU{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{-1.0, 0.0},
		{0.0, 0.0},
		{1.0, 1.0},
		{2.5, 2.5},
	}

	for _, tt := range tests {
		output := relu.Activate(tt.input)
		if math.Abs(output-tt.expected) > 1e-12 {
			t.Errorf("ReLU(%v) = %v, want %v", tt.input, output, tt.expected)
		}
	}
}

// TestSigmoid tests Sigmoid activation and its derivative.
func TestSigmoid(t *testing.T) {
	s := Sigmoid{}

	tests := []struct {
		input float64
		want  float64
	}{
		{math.Inf(-1), 0.0},
		{-1.0, 1 / (1 + math.Exp(1))},
		{0.0, 0.5},
		{2.0, 1 / (1 + math.Exp(-2))},
		{math.Inf(1), 1.0},
	}

	for _, tt := range tests {
		if got := s.Activate(tt.input); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if got := s.Derivative(0); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Sigmoid.Derivative(0) = %v, want 0.25", got)
	}
}

// TestDerivativesMatchFiniteDifference checks every derivative numerically.
func TestDerivativesMatchFiniteDifference(t *testing.T) {
	const h = 1e-6
	acts := []Activation{Linear{}, Sigmoid{}, Tanh{}, ReLU{}, NewLeakyReLU(0.1)}
	points := []float64{-2.3, -0.4, 0.7, 1.9}

	for _, a := range acts {
		for _, x := range points {
			numeric := (a.Activate(x+h) - a.Activate(x-h)) / (2 * h)
			if got := a.Derivative(x); math.Abs(got-numeric) > 1e-5 {
				t.Errorf("%s.Derivative(%v) = %v, want %v", Name(a), x, got, numeric)
			}
		}
	}
}

// TestParse tests name lookup and the round trip through Name.
func TestParse(t *testing.T) {
	for _, name := range []string{"linear", "sigmoid", "tanh", "relu", "leakyrelu"} {
		a, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", name, err)
		}
		if got := Name(a); got != name {
			t.Errorf("Name(Parse(%q)) = %q", name, got)
		}
	}

	if _, err := Parse(" Sigmoid "); err != nil {
		t.Errorf("Parse should ignore case and spaces: %v", err)
	}

	if _, err := Parse("softplus"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Parse(softplus) error = %v, want ErrUnknown", err)
	}
}
