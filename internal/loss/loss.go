// Package loss provides the error measures minimised during training.
package loss

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue, grad []float64)
}

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	// This creates a new slice and should be avoided in hot loops.
	Backward(yPred, yTrue []float64) []float64
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("MSE: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / float64(n)
}

// Backward computes gradient: dL/dy_pred = (2/n) * (y_pred - y_true)
func (m MSE) Backward(yPred, yTrue []float64) []float64 {
	grad := make([]float64, len(yPred))
	m.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes gradient and stores it in the grad slice.
func (m MSE) BackwardInPlace(yPred, yTrue, grad []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		panic("MSE: slices must have same length")
	}

	factor := 2.0 / float64(n)
	for i := 0; i < n; i++ {
		grad[i] = factor * (yPred[i] - yTrue[i])
	}
}

// SSE is the halved sum of squared errors, 0.5 * sum((y_pred - y_true)^2).
// Its gradient is the raw output error, which turns gradient descent into the
// classic delta rule.
type SSE struct{}

// Forward computes 0.5 * sum((y_pred - y_true)^2)
func (s SSE) Forward(yPred, yTrue []float64) float64 {
	if len(yPred) != len(yTrue) {
		panic("SSE: prediction and target must have same length")
	}

	var sum float64
	for i := range yPred {
		diff := yPred[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / 2
}

// Backward computes gradient: dL/dy_pred = y_pred - y_true
func (s SSE) Backward(yPred, yTrue []float64) []float64 {
	grad := make([]float64, len(yPred))
	s.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes gradient and stores it in the grad slice.
func (s SSE) BackwardInPlace(yPred, yTrue, grad []float64) {
	if len(yPred) != len(yTrue) || len(yPred) != len(grad) {
		panic("SSE: slices must have same length")
	}
	for i := range yPred {
		grad[i] = yPred[i] - yTrue[i]
	}
}

// Name returns the persisted name of l.
func Name(l Loss) string {
	switch l.(type) {
	case MSE:
		return "MSE"
	case SSE:
		return "SSE"
	}
	return ""
}

// ByName is the inverse of Name. Unknown names fall back to SSE.
func ByName(name string) Loss {
	if name == "MSE" {
		return MSE{}
	}
	return SSE{}
}
