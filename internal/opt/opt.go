// Package opt provides optimization algorithms.
package opt

// Optimizer updates network parameters based on gradients.
type Optimizer interface {
	// StepInPlace updates params in-place: params = params - lr * gradients
	StepInPlace(params, gradients []float64)

	// LearningRate returns the current step size.
	LearningRate() float64

	// SetLearningRate changes the step size, used by schedulers.
	SetLearningRate(lr float64)
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LR float64
}

// NewSGD creates a plain gradient descent optimizer.
func NewSGD(lr float64) *SGD {
	return &SGD{LR: lr}
}

// StepInPlace updates params in-place: params = params - lr * gradients
func (s *SGD) StepInPlace(params, gradients []float64) {
	for i := range params {
		params[i] -= s.LR * gradients[i]
	}
}

// LearningRate returns the step size.
func (s *SGD) LearningRate() float64 { return s.LR }

// SetLearningRate sets the step size.
func (s *SGD) SetLearningRate(lr float64) { s.LR = lr }

// Momentum is gradient descent with a velocity term:
// v = mu*v - lr*g; p = p + v.
//
// Velocity is tracked per parameter slice, identified by the address of its
// first element, so callers must pass the same backing array on every step.
type Momentum struct {
	LR float64
	Mu float64

	velocity map[*float64][]float64
}

// NewMomentum creates a momentum optimizer.
func NewMomentum(lr, mu float64) *Momentum {
	return &Momentum{LR: lr, Mu: mu, velocity: make(map[*float64][]float64)}
}

// StepInPlace applies one momentum update.
func (m *Momentum) StepInPlace(params, gradients []float64) {
	if len(params) == 0 {
		return
	}
	if m.velocity == nil {
		m.velocity = make(map[*float64][]float64)
	}
	key := &params[0]
	v, ok := m.velocity[key]
	if !ok {
		v = make([]float64, len(params))
		m.velocity[key] = v
	}
	for i := range params {
		v[i] = m.Mu*v[i] - m.LR*gradients[i]
		params[i] += v[i]
	}
}

// LearningRate returns the step size.
func (m *Momentum) LearningRate() float64 { return m.LR }

// SetLearningRate sets the step size.
func (m *Momentum) SetLearningRate(lr float64) { m.LR = lr }
