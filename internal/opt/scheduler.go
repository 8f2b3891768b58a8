package opt

// Scheduler adjusts an optimizer's learning rate once per epoch.
type Scheduler interface {
	Step()
	LearningRate() float64
}

// StepLR decays the learning rate by gamma every stepSize epochs.
type StepLR struct {
	optimizer Optimizer
	stepSize  int
	gamma     float64
	lastEpoch int
}

// NewStepLR creates a step decay schedule. A stepSize below 1 is treated as 1.
func NewStepLR(optimizer Optimizer, stepSize int, gamma float64) *StepLR {
	if stepSize < 1 {
		stepSize = 1
	}
	return &StepLR{optimizer: optimizer, stepSize: stepSize, gamma: gamma}
}

// Step advances the schedule by one epoch.
func (s *StepLR) Step() {
	s.lastEpoch++
	if s.lastEpoch%s.stepSize == 0 {
		s.optimizer.SetLearningRate(s.optimizer.LearningRate() * s.gamma)
	}
}

// LearningRate returns the optimizer's current learning rate.
func (s *StepLR) LearningRate() float64 {
	return s.optimizer.LearningRate()
}

// ExponentialLR decays the learning rate by gamma every epoch.
type ExponentialLR struct {
	optimizer Optimizer
	gamma     float64
}

// NewExponentialLR creates an exponential decay schedule.
func NewExponentialLR(optimizer Optimizer, gamma float64) *ExponentialLR {
	return &ExponentialLR{optimizer: optimizer, gamma: gamma}
}

// Step advances the schedule by one epoch.
func (s *ExponentialLR) Step() {
	s.optimizer.SetLearningRate(s.optimizer.LearningRate() * s.gamma)
}

// LearningRate returns the optimizer's current learning rate.
func (s *ExponentialLR) LearningRate() float64 {
	return s.optimizer.LearningRate()
}
