package net

import "time"

// EpochStats summarises one training epoch.
type EpochStats struct {
	Epoch         int
	Loss          float64 // mean sample loss over the epoch
	TrainAccuracy float64 // fraction in [0, 1]
	TestAccuracy  float64 // fraction in [0, 1], 0 without a test set
	LearningRate  float64
	Elapsed       time.Duration
}

// History holds per-epoch results of a Run.
// Accuracies are fractions in [0, 1]; Test is nil when no test set was given.
type History struct {
	Train []float64
	Test  []float64
	Loss  []float64
}

func newHistory(nepochs int, hasTest bool) *History {
	h := &History{
		Train: make([]float64, 0, nepochs),
		Loss:  make([]float64, 0, nepochs),
	}
	if hasTest {
		h.Test = make([]float64, 0, nepochs)
	}
	return h
}

func (h *History) add(s EpochStats) {
	h.Train = append(h.Train, s.TrainAccuracy)
	h.Loss = append(h.Loss, s.Loss)
	if h.Test != nil {
		h.Test = append(h.Test, s.TestAccuracy)
	}
}

// Epochs returns the number of completed epochs.
func (h *History) Epochs() int {
	return len(h.Train)
}

// Percent returns the train and test accuracies scaled to percent.
func (h *History) Percent() (train, test []float64) {
	return scale(h.Train, 100), scale(h.Test, 100)
}

func scale(v []float64, k float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}
