// Package net provides unit tests for the multilayer perceptron.
package net

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func xorData() (*mat.Dense, *mat.Dense) {
	x := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		0, 1,
		1, 0,
	})
	return x, y
}

func mustNew(t *testing.T, cfg Config, opts ...Option) *MultilayerPerceptron {
	t.Helper()
	n, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return n
}

// TestConfigValidate tests rejection of unusable hyperparameters.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"single layer", func(c *Config) { c.Shape = []int{3} }},
		{"zero nodes", func(c *Config) { c.Shape = []int{3, 0, 2} }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
		{"inverted weight bounds", func(c *Config) { c.MinWeight, c.MaxWeight = 1, -1 }},
		{"unknown activation", func(c *Config) { c.HiddenActivation = "softplus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(3, 4, 2)
			tt.modify(&cfg)
			if _, err := New(cfg); !errors.Is(err, ErrShape) {
				t.Errorf("New() error = %v, want ErrShape", err)
			}
		})
	}

	if err := DefaultConfig(784, 100, 10).Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

// TestNetworkShape tests layer construction from the shape.
func TestNetworkShape(t *testing.T) {
	n := mustNew(t, DefaultConfig(5, 4, 3, 2))

	layers := n.Layers()
	if len(layers) != 3 {
		t.Fatalf("len(layers) = %d, want 3", len(layers))
	}
	wantIn := []int{5, 4, 3}
	wantOut := []int{4, 3, 2}
	for i, l := range layers {
		if l.InSize() != wantIn[i] || l.OutSize() != wantOut[i] {
			t.Errorf("layer %d = %dx%d, want %dx%d", i, l.InSize(), l.OutSize(), wantIn[i], wantOut[i])
		}
	}
	if got := len(n.Params()); got != 4*6+3*5+2*4 {
		t.Errorf("param count = %d, want %d", got, 4*6+3*5+2*4)
	}
}

// TestStepDeltaRule tests a single linear layer against the textbook update
// w += lr * (t - o) * x.
func TestStepDeltaRule(t *testing.T) {
	cfg := DefaultConfig(2, 1)
	cfg.OutputActivation = "linear"
	cfg.LearningRate = 0.1
	cfg.Seed = 1
	n := mustNew(t, cfg)
	n.Layers()[0].SetParams([]float64{0.5, -0.5, 0.25})

	x := []float64{1, 2}
	loss := n.Step(x, []float64{1})

	// o = 0.5 - 1 + 0.25 = -0.25, error = 1.25
	if math.Abs(loss-0.5*1.25*1.25) > 1e-12 {
		t.Errorf("loss = %v, want %v", loss, 0.5*1.25*1.25)
	}
	want := []float64{0.5 + 0.1*1.25*1, -0.5 + 0.1*1.25*2, 0.25 + 0.1*1.25*1}
	for i, w := range n.Layers()[0].Params() {
		if math.Abs(w-want[i]) > 1e-12 {
			t.Errorf("w[%d] = %v, want %v", i, w, want[i])
		}
	}
}

// TestStepReducesLoss tests that repeated steps on one sample converge.
func TestStepReducesLoss(t *testing.T) {
	cfg := DefaultConfig(3, 5, 2)
	cfg.LearningRate = 0.5
	cfg.Seed = 11
	n := mustNew(t, cfg)

	x := []float64{0.1, 0.9, 0.4}
	y := []float64{1, 0}
	first := n.Step(x, y)
	var last float64
	for i := 0; i < 200; i++ {
		last = n.Step(x, y)
	}
	if last >= first {
		t.Errorf("loss did not decrease: first %v, last %v", first, last)
	}
}

// TestNetworkXOR tests XOR learning.
func TestNetworkXOR(t *testing.T) {
	x, y := xorData()

	best := 0.0
	for seed := int64(1); seed <= 5 && best < 1; seed++ {
		cfg := DefaultConfig(2, 6, 2)
		cfg.HiddenActivation = "tanh"
		cfg.LearningRate = 0.3
		cfg.Seed = seed
		n := mustNew(t, cfg, WithShuffle(true))

		hist, err := n.Run(context.Background(), x, y, nil, nil, 3000, false)
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		best = math.Max(best, hist.Train[len(hist.Train)-1])
	}

	if best < 1 {
		t.Errorf("XOR accuracy = %v, want 1", best)
	}
}

// TestRunHistory tests the per-epoch results.
func TestRunHistory(t *testing.T) {
	x, y := xorData()
	cfg := DefaultConfig(2, 3, 2)
	cfg.Seed = 4
	n := mustNew(t, cfg)

	hist, err := n.Run(context.Background(), x, y, x, y, 7, true)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if hist.Epochs() != 7 || len(hist.Test) != 7 || len(hist.Loss) != 7 {
		t.Fatalf("history lengths = %d/%d/%d, want 7", len(hist.Train), len(hist.Test), len(hist.Loss))
	}
	for i := range hist.Train {
		if hist.Train[i] < 0 || hist.Train[i] > 1 {
			t.Errorf("train accuracy %v outside [0, 1]", hist.Train[i])
		}
		// Same data on both sides.
		if hist.Train[i] != hist.Test[i] {
			t.Errorf("epoch %d: train %v != test %v", i+1, hist.Train[i], hist.Test[i])
		}
	}

	train, test := hist.Percent()
	if train[0] != hist.Train[0]*100 || test[0] != hist.Test[0]*100 {
		t.Errorf("Percent() = %v, %v", train[0], test[0])
	}
}

// TestRunDeterministic tests that a fixed seed reproduces a run.
func TestRunDeterministic(t *testing.T) {
	x, y := xorData()
	cfg := DefaultConfig(2, 3, 2)
	cfg.LearningRate = 0.2
	cfg.Seed = 99

	run := func() *History {
		n := mustNew(t, cfg, WithShuffle(true))
		h, err := n.Run(context.Background(), x, y, nil, nil, 20, false)
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		return h
	}

	a, b := run(), run()
	for i := range a.Loss {
		if a.Loss[i] != b.Loss[i] {
			t.Fatalf("epoch %d: loss %v != %v", i+1, a.Loss[i], b.Loss[i])
		}
	}
}

// TestRunDimensionErrors tests data validation before training.
func TestRunDimensionErrors(t *testing.T) {
	x, y := xorData()
	n := mustNew(t, DefaultConfig(2, 3, 2))

	tests := []struct {
		name string
		x, y *mat.Dense
	}{
		{"features", mat.NewDense(4, 3, nil), y},
		{"classes", x, mat.NewDense(4, 3, nil)},
		{"rows", x, mat.NewDense(3, 2, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := n.Run(context.Background(), tt.x, tt.y, nil, nil, 1, false); !errors.Is(err, ErrDimension) {
				t.Errorf("Run() error = %v, want ErrDimension", err)
			}
		})
	}

	if _, err := n.Run(context.Background(), x, y, x, nil, 1, false); !errors.Is(err, ErrDimension) {
		t.Errorf("half test set error = %v, want ErrDimension", err)
	}
}

// TestRunCancelled tests that cancellation returns the partial history.
func TestRunCancelled(t *testing.T) {
	x, y := xorData()
	ctx, cancel := context.WithCancel(context.Background())

	stopper := &cancelAfter{epoch: 3, cancel: cancel}
	n := mustNew(t, DefaultConfig(2, 3, 2), WithCallbacks(stopper))

	hist, err := n.Run(ctx, x, y, nil, nil, 10, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if hist.Epochs() != 3 {
		t.Errorf("epochs = %d, want 3", hist.Epochs())
	}
}

type cancelAfter struct {
	BaseCallback
	epoch  int
	cancel context.CancelFunc
}

func (c *cancelAfter) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	if stats.Epoch == c.epoch {
		c.cancel()
	}
}

// TestEarlyStopping tests that training halts once accuracy stalls.
func TestEarlyStopping(t *testing.T) {
	x, y := xorData()
	cfg := DefaultConfig(2, 3, 2)
	cfg.LearningRate = 1e-9
	es := NewEarlyStopping(2, 0)
	n := mustNew(t, cfg, WithCallbacks(es))

	hist, err := n.Run(context.Background(), x, y, x, y, 50, false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !es.Stopped {
		t.Fatal("early stopping did not trigger")
	}
	if hist.Epochs() != 3 || es.StoppedEpoch != 3 {
		t.Errorf("stopped after %d epochs (callback says %d), want 3", hist.Epochs(), es.StoppedEpoch)
	}
}

// TestModelCheckpoint tests that the best network is saved and that a
// second Run starts from a fresh best score.
func TestModelCheckpoint(t *testing.T) {
	x, y := xorData()
	cfg := DefaultConfig(2, 3, 2)
	cfg.LearningRate = 1e-9
	path := filepath.Join(t.TempDir(), "best.gob")
	ckpt := NewModelCheckpoint(path)
	n := mustNew(t, cfg, WithCallbacks(ckpt))

	for run := 0; run < 2; run++ {
		if _, err := n.Run(context.Background(), x, y, x, y, 1, false); err != nil {
			t.Fatalf("run %d: Run() error: %v", run, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("run %d: Load() error: %v", run, err)
		}
		want, got := n.Params(), loaded.Params()
		if len(got) != len(want) {
			t.Fatalf("run %d: loaded %d params, want %d", run, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: param %d = %v, want %v", run, i, got[i], want[i])
			}
		}
		if err := os.Remove(path); err != nil {
			t.Fatalf("Remove() error: %v", err)
		}
	}
}

// TestSaveLoad tests gob persistence.
func TestSaveLoad(t *testing.T) {
	cfg := DefaultConfig(3, 4, 2)
	cfg.Bias = 0.5
	cfg.Seed = 21
	n := mustNew(t, cfg)

	path := filepath.Join(t.TempDir(), "mlp.gob")
	if err := n.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	x := []float64{0.3, -0.2, 0.8}
	want := append([]float64(nil), n.Forward(x)...)
	got := loaded.Forward(x)
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("output[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if loaded.Config().Bias != 0.5 {
		t.Errorf("bias = %v, want 0.5", loaded.Config().Bias)
	}

	if _, err := Decode(strings.NewReader("garbage")); err == nil {
		t.Error("Decode of garbage should fail")
	}
}

// TestCSVLogger tests the per-epoch CSV output.
func TestCSVLogger(t *testing.T) {
	x, y := xorData()
	path := filepath.Join(t.TempDir(), "history.csv")
	logger := NewCSVLogger(path, false)
	n := mustNew(t, DefaultConfig(2, 3, 2), WithCallbacks(logger))

	if _, err := n.Run(context.Background(), x, y, x, y, 4, false); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := logger.Err(); err != nil {
		t.Fatalf("logger error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "epoch,loss,train_accuracy") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[4], "4,") {
		t.Errorf("last row = %q", lines[4])
	}
}

// TestWeights tests weight extraction for plotting.
func TestWeights(t *testing.T) {
	n := mustNew(t, DefaultConfig(6, 4, 2))

	w, err := n.Weights(0)
	if err != nil {
		t.Fatalf("Weights(0) error: %v", err)
	}
	if r, c := w.Dims(); r != 4 || c != 6 {
		t.Errorf("Weights(0) dims = %dx%d, want 4x6", r, c)
	}
	if _, err := n.Weights(2); !errors.Is(err, ErrDimension) {
		t.Errorf("Weights(2) error = %v, want ErrDimension", err)
	}
}

// TestSummary tests the architecture printout.
func TestSummary(t *testing.T) {
	n := mustNew(t, DefaultConfig(2, 3, 2))
	var buf bytes.Buffer
	n.Summary(&buf)
	if !strings.Contains(buf.String(), "Total params: 17") {
		t.Errorf("summary missing param count:\n%s", buf.String())
	}
}
