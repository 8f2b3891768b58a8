// Package net implements the multilayer perceptron: forward pass, error
// back-propagation, the weight update rule and the epoch training loop.
package net

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/FlavioCFOliveira/annt/internal/activations"
	"github.com/FlavioCFOliveira/annt/internal/layer"
	"github.com/FlavioCFOliveira/annt/internal/loss"
	"github.com/FlavioCFOliveira/annt/internal/opt"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape reports an unusable network configuration.
	ErrShape = errors.New("invalid network configuration")
	// ErrDimension reports data whose size does not fit the network.
	ErrDimension = errors.New("dimension mismatch")
)

// Config holds the hyperparameters of a MultilayerPerceptron.
type Config struct {
	// Shape lists the node count of every layer: input, hidden..., output.
	Shape []int `yaml:"shape"`
	// Bias is the constant bias input. 0 disables the bias.
	Bias         float64 `yaml:"bias"`
	LearningRate float64 `yaml:"learning_rate"`
	MinWeight    float64 `yaml:"min_weight"`
	MaxWeight    float64 `yaml:"max_weight"`
	// HiddenActivation and OutputActivation are names accepted by activations.Parse.
	HiddenActivation string `yaml:"hidden_activation"`
	OutputActivation string `yaml:"output_activation"`
	// Seed for weight initialisation and shuffling. 0 picks a time based seed.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the stock hyperparameters for the given shape.
func DefaultConfig(shape ...int) Config {
	return Config{
		Shape:            shape,
		Bias:             1,
		LearningRate:     0.001,
		MinWeight:        -1,
		MaxWeight:        1,
		HiddenActivation: "sigmoid",
		OutputActivation: "sigmoid",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Shape) < 2 {
		return fmt.Errorf("%w: shape %v needs at least an input and an output layer", ErrShape, c.Shape)
	}
	for i, n := range c.Shape {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has %d nodes", ErrShape, i, n)
		}
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate %v must be positive", ErrShape, c.LearningRate)
	}
	if c.MinWeight >= c.MaxWeight {
		return fmt.Errorf("%w: min weight %v must be below max weight %v", ErrShape, c.MinWeight, c.MaxWeight)
	}
	if _, err := activations.Parse(c.HiddenActivation); err != nil {
		return fmt.Errorf("%w: hidden activation: %w", ErrShape, err)
	}
	if _, err := activations.Parse(c.OutputActivation); err != nil {
		return fmt.Errorf("%w: output activation: %w", ErrShape, err)
	}
	return nil
}

// Option customises a MultilayerPerceptron.
type Option func(*MultilayerPerceptron)

// WithLogger sets the logger used for epoch reports and callbacks.
func WithLogger(l *zap.Logger) Option {
	return func(n *MultilayerPerceptron) { n.logger = l }
}

// WithLoss replaces the default SSE loss.
func WithLoss(l loss.Loss) Option {
	return func(n *MultilayerPerceptron) { n.loss = l }
}

// WithOptimizer replaces the default SGD optimizer.
func WithOptimizer(o opt.Optimizer) Option {
	return func(n *MultilayerPerceptron) { n.opt = o }
}

// WithShuffle presents training samples in a new random order every epoch.
func WithShuffle(shuffle bool) Option {
	return func(n *MultilayerPerceptron) { n.shuffle = shuffle }
}

// WithCallbacks registers training callbacks.
func WithCallbacks(cbs ...Callback) Option {
	return func(n *MultilayerPerceptron) { n.callbacks = append(n.callbacks, cbs...) }
}

// MultilayerPerceptron is a feed-forward network trained online with
// back-propagation. It is not safe for concurrent use.
type MultilayerPerceptron struct {
	cfg       Config
	layers    []*layer.Dense
	loss      loss.Loss
	opt       opt.Optimizer
	rng       *rand.Rand
	logger    *zap.Logger
	shuffle   bool
	callbacks []Callback
	stop      bool

	// Pre-allocated gradient buffer for training
	lossGradBuf []float64
}

// New creates a network from cfg.
func New(cfg Config, opts ...Option) (*MultilayerPerceptron, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hidden, _ := activations.Parse(cfg.HiddenActivation)
	output, _ := activations.Parse(cfg.OutputActivation)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	n := &MultilayerPerceptron{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		loss:   loss.SSE{},
		logger: zap.NewNop(),
	}
	n.cfg.Shape = append([]int(nil), cfg.Shape...)

	last := len(cfg.Shape) - 2
	for i := 0; i <= last; i++ {
		act := hidden
		if i == last {
			act = output
		}
		n.layers = append(n.layers, layer.NewDense(cfg.Shape[i], cfg.Shape[i+1], act,
			cfg.Bias, cfg.MinWeight, cfg.MaxWeight, n.rng))
	}

	for _, o := range opts {
		o(n)
	}
	if n.opt == nil {
		n.opt = opt.NewSGD(cfg.LearningRate)
	}
	return n, nil
}

// Config returns the configuration the network was built with.
func (n *MultilayerPerceptron) Config() Config {
	cfg := n.cfg
	cfg.Shape = append([]int(nil), n.cfg.Shape...)
	return cfg
}

// Layers returns the network's layers, input side first.
func (n *MultilayerPerceptron) Layers() []*layer.Dense {
	return n.layers
}

// InputSize returns the number of input features.
func (n *MultilayerPerceptron) InputSize() int {
	return n.cfg.Shape[0]
}

// OutputSize returns the number of output nodes.
func (n *MultilayerPerceptron) OutputSize() int {
	return n.cfg.Shape[len(n.cfg.Shape)-1]
}

// Logger returns the network's logger.
func (n *MultilayerPerceptron) Logger() *zap.Logger {
	return n.logger
}

// Optimizer returns the optimizer applying weight updates.
func (n *MultilayerPerceptron) Optimizer() opt.Optimizer {
	return n.opt
}

// Forward performs a forward pass through all layers.
// The returned slice is reused by the next call. It panics if len(x)
// differs from the input layer size.
func (n *MultilayerPerceptron) Forward(x []float64) []float64 {
	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr
}

// Backward propagates the loss gradient from the output to the input layer.
func (n *MultilayerPerceptron) Backward(grad []float64) []float64 {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
	}
	return curr
}

// Predict returns the index of the most active output node.
func (n *MultilayerPerceptron) Predict(x []float64) int {
	return floats.MaxIdx(n.Forward(x))
}

// Step performs one online training step on a single sample and returns
// the sample loss measured before the update.
func (n *MultilayerPerceptron) Step(x, y []float64) float64 {
	yPred := n.Forward(x)
	l := n.loss.Forward(yPred, y)

	yPredLen := len(yPred)
	if cap(n.lossGradBuf) < yPredLen {
		n.lossGradBuf = make([]float64, yPredLen)
	}
	grad := n.lossGradBuf[:yPredLen]

	if backwardInPlace, ok := n.loss.(loss.BackwardInPlacer); ok {
		backwardInPlace.BackwardInPlace(yPred, y, grad)
	} else {
		grad = n.loss.Backward(yPred, y)
	}

	n.Backward(grad)

	for _, ly := range n.layers {
		n.opt.StepInPlace(ly.Params(), ly.Gradients())
	}
	return l
}

// Score returns the fraction of rows of data whose predicted class matches
// the one-hot row of labels.
func (n *MultilayerPerceptron) Score(data, labels *mat.Dense) (float64, error) {
	if err := n.checkData(data, labels); err != nil {
		return 0, err
	}
	rows, _ := data.Dims()
	if rows == 0 {
		return 0, nil
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if n.Predict(data.RawRowView(i)) == floats.MaxIdx(labels.RawRowView(i)) {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}

func (n *MultilayerPerceptron) checkData(data, labels *mat.Dense) error {
	if data == nil || labels == nil {
		return fmt.Errorf("%w: missing data or labels", ErrDimension)
	}
	dr, dc := data.Dims()
	lr, lc := labels.Dims()
	switch {
	case dc != n.InputSize():
		return fmt.Errorf("%w: data has %d features, network expects %d", ErrDimension, dc, n.InputSize())
	case lc != n.OutputSize():
		return fmt.Errorf("%w: labels have %d columns, network has %d outputs", ErrDimension, lc, n.OutputSize())
	case dr != lr:
		return fmt.Errorf("%w: %d samples but %d labels", ErrDimension, dr, lr)
	}
	return nil
}

// StopTraining asks Run to finish after the current epoch.
func (n *MultilayerPerceptron) StopTraining() {
	n.stop = true
}

// Run trains the network for nepochs epochs, scoring the training and test
// sets after each one. test and testLabels may both be nil.
//
// Cancelling ctx stops training between epochs; the history collected so far
// is returned together with the context error.
func (n *MultilayerPerceptron) Run(ctx context.Context, train, trainLabels, test, testLabels *mat.Dense, nepochs int, verbose bool) (*History, error) {
	if nepochs < 0 {
		return nil, fmt.Errorf("%w: negative epoch count %d", ErrShape, nepochs)
	}
	if err := n.checkData(train, trainLabels); err != nil {
		return nil, fmt.Errorf("training set: %w", err)
	}
	hasTest := test != nil || testLabels != nil
	if hasTest {
		if err := n.checkData(test, testLabels); err != nil {
			return nil, fmt.Errorf("test set: %w", err)
		}
	}

	rows, _ := train.Dims()
	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}

	hist := newHistory(nepochs, hasTest)
	n.stop = false
	start := time.Now()
	level := zap.DebugLevel
	if verbose {
		level = zap.InfoLevel
	}

	for _, cb := range n.callbacks {
		cb.OnTrainBegin(n)
	}
	defer func() {
		for _, cb := range n.callbacks {
			cb.OnTrainEnd(n)
		}
	}()

	for epoch := 1; epoch <= nepochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return hist, err
		}
		for _, cb := range n.callbacks {
			cb.OnEpochBegin(epoch, n)
		}

		if n.shuffle {
			n.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var total float64
		for _, i := range order {
			total += n.Step(train.RawRowView(i), trainLabels.RawRowView(i))
		}

		stats := EpochStats{
			Epoch:        epoch,
			LearningRate: n.opt.LearningRate(),
			Elapsed:      time.Since(start),
		}
		if rows > 0 {
			stats.Loss = total / float64(rows)
		}
		// Score only fails on shape errors, which were rejected above.
		stats.TrainAccuracy, _ = n.Score(train, trainLabels)
		if hasTest {
			stats.TestAccuracy, _ = n.Score(test, testLabels)
		}
		hist.add(stats)

		if ce := n.logger.Check(level, "epoch complete"); ce != nil {
			ce.Write(
				zap.Int("epoch", epoch),
				zap.Float64("loss", stats.Loss),
				zap.Float64("train_accuracy", stats.TrainAccuracy*100),
				zap.Float64("test_accuracy", stats.TestAccuracy*100),
			)
		}

		for _, cb := range n.callbacks {
			cb.OnEpochEnd(stats, n)
		}
		if n.stop {
			break
		}
	}

	return hist, nil
}

// Weights returns a copy of the incoming weights of layer i (0 is the first
// hidden layer), one row per node, bias excluded.
func (n *MultilayerPerceptron) Weights(i int) (*mat.Dense, error) {
	if i < 0 || i >= len(n.layers) {
		return nil, fmt.Errorf("%w: layer %d out of range [0, %d)", ErrDimension, i, len(n.layers))
	}
	return n.layers[i].Weights(), nil
}

// Params returns all network parameters flattened (copy).
func (n *MultilayerPerceptron) Params() []float64 {
	var params []float64
	for _, l := range n.layers {
		params = append(params, l.Params()...)
	}
	return params
}
