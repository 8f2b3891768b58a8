// Package annt is the public entry point to the multilayer perceptron, its
// data helpers and the result plots.
package annt

import (
	"math/rand"

	"github.com/FlavioCFOliveira/annt/internal/activations"
	"github.com/FlavioCFOliveira/annt/internal/dataset"
	"github.com/FlavioCFOliveira/annt/internal/loss"
	"github.com/FlavioCFOliveira/annt/internal/net"
	"github.com/FlavioCFOliveira/annt/internal/opt"
	"github.com/FlavioCFOliveira/annt/internal/plot"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Re-export common types and functions for easier access
type (
	Config               = net.Config
	MultilayerPerceptron = net.MultilayerPerceptron
	History              = net.History
	EpochStats           = net.EpochStats
	Option               = net.Option
	Activation           = activations.Activation
	Optimizer            = opt.Optimizer
	Loss                 = loss.Loss
	Dataset              = dataset.Dataset
)

var (
	ErrShape     = net.ErrShape
	ErrDimension = net.ErrDimension
)

// Model creation
func DefaultConfig(shape ...int) Config {
	return net.DefaultConfig(shape...)
}

func New(cfg Config, opts ...Option) (*MultilayerPerceptron, error) {
	return net.New(cfg, opts...)
}

func WithLogger(l *zap.Logger) Option { return net.WithLogger(l) }

func WithLoss(l Loss) Option { return net.WithLoss(l) }

func WithOptimizer(o Optimizer) Option { return net.WithOptimizer(o) }

func WithShuffle(shuffle bool) Option { return net.WithShuffle(shuffle) }

func WithCallbacks(cbs ...Callback) Option { return net.WithCallbacks(cbs...) }

// Activations
func ParseActivation(name string) (Activation, error) {
	return activations.Parse(name)
}

// Optimizers
func SGD(lr float64) Optimizer {
	return opt.NewSGD(lr)
}

func Momentum(lr, mu float64) Optimizer {
	return opt.NewMomentum(lr, mu)
}

func StepLR(optimizer Optimizer, stepSize int, gamma float64) opt.Scheduler {
	return opt.NewStepLR(optimizer, stepSize, gamma)
}

// Losses
var (
	MSE = loss.MSE{}
	SSE = loss.SSE{}
)

// Callbacks
type Callback = net.Callback

func Logger(interval int) net.Logger {
	return net.Logger{Interval: interval}
}

func ModelCheckpoint(filename string) net.Callback {
	return net.NewModelCheckpoint(filename)
}

func EarlyStopping(patience int, minDelta float64) *net.EarlyStopping {
	return net.NewEarlyStopping(patience, minDelta)
}

func CSVLogger(filename string) *net.CSVLogger {
	return net.NewCSVLogger(filename, false)
}

func SchedulerCallback(scheduler opt.Scheduler) net.Callback {
	return net.NewSchedulerCallback(scheduler)
}

// Model Persistence
func Load(filename string, opts ...Option) (*MultilayerPerceptron, error) {
	return net.Load(filename, opts...)
}

// Data
func OneHot(labels []int, classes int) (*mat.Dense, error) {
	return dataset.OneHot(labels, classes)
}

func LoadMNIST(dir string, nTrain, nTest int) (train, test *Dataset, err error) {
	return dataset.LoadMNIST(dir, nTrain, nTest)
}

func LoadCSV(filename string, labelCol int, hasHeader bool) (*Dataset, error) {
	return dataset.LoadCSV(filename, labelCol, hasHeader)
}

func Synthetic(n int, noise float64, rng *rand.Rand) *Dataset {
	return dataset.Synthetic(n, noise, rng)
}

func Normalize(m *mat.Dense, scale float64) {
	dataset.Normalize(m, scale)
}

// Plots
type (
	EpochOptions   = plot.EpochOptions
	WeightOptions  = plot.WeightOptions
	SurfaceOptions = plot.SurfaceOptions
)

func PlotEpoch(opts EpochOptions) (string, error) {
	return plot.Epoch(opts)
}

func PlotWeights(weights *mat.Dense, nrows, ncols int, shape [2]int, opts WeightOptions) (string, error) {
	return plot.Weights(weights, nrows, ncols, shape, opts)
}

func MakeGrid(points [][3]float64) (x, y, z *mat.Dense, err error) {
	return plot.MakeGrid(points)
}

func PlotSurface(x, y, z *mat.Dense, opts SurfaceOptions) (string, error) {
	return plot.Surface(x, y, z, opts)
}
