// Package experiment drives the multilayer perceptron on labelled image data:
// a single run, statistics over repeated runs and hidden layer sweeps, with
// the results plotted per epoch.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/FlavioCFOliveira/annt/internal/dataset"
	"github.com/FlavioCFOliveira/annt/internal/net"
	"github.com/FlavioCFOliveira/annt/internal/plot"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// ErrData reports missing or inconsistent experiment data.
var ErrData = errors.New("invalid experiment data")

// Data holds the scaled samples and one-hot labels of a train and test split.
// Test and TestLabels may be nil.
type Data struct {
	Train, TrainLabels *mat.Dense
	Test, TestLabels   *mat.Dense
}

// DataFrom pairs two datasets. test may be nil.
func DataFrom(train, test *dataset.Dataset) Data {
	d := Data{Train: train.X, TrainLabels: train.Y}
	if test != nil {
		d.Test, d.TestLabels = test.X, test.Y
	}
	return d
}

// Features returns the number of values per training sample.
func (d Data) Features() (int, error) {
	if d.Train == nil || d.TrainLabels == nil {
		return 0, fmt.Errorf("%w: no training set", ErrData)
	}
	_, c := d.Train.Dims()
	return c, nil
}

// Params are the hyperparameters of one experiment.
type Params struct {
	Epochs int `yaml:"epochs"`
	// Hidden lists the node count of each hidden layer.
	Hidden           []int   `yaml:"hidden_layers"`
	Bias             float64 `yaml:"bias"`
	LearningRate     float64 `yaml:"learning_rate"`
	MinWeight        float64 `yaml:"min_weight"`
	MaxWeight        float64 `yaml:"max_weight"`
	HiddenActivation string  `yaml:"hidden_activation"`
	OutputActivation string  `yaml:"output_activation"`
	Classes          int     `yaml:"classes"`
	Shuffle          bool    `yaml:"shuffle"`
	// Seed makes runs reproducible. 0 picks a time based seed.
	Seed int64 `yaml:"seed"`
}

// DefaultParams returns the stock settings: one hidden layer of 100 sigmoid
// nodes, 10 classes and 100 epochs.
func DefaultParams() Params {
	cfg := net.DefaultConfig()
	return Params{
		Epochs:           100,
		Hidden:           []int{100},
		Bias:             cfg.Bias,
		LearningRate:     cfg.LearningRate,
		MinWeight:        cfg.MinWeight,
		MaxWeight:        cfg.MaxWeight,
		HiddenActivation: cfg.HiddenActivation,
		OutputActivation: cfg.OutputActivation,
		Classes:          10,
	}
}

// Config returns the network configuration for samples with the given
// number of features: [features] + Hidden + [Classes].
func (p Params) Config(features int) net.Config {
	shape := make([]int, 0, len(p.Hidden)+2)
	shape = append(shape, features)
	shape = append(shape, p.Hidden...)
	shape = append(shape, p.Classes)
	return net.Config{
		Shape:            shape,
		Bias:             p.Bias,
		LearningRate:     p.LearningRate,
		MinWeight:        p.MinWeight,
		MaxWeight:        p.MaxWeight,
		HiddenActivation: p.HiddenActivation,
		OutputActivation: p.OutputActivation,
		Seed:             p.Seed,
	}
}

// Options control logging, plotting and concurrency of an experiment.
type Options struct {
	Logger *zap.Logger
	// Verbose logs every epoch and iteration at info level.
	Verbose bool
	// Plot enables the result figure.
	Plot bool
	// OutPath is the figure file. Empty writes a PNG to the temp directory.
	OutPath string
	// NetOptions builds extra options for each new network. It is called
	// once per network, so stateful callbacks and optimizers are not shared.
	NetOptions func() []net.Option
	// Workers bounds concurrent networks in Bulk. 0 means runtime.NumCPU().
	Workers int
	// Sweeps replaces DefaultSweeps in VaryParams.
	Sweeps []Sweep
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// Network builds an untrained network for d.
func Network(d Data, p Params, o Options) (*net.MultilayerPerceptron, error) {
	features, err := d.Features()
	if err != nil {
		return nil, err
	}
	opts := []net.Option{
		net.WithLogger(o.logger()),
		net.WithShuffle(p.Shuffle),
	}
	if o.NetOptions != nil {
		opts = append(opts, o.NetOptions()...)
	}
	return net.New(p.Config(features), opts...)
}

// Run builds a network and trains it on d for p.Epochs epochs.
func Run(ctx context.Context, d Data, p Params, o Options) (*net.MultilayerPerceptron, *net.History, error) {
	n, err := Network(d, p, o)
	if err != nil {
		return nil, nil, err
	}
	hist, err := n.Run(ctx, d.Train, d.TrainLabels, d.Test, d.TestLabels, p.Epochs, o.Verbose)
	return n, hist, err
}

// Main trains one network and returns its train and test accuracy per epoch
// in percent. With o.Plot set both curves are plotted.
func Main(ctx context.Context, d Data, p Params, o Options) (train, test []float64, err error) {
	_, hist, err := Run(ctx, d, p, o)
	if err != nil {
		return nil, nil, err
	}
	train, test = hist.Percent()

	if o.Plot {
		series, names := [][]float64{train}, []string{"Train"}
		if test != nil {
			series, names = append(series, test), append(names, "Test")
		}
		path, err := plot.Epoch(plot.EpochOptions{
			YSeries:        series,
			SeriesNames:    names,
			YLabel:         "Accuracy [%]",
			Title:          "MLP - Example",
			LegendLocation: "upper left",
			OutPath:        o.OutPath,
		})
		if err != nil {
			return train, test, fmt.Errorf("plotting results: %w", err)
		}
		o.logger().Info("saved plot", zap.String("path", path))
	}
	return train, test, nil
}
