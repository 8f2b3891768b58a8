package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/FlavioCFOliveira/annt/internal/dataset"
	"github.com/FlavioCFOliveira/annt/internal/experiment"
	"github.com/FlavioCFOliveira/annt/internal/net"
	"github.com/FlavioCFOliveira/annt/internal/opt"
	"github.com/FlavioCFOliveira/annt/internal/plot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	plotOut     string
	iterations  int
	outDir      string
	savePath    string
	weightsPlot string
)

// basicCmd trains a single network and plots its accuracy
var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Train one network and plot train/test accuracy per epoch",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _, err := loadData()
		if err != nil {
			return err
		}
		train, test, err := experiment.Main(cmd.Context(), data, cfg.Params(), options(true))
		if err != nil {
			return err
		}
		logResult(train, test)
		return nil
	},
}

// bulkCmd repeats training for mean and standard deviation per epoch
var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Train several networks and plot mean accuracy with error bars",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _, err := loadData()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("iterations") {
			cfg.Experiment.Iterations = iterations
		}
		s, err := experiment.Bulk(cmd.Context(), data, cfg.Params(), cfg.Experiment.Iterations, options(false))
		if err != nil {
			return err
		}
		logResult(s.Train.Mean, s.Test.Mean)
		return nil
	},
}

// varyCmd sweeps hidden layer shapes
var varyCmd = &cobra.Command{
	Use:   "vary",
	Short: "Sweep one, two and three hidden layer shapes and save the plots",
	Long: `Runs bulk statistics for every shape of three sweeps:
  - one hidden layer of 25..250 nodes
  - [250, 10..100]
  - [250, 100, 5..50]
and saves single|double|triple-train|test.png under --out-dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _, err := loadData()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("iterations") {
			cfg.Experiment.Iterations = iterations
		}
		if cmd.Flags().Changed("out-dir") {
			cfg.Experiment.OutDir = outDir
		}
		written, err := experiment.VaryParams(cmd.Context(), data, cfg.Params(), cfg.Experiment.OutDir,
			cfg.Experiment.Iterations, options(false))
		if err != nil {
			return err
		}
		logger.Info("sweep complete", zap.Strings("plots", written))
		return nil
	},
}

// trainCmd trains one network and keeps it
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train one network, print its summary and optionally save it",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, train, err := loadData()
		if err != nil {
			return err
		}
		n, hist, err := experiment.Run(cmd.Context(), data, cfg.Params(), options(true))
		if err != nil {
			return err
		}
		n.Summary(cmd.OutOrStdout())
		trainAcc, testAcc := hist.Percent()
		logResult(trainAcc, testAcc)

		if savePath != "" {
			if err := n.Save(savePath); err != nil {
				return err
			}
			logger.Info("saved model", zap.String("path", savePath))
		}
		if weightsPlot != "" {
			path, err := plotWeights(n, train, weightsPlot)
			if err != nil {
				return err
			}
			logger.Info("saved weights plot", zap.String("path", path))
		}
		return nil
	},
}

func init() {
	basicCmd.Flags().StringVar(&plotOut, "out", "", "plot file (default: temp file)")
	bulkCmd.Flags().StringVar(&plotOut, "out", "", "plot file (default: temp file)")
	bulkCmd.Flags().IntVar(&iterations, "iterations", 10, "networks to train")
	varyCmd.Flags().IntVar(&iterations, "iterations", 10, "networks per shape")
	varyCmd.Flags().StringVar(&outDir, "out-dir", "plots", "directory for the sweep plots")
	trainCmd.Flags().StringVar(&savePath, "save", "", "save the trained model to this file")
	trainCmd.Flags().StringVar(&weightsPlot, "weights-plot", "", "plot the first hidden layer's weights to this file")
}

// options builds experiment options from the configuration. single enables
// the per-run CSV log and checkpoint files, which concurrent runs would share.
func options(single bool) experiment.Options {
	o := experiment.Options{
		Logger:     logger,
		Verbose:    verbose,
		Plot:       cfg.Experiment.Plot,
		OutPath:    cfg.Experiment.PlotPath,
		Workers:    cfg.Experiment.Workers,
		NetOptions: netOptions(single),
	}
	if plotOut != "" {
		o.OutPath = plotOut
	}
	return o
}

func netOptions(single bool) func() []net.Option {
	t := cfg.Training
	lr := cfg.Network.LearningRate
	return func() []net.Option {
		var o opt.Optimizer = opt.NewSGD(lr)
		if t.Momentum > 0 {
			o = opt.NewMomentum(lr, t.Momentum)
		}

		var cbs []net.Callback
		if t.LRStep > 0 {
			cbs = append(cbs, net.NewSchedulerCallback(opt.NewStepLR(o, t.LRStep, t.LRGamma)))
		}
		if t.Patience > 0 {
			cbs = append(cbs, net.NewEarlyStopping(t.Patience, t.MinDelta))
		}
		if single && t.CSVLog != "" {
			cbs = append(cbs, net.NewCSVLogger(t.CSVLog, false))
		}
		if single && t.Checkpoint != "" {
			cbs = append(cbs, net.NewModelCheckpoint(t.Checkpoint))
		}
		return []net.Option{net.WithOptimizer(o), net.WithCallbacks(cbs...)}
	}
}

// loadData reads the configured data source and scales it to [0, 1].
func loadData() (experiment.Data, *dataset.Dataset, error) {
	var (
		train, test *dataset.Dataset
		err         error
	)
	d := cfg.Data
	switch {
	case d.Synthetic:
		s := cfg.Network.Seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(s))
		train = dataset.Synthetic(orDefault(d.TrainSamples, 800), d.Noise, rng)
		test = dataset.Synthetic(orDefault(d.TestSamples, 200), d.Noise, rng)
	case d.CSV != "":
		if train, test, err = loadCSV(d.CSV, d.TestCSV, d.LabelColumn, d.Header); err != nil {
			return experiment.Data{}, nil, err
		}
		cfg.Network.Classes = train.Classes
	default:
		if train, test, err = dataset.LoadMNIST(d.Dir, d.TrainSamples, d.TestSamples); err != nil {
			return experiment.Data{}, nil, err
		}
		dataset.Normalize(train.X, d.Scale)
		dataset.Normalize(test.X, d.Scale)
	}

	logger.Info("loaded data",
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
		zap.Int("features", train.Features()),
		zap.Int("classes", train.Classes))
	return experiment.DataFrom(train, test), train, nil
}

// loadCSV reads a training file and an optional test file. Without a test
// file the last fifth of the training rows is held out.
func loadCSV(trainPath, testPath string, labelCol int, header bool) (train, test *dataset.Dataset, err error) {
	all, err := dataset.LoadCSV(trainPath, labelCol, header)
	if err != nil {
		return nil, nil, err
	}
	if testPath == "" {
		cut := all.Len() - all.Len()/5
		return split(all, cut)
	}

	test, err = dataset.LoadCSV(testPath, labelCol, header)
	if err != nil {
		return nil, nil, err
	}
	if test.Classes != all.Classes {
		classes := max(all.Classes, test.Classes)
		for _, ds := range []*dataset.Dataset{all, test} {
			if ds.Y, err = dataset.OneHot(ds.Labels, classes); err != nil {
				return nil, nil, err
			}
			ds.Classes = classes
		}
	}
	return all, test, nil
}

func split(d *dataset.Dataset, cut int) (train, test *dataset.Dataset, err error) {
	if cut <= 0 || cut >= d.Len() {
		return nil, nil, fmt.Errorf("%w: %d rows are too few to hold out a test set", dataset.ErrFormat, d.Len())
	}
	return d.Slice(0, cut), d.Slice(cut, d.Len()), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// plotWeights draws the first hidden layer's weights, one tile per node,
// in a near square grid.
func plotWeights(n *net.MultilayerPerceptron, train *dataset.Dataset, path string) (string, error) {
	w, err := n.Weights(0)
	if err != nil {
		return "", err
	}
	nodes, features := w.Dims()
	shape := [2]int{train.Rows, train.Cols}
	if shape[0]*shape[1] != features {
		shape = [2]int{1, features}
	}
	cols := int(math.Ceil(math.Sqrt(float64(nodes))))
	rows := (nodes + cols - 1) / cols
	return plot.Weights(w, rows, cols, shape, plot.WeightOptions{
		Title:   "Hidden layer weights",
		OutPath: path,
	})
}

func logResult(train, test []float64) {
	if len(train) == 0 {
		logger.Warn("no epochs completed")
		return
	}
	fields := []zap.Field{
		zap.Int("epochs", len(train)),
		zap.Float64("train_accuracy", train[len(train)-1]),
	}
	if len(test) > 0 {
		fields = append(fields, zap.Float64("test_accuracy", test[len(test)-1]))
	}
	logger.Info("training complete", fields...)
}
