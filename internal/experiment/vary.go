package experiment

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/FlavioCFOliveira/annt/internal/plot"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Sweep is a family of hidden layer shapes compared in one pair of figures.
type Sweep struct {
	// Name prefixes the figure files: <Name>-train.png and <Name>-test.png.
	Name string
	// Label describes the depth in the figure title, e.g. "Single".
	Label  string
	Shapes [][]int
}

// DefaultSweeps varies a single hidden layer over 25..250 nodes, then the
// second of two layers over 10..100 and the third of three over 5..50.
func DefaultSweeps() []Sweep {
	return []Sweep{
		{Name: "single", Label: "Single", Shapes: shapes(nil, 25, 250, 10)},
		{Name: "double", Label: "Double", Shapes: shapes([]int{250}, 10, 100, 10)},
		{Name: "triple", Label: "Triple", Shapes: shapes([]int{250, 100}, 5, 50, 10)},
	}
}

// shapes appends each of n evenly spaced node counts in [lo, hi] to prefix.
func shapes(prefix []int, lo, hi float64, n int) [][]int {
	out := make([][]int, n)
	for i, v := range floats.Span(make([]float64, n), lo, hi) {
		s := append(append([]int(nil), prefix...), int(math.Round(v)))
		out[i] = s
	}
	return out
}

// VaryParams runs Bulk with niters iterations for every shape of every sweep
// and saves a training and a testing figure per sweep under outDir, which is
// created when missing. It returns the written files. The first failing run
// aborts the sweep.
func VaryParams(ctx context.Context, d Data, p Params, outDir string, niters int, o Options) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	logger := o.logger()
	sweeps := o.Sweeps
	if sweeps == nil {
		sweeps = DefaultSweeps()
	}

	var written []string
	for _, sw := range sweeps {
		logger.Info("varying hidden layers", zap.String("sweep", sw.Name), zap.Int("shapes", len(sw.Shapes)))

		var (
			trainMean, trainStd [][]float64
			testMean, testStd   [][]float64
			names               []string
		)
		for i, shape := range sw.Shapes {
			if o.Verbose {
				logger.Info("executing iteration", zap.Int("iteration", i+1), zap.Int("of", len(sw.Shapes)), zap.Ints("hidden", shape))
			}
			q := p
			q.Hidden = shape
			s, err := Bulk(ctx, d, q, niters, Options{
				Logger:     logger,
				NetOptions: o.NetOptions,
				Workers:    o.Workers,
			})
			if err != nil {
				return written, fmt.Errorf("%s sweep, shape %v: %w", sw.Name, shape, err)
			}
			trainMean, trainStd = append(trainMean, s.Train.Mean), append(trainStd, s.Train.Std)
			testMean, testStd = append(testMean, s.Test.Mean), append(testStd, s.Test.Std)
			names = append(names, fmt.Sprintf("Shape = %v", shape))
		}

		figures := []struct {
			kind, title string
			mean, std   [][]float64
		}{
			{"train", "Training", trainMean, trainStd},
			{"test", "Testing", testMean, testStd},
		}
		for _, f := range figures {
			if d.Test == nil && f.kind == "test" {
				continue
			}
			path, err := plot.Epoch(plot.EpochOptions{
				YSeries:        f.mean,
				YErrs:          f.std,
				SeriesNames:    names,
				YLabel:         "Accuracy [%]",
				Title:          fmt.Sprintf("MLP - %s\n%d Iterations, %s Hidden Layer", f.title, niters, sw.Label),
				LegendLocation: "upper left",
				OutPath:        filepath.Join(outDir, sw.Name+"-"+f.kind+".png"),
			})
			if err != nil {
				return written, fmt.Errorf("plotting %s sweep: %w", sw.Name, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}
