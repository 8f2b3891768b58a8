package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/FlavioCFOliveira/annt/internal/plot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the per-epoch mean and population standard deviation of an
// accuracy curve over repeated runs.
type Stats struct {
	Mean []float64
	Std  []float64
}

// Summary is the result of Bulk. Test is empty without a test set.
type Summary struct {
	Train Stats
	Test  Stats
}

// Bulk trains niters independent networks with the same parameters and
// summarises their accuracy curves. Networks run concurrently, at most
// o.Workers at a time. Iteration i is seeded with p.Seed+i, so a fixed seed
// gives reproducible statistics.
func Bulk(ctx context.Context, d Data, p Params, niters int, o Options) (Summary, error) {
	if niters <= 0 {
		return Summary{}, fmt.Errorf("%w: %d iterations", ErrData, niters)
	}
	logger := o.logger()
	base := p.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	train := make([][]float64, niters)
	test := make([][]float64, niters)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())
	for i := 0; i < niters; i++ {
		i := i
		g.Go(func() error {
			if o.Verbose {
				logger.Info("executing iteration", zap.Int("iteration", i+1), zap.Int("of", niters))
			}
			q := p
			q.Seed = base + int64(i)
			var err error
			train[i], test[i], err = Main(gctx, d, q, Options{
				Logger:     logger.With(zap.Int("iteration", i+1)),
				NetOptions: o.NetOptions,
			})
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{Train: summarize(train), Test: summarize(test)}
	if o.Plot {
		series, errs, names := [][]float64{s.Train.Mean}, [][]float64{s.Train.Std}, []string{"Train"}
		if len(s.Test.Mean) > 0 {
			series = append(series, s.Test.Mean)
			errs = append(errs, s.Test.Std)
			names = append(names, "Test")
		}
		path, err := plot.Epoch(plot.EpochOptions{
			YSeries:        series,
			YErrs:          errs,
			SeriesNames:    names,
			YLabel:         "Accuracy [%]",
			Title:          "MLP - Stats Example",
			LegendLocation: "upper left",
			OutPath:        o.OutPath,
		})
		if err != nil {
			return s, fmt.Errorf("plotting results: %w", err)
		}
		logger.Info("saved plot", zap.String("path", path))
	}
	return s, nil
}

// summarize computes column statistics over runs. Runs stopped early are
// compared over the epochs all of them completed.
func summarize(runs [][]float64) Stats {
	epochs := -1
	for _, r := range runs {
		if epochs < 0 || len(r) < epochs {
			epochs = len(r)
		}
	}
	if epochs <= 0 {
		return Stats{}
	}

	s := Stats{Mean: make([]float64, epochs), Std: make([]float64, epochs)}
	col := make([]float64, len(runs))
	for e := 0; e < epochs; e++ {
		for i, r := range runs {
			col[i] = r[e]
		}
		s.Mean[e], s.Std[e] = stat.PopMeanStdDev(col, nil)
	}
	return s
}
