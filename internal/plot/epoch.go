package plot

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	// ErrLegend is returned for an unknown legend location.
	ErrLegend = errors.New("unknown legend location")
	// ErrRange reports a value that cannot be drawn, such as a negative
	// error bar or a non-positive point on a log axis.
	ErrRange = errors.New("value out of range")
)

// EpochOptions configures Epoch.
type EpochOptions struct {
	// YSeries holds one series per curve; point i is plotted at epoch i+1.
	YSeries [][]float64
	// SeriesNames labels each series in the legend. Optional.
	SeriesNames []string
	// YErrs holds a symmetric error per point. When set, every series is
	// drawn as a line with error bars instead of a scatter. On a log axis a
	// lower bar that would reach zero is cut at a tenth of the point.
	YErrs [][]float64

	YLabel string
	Title  string
	// Semilog uses a logarithmic y axis.
	Semilog bool
	// LegendLocation is one of best, upper left, upper right, lower left
	// or lower right. Empty means best.
	LegendLocation string
	// OutPath is the output file. Empty writes a PNG to the temp directory.
	OutPath string
}

// Epoch plots one or more series against the epoch number and returns the
// path of the written figure.
func Epoch(opts EpochOptions) (string, error) {
	if len(opts.YSeries) == 0 {
		return "", ErrNoData
	}
	if opts.YErrs != nil && len(opts.YErrs) != len(opts.YSeries) {
		return "", fmt.Errorf("%w: %d error series for %d series", ErrMismatch, len(opts.YErrs), len(opts.YSeries))
	}
	if opts.SeriesNames != nil && len(opts.SeriesNames) != len(opts.YSeries) {
		return "", fmt.Errorf("%w: %d names for %d series", ErrMismatch, len(opts.SeriesNames), len(opts.YSeries))
	}

	maxLen := 0
	for i, y := range opts.YSeries {
		maxLen = max(maxLen, len(y))
		if opts.YErrs != nil && len(opts.YErrs[i]) != len(y) {
			return "", fmt.Errorf("%w: series %d has %d points and %d errors", ErrMismatch, i, len(y), len(opts.YErrs[i]))
		}
		if opts.YErrs != nil {
			for _, e := range opts.YErrs[i] {
				if !(e >= 0) {
					return "", fmt.Errorf("%w: series %d has error %g", ErrRange, i, e)
				}
			}
		}
		if opts.Semilog {
			for _, v := range y {
				if !(v > 0) {
					return "", fmt.Errorf("%w: series %d has value %g on a log axis", ErrRange, i, v)
				}
			}
		}
	}
	if maxLen == 0 {
		return "", ErrNoData
	}

	p := newPlot()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = opts.YLabel
	p.X.Min, p.X.Max = 1, float64(maxLen)
	if opts.Semilog {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if err := placeLegend(&p.Legend, opts.LegendLocation); err != nil {
		return "", err
	}

	colors, err := seriesColors(len(opts.YSeries))
	if err != nil {
		return "", err
	}
	for i, y := range opts.YSeries {
		pts := epochXYs(y)
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return "", fmt.Errorf("series %d: %w", i, err)
		}
		sc.GlyphStyle.Color = colors[i]
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(3)

		thumbs := []plot.Thumbnailer{sc}
		if opts.YErrs != nil {
			l, err := plotter.NewLine(pts)
			if err != nil {
				return "", fmt.Errorf("series %d: %w", i, err)
			}
			l.LineStyle.Color = colors[i]
			l.LineStyle.Width = vg.Points(1.5)

			bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: yErrors(y, opts.YErrs[i], opts.Semilog)})
			if err != nil {
				return "", fmt.Errorf("series %d: %w", i, err)
			}
			bars.LineStyle.Color = colors[i]
			p.Add(l, bars)
			thumbs = append(thumbs, l)
		}
		p.Add(sc)
		if opts.SeriesNames != nil {
			p.Legend.Add(opts.SeriesNames[i], thumbs...)
		}
	}

	return render(opts.OutPath, func(dc draw.Canvas) { p.Draw(dc) })
}

func epochXYs(y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(y))
	for i, v := range y {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	return pts
}

// yErrors builds symmetric bars. With logY set the lower bar never goes
// below y/10, since y-err must stay positive on a log scale.
func yErrors(y, e []float64, logY bool) plotter.YErrors {
	out := make(plotter.YErrors, len(e))
	for i, v := range e {
		out[i].Low, out[i].High = v, v
		if logY && y[i]-v < y[i]/10 {
			out[i].Low = y[i] - y[i]/10
		}
	}
	return out
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// seriesColors samples n colours from [0, 0.9] of a diverging colour map.
func seriesColors(n int) ([]color.Color, error) {
	cm := moreland.SmoothBlueRed()
	cm.SetMax(1)
	cm.SetMin(0)

	at := []float64{0}
	if n > 1 {
		at = floats.Span(make([]float64, n), 0, 0.9)
	}
	out := make([]color.Color, n)
	for i, v := range at {
		c, err := cm.At(v)
		if err != nil {
			return nil, fmt.Errorf("sampling colour map: %w", err)
		}
		out[i] = c
	}
	return out, nil
}

func placeLegend(l *plot.Legend, loc string) error {
	switch strings.ToLower(strings.TrimSpace(loc)) {
	case "", "best", "upper right":
		l.Top, l.Left = true, false
	case "upper left":
		l.Top, l.Left = true, true
	case "lower left":
		l.Top, l.Left = false, true
	case "lower right":
		l.Top, l.Left = false, false
	default:
		return fmt.Errorf("%w: %q", ErrLegend, loc)
	}
	return nil
}
