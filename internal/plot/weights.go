package plot

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrShape reports weights that cannot be reshaped or laid out as asked.
var ErrShape = errors.New("invalid weight layout")

// WeightOptions configures Weights.
type WeightOptions struct {
	// Title is drawn above the whole grid.
	Title string
	// ClusterTitles names each tile. Tiles default to "Node i".
	ClusterTitles []string
	// OutPath is the output file. Empty writes a PNG to the temp directory.
	OutPath string
}

// Weights draws every row of weights as a grayscale image of the given shape
// (rows, cols) in an nrows x ncols grid of tiles.
func Weights(weights *mat.Dense, nrows, ncols int, shape [2]int, opts WeightOptions) (string, error) {
	if weights == nil {
		return "", ErrNoData
	}
	r, c := weights.Dims()
	if shape[0] <= 0 || shape[1] <= 0 || shape[0]*shape[1] != c {
		return "", fmt.Errorf("%w: %d weights per node do not fit %dx%d", ErrShape, c, shape[0], shape[1])
	}
	if nrows <= 0 || ncols <= 0 || r > nrows*ncols {
		return "", fmt.Errorf("%w: %d nodes do not fit a %dx%d grid", ErrShape, r, nrows, ncols)
	}
	if opts.ClusterTitles != nil && len(opts.ClusterTitles) != r {
		return "", fmt.Errorf("%w: %d titles for %d nodes", ErrMismatch, len(opts.ClusterTitles), r)
	}

	tiles := make([]*plot.Plot, r)
	for i := range tiles {
		hm := plotter.NewHeatMap(imageGrid{pix: weights.RawRowView(i), rows: shape[0], cols: shape[1]}, grayscale(256))
		if hm.Min == hm.Max {
			hm.Max = hm.Min + 1
		}
		p := newPlot()
		p.HideAxes()
		p.Add(hm)
		if opts.ClusterTitles != nil {
			p.Title.Text = opts.ClusterTitles[i]
		} else {
			p.Title.Text = fmt.Sprintf("Node %d", i)
		}
		p.Title.TextStyle.Font.Size = vg.Points(10)
		tiles[i] = p
	}

	t := draw.Tiles{
		Rows: nrows,
		Cols: ncols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	return render(opts.OutPath, func(dc draw.Canvas) {
		dc = drawTitle(dc, opts.Title)
		for i, tile := range tiles {
			tile.Draw(t.At(dc, i%ncols, i/ncols))
		}
	})
}

// imageGrid presents a flattened row-major image as a GridXYZ with row 0 at
// the top.
type imageGrid struct {
	pix        []float64
	rows, cols int
}

func (g imageGrid) Dims() (c, r int) { return g.cols, g.rows }

func (g imageGrid) Z(c, r int) float64 { return g.pix[(g.rows-1-r)*g.cols+c] }

func (g imageGrid) X(c int) float64 { return float64(c) }

func (g imageGrid) Y(r int) float64 { return float64(r) }
