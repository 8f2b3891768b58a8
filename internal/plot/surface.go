package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SurfaceOptions configures Surface.
type SurfaceOptions struct {
	XLabel string
	YLabel string
	ZLabel string
	Title  string
	// Contours is the number of contour levels. Zero means 10.
	Contours int
	// OutPath is the output file. Empty writes a PNG to the temp directory.
	OutPath string
}

// Surface draws z over the meshgrid (x, y), as returned by MakeGrid, as a
// filled heat map with contour lines and a colour bar for z.
func Surface(x, y, z *mat.Dense, opts SurfaceOptions) (string, error) {
	if x == nil || y == nil || z == nil {
		return "", ErrNoData
	}
	r, c := z.Dims()
	if xr, xc := x.Dims(); xr != r || xc != c {
		return "", fmt.Errorf("%w: x is %dx%d, z is %dx%d", ErrMismatch, xr, xc, r, c)
	}
	if yr, yc := y.Dims(); yr != r || yc != c {
		return "", fmt.Errorf("%w: y is %dx%d, z is %dx%d", ErrMismatch, yr, yc, r, c)
	}
	if r < 2 || c < 2 {
		return "", fmt.Errorf("%w: surface needs at least 2x2 points, got %dx%d", ErrGrid, r, c)
	}

	g := meshGrid{x: x, y: y, z: z}
	zmin, zmax := mat.Min(z), mat.Max(z)
	if zmin == zmax {
		zmax = zmin + 1
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMax(zmax)
	cm.SetMin(zmin)

	p := newPlot()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	hm := plotter.NewHeatMap(g, cm.Palette(255))
	hm.Min, hm.Max = zmin, zmax
	p.Add(hm)

	n := opts.Contours
	if n <= 0 {
		n = 10
	}
	levels := floats.Span(make([]float64, n+2), zmin, zmax)
	p.Add(plotter.NewContour(g, levels[1:n+1], solid{color.Black}))

	bar := plot.New()
	bar.HideX()
	bar.Y.Padding = 0
	bar.Y.Label.Text = opts.ZLabel
	bar.Y.Label.TextStyle.Font.Size = vg.Points(14)
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	const barWidth = 1.2 * vg.Inch
	return render(opts.OutPath, func(dc draw.Canvas) {
		width := dc.Max.X - dc.Min.X
		p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
		bar.Draw(draw.Crop(dc, width-barWidth+vg.Points(10), 0, 0, 0))
	})
}

// meshGrid adapts meshgrid matrices to plotter.GridXYZ.
type meshGrid struct {
	x, y, z *mat.Dense
}

func (g meshGrid) Dims() (c, r int) {
	r, c = g.z.Dims()
	return c, r
}

func (g meshGrid) Z(c, r int) float64 { return g.z.At(r, c) }

func (g meshGrid) X(c int) float64 { return g.x.At(0, c) }

func (g meshGrid) Y(r int) float64 { return g.y.At(r, 0) }
