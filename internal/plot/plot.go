// Package plot renders training results with gonum/plot: accuracy curves per
// epoch, grids of learned weights and surfaces over two hyperparameters.
//
// Every figure is 19.20x10.80 inches. Raster formats are written at 100 dpi;
// the output format follows the file extension.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figWidth  = 19.20 * vg.Inch
	figHeight = 10.80 * vg.Inch
	figDPI    = 100
)

var (
	// ErrNoData is returned when there is nothing to plot.
	ErrNoData = errors.New("no data to plot")
	// ErrMismatch reports series, errors or names of different lengths.
	ErrMismatch = errors.New("mismatched plot inputs")
	// ErrFormat reports an output extension no backend can write.
	ErrFormat = errors.New("unsupported image format")
)

// newPlot returns a plot with the common styling.
func newPlot() *plot.Plot {
	p := plot.New()
	p.X.Padding, p.Y.Padding = 0, 0
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.Legend.TextStyle.Font.Size = vg.Points(12)
	p.Add(plotter.NewGrid())
	return p
}

// render draws a figure with fn and writes it to path. An empty path writes
// a uniquely named PNG under the OS temp directory. The written path is returned.
func render(path string, fn func(dc draw.Canvas)) (string, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "annt-"+uuid.NewString()+".png")
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	var w io.WriterTo
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		c := vgimg.NewWith(vgimg.UseWH(figWidth, figHeight), vgimg.UseDPI(figDPI))
		fn(draw.New(c))
		switch format {
		case "png":
			w = vgimg.PngCanvas{Canvas: c}
		case "jpg", "jpeg":
			w = vgimg.JpegCanvas{Canvas: c}
		default:
			w = vgimg.TiffCanvas{Canvas: c}
		}
	default:
		c, err := draw.NewFormattedCanvas(figWidth, figHeight, format)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrFormat, format)
		}
		fn(draw.New(c))
		w = c
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating plot directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating plot file: %w", err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// drawTitle writes a figure title across the top of dc and returns the
// canvas left below it.
func drawTitle(dc draw.Canvas, title string) draw.Canvas {
	if title == "" {
		return dc
	}
	sty := newPlot().Title.TextStyle
	sty.Font.Size = vg.Points(20)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop

	pad := vg.Points(10)
	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - pad}, title)
	return draw.Crop(dc, 0, 0, 0, -(sty.Height(title) + 2*pad))
}

// grayscale is a black to white palette with n levels.
type grayscale int

func (n grayscale) Colors() []color.Color {
	c := make([]color.Color, n)
	for i := range c {
		c[i] = color.Gray{Y: uint8(255 * i / (int(n) - 1))}
	}
	return c
}

// solid is a single colour palette.
type solid struct{ color.Color }

func (s solid) Colors() []color.Color { return []color.Color{s.Color} }
