package plot

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrGrid is returned when scattered points do not form a complete grid.
var ErrGrid = errors.New("points do not form a complete grid")

// MakeGrid arranges scattered (x, y, z) points into meshgrid matrices.
// Unique x values are sorted along the columns and unique y values along the
// rows, so x.At(i, j) is the j-th smallest x and y.At(i, j) the i-th smallest y.
// Every (x, y) pair must appear exactly once.
func MakeGrid(points [][3]float64) (x, y, z *mat.Dense, err error) {
	if len(points) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no points", ErrGrid)
	}
	xs := uniqueSorted(points, 0)
	ys := uniqueSorted(points, 1)
	nx, ny := len(xs), len(ys)
	if nx*ny != len(points) {
		return nil, nil, nil, fmt.Errorf("%w: %d points for %d x %d values", ErrGrid, len(points), nx, ny)
	}

	x = mat.NewDense(ny, nx, nil)
	y = mat.NewDense(ny, nx, nil)
	z = mat.NewDense(ny, nx, nil)
	seen := make([]bool, nx*ny)
	for _, pt := range points {
		j := sort.SearchFloat64s(xs, pt[0])
		i := sort.SearchFloat64s(ys, pt[1])
		if seen[i*nx+j] {
			return nil, nil, nil, fmt.Errorf("%w: duplicate point (%g, %g)", ErrGrid, pt[0], pt[1])
		}
		seen[i*nx+j] = true
		z.Set(i, j, pt[2])
	}
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			x.Set(i, j, xs[j])
			y.Set(i, j, ys[i])
		}
	}
	return x, y, z, nil
}

func uniqueSorted(points [][3]float64, k int) []float64 {
	vals := make([]float64, 0, len(points))
	seen := make(map[float64]struct{}, len(points))
	for _, pt := range points {
		if _, ok := seen[pt[k]]; ok {
			continue
		}
		seen[pt[k]] = struct{}{}
		vals = append(vals, pt[k])
	}
	sort.Float64s(vals)
	return vals
}
