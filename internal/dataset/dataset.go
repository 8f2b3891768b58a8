// Package dataset loads labelled samples and prepares them for training:
// pixel scaling, one-hot label encoding and reduced subsets.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrFormat reports malformed input files.
	ErrFormat = errors.New("malformed data")
	// ErrLabel reports a class label outside [0, classes).
	ErrLabel = errors.New("label out of range")
)

// Dataset pairs a sample matrix with its class labels.
type Dataset struct {
	X       *mat.Dense // one sample per row
	Y       *mat.Dense // one-hot encoding of Labels
	Labels  []int
	Classes int
	// Rows and Cols give the image geometry of a sample, 0 for non-image data.
	Rows, Cols int
}

// New builds a dataset from samples and integer labels.
func New(x *mat.Dense, labels []int, classes int) (*Dataset, error) {
	r, _ := x.Dims()
	if r != len(labels) {
		return nil, fmt.Errorf("%w: %d samples but %d labels", ErrFormat, r, len(labels))
	}
	y, err := OneHot(labels, classes)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: x, Y: y, Labels: labels, Classes: classes}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Features returns the number of values per sample.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}

// Head returns a dataset sharing storage with the first n samples.
// n <= 0 or n >= Len returns d itself.
func (d *Dataset) Head(n int) *Dataset {
	if n <= 0 || n >= d.Len() {
		return d
	}
	return d.Slice(0, n)
}

// Slice returns a dataset sharing storage with samples [i, j).
// It panics if the range is empty or out of bounds.
func (d *Dataset) Slice(i, j int) *Dataset {
	s := *d
	s.X = d.X.Slice(i, j, 0, d.Features()).(*mat.Dense)
	s.Y = d.Y.Slice(i, j, 0, d.Classes).(*mat.Dense)
	s.Labels = d.Labels[i:j]
	return &s
}

// Normalize divides every value of m by scale in place, e.g. 255 for 8 bit pixels.
func Normalize(m *mat.Dense, scale float64) {
	if m.IsEmpty() {
		return
	}
	m.Scale(1/scale, m)
}

// OneHot encodes labels as rows with a single 1 at the label's index.
func OneHot(labels []int, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d classes", ErrLabel, n)
	}
	if len(labels) == 0 {
		return &mat.Dense{}, nil
	}
	m := mat.NewDense(len(labels), n, nil)
	for i, l := range labels {
		if l < 0 || l >= n {
			return nil, fmt.Errorf("%w: sample %d has label %d, classes %d", ErrLabel, i, l, n)
		}
		m.Set(i, l, 1)
	}
	return m, nil
}
