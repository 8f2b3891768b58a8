package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// 5x3 block glyphs for the digits 0-9, row major.
var digitPatterns = [10][15]float64{
	{1, 1, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 1, 1},
	{0, 1, 0, 1, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
	{1, 1, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{1, 1, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 1, 1},
	{1, 0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0, 1},
	{1, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 1, 1},
	{1, 1, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0},
	{1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1},
}

const (
	syntheticSize  = 28
	glyphWidth     = 3
	glyphHeight    = 5
	glyphCell      = 5
	glyphMarginTop = 2
	glyphMarginLft = 6
)

// Synthetic generates n MNIST-shaped 28x28 digit images in [0, 1]. Each
// digit is a 3x5 block glyph scaled up, jittered by up to two pixels and
// overlaid with uniform noise of the given amplitude. Labels cycle 0-9.
func Synthetic(n int, noise float64, rng *rand.Rand) *Dataset {
	const size = syntheticSize * syntheticSize
	data := make([]float64, n*size)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		digit := i % 10
		labels[i] = digit
		img := data[i*size : (i+1)*size]

		dx := rng.Intn(5) - 2
		dy := rng.Intn(5) - 2
		pattern := digitPatterns[digit]
		for gy := 0; gy < glyphHeight; gy++ {
			for gx := 0; gx < glyphWidth; gx++ {
				if pattern[gy*glyphWidth+gx] == 0 {
					continue
				}
				for sy := 0; sy < glyphCell; sy++ {
					for sx := 0; sx < glyphCell; sx++ {
						y := glyphMarginTop + gy*glyphCell + sy + dy
						x := glyphMarginLft + gx*glyphCell + sx + dx
						if x >= 0 && x < syntheticSize && y >= 0 && y < syntheticSize {
							img[y*syntheticSize+x] = 1
						}
					}
				}
			}
		}
		for j := range img {
			img[j] += (rng.Float64() - 0.5) * noise
			if img[j] < 0 {
				img[j] = 0
			} else if img[j] > 1 {
				img[j] = 1
			}
		}
	}

	var x *mat.Dense
	if n > 0 {
		x = mat.NewDense(n, size, data)
	} else {
		x = &mat.Dense{}
	}
	d, _ := New(x, labels, 10)
	d.Rows, d.Cols = syntheticSize, syntheticSize
	return d
}
