package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

type labelHeader struct{ Magic, Num uint32 }

type imageHeader struct{ Magic, Num, Height, Width uint32 }

// ReadIDXImages reads an IDX3 image file, one flattened image per row with
// raw 0-255 pixel values. limit > 0 stops after that many images.
func ReadIDXImages(r io.Reader, limit int) (x *mat.Dense, height, width int, err error) {
	br := bufio.NewReader(r)
	var head imageHeader
	if err = binary.Read(br, binary.BigEndian, &head); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: image header: %v", ErrFormat, err)
	}
	if head.Magic != imageMagic {
		return nil, 0, 0, fmt.Errorf("%w: image magic %d, want %d", ErrFormat, head.Magic, imageMagic)
	}

	n := int(head.Num)
	if limit > 0 && limit < n {
		n = limit
	}
	height, width = int(head.Height), int(head.Width)
	size := height * width
	if n == 0 || size == 0 {
		return &mat.Dense{}, height, width, nil
	}

	data := make([]float64, n*size)
	buf := make([]byte, size)
	for i := 0; i < n; i++ {
		if _, err = io.ReadFull(br, buf); err != nil {
			return nil, 0, 0, fmt.Errorf("%w: image %d: %v", ErrFormat, i, err)
		}
		row := data[i*size : (i+1)*size]
		for j, b := range buf {
			row[j] = float64(b)
		}
	}
	return mat.NewDense(n, size, data), height, width, nil
}

// ReadIDXLabels reads an IDX1 label file. limit > 0 stops after that many labels.
func ReadIDXLabels(r io.Reader, limit int) ([]int, error) {
	br := bufio.NewReader(r)
	var head labelHeader
	if err := binary.Read(br, binary.BigEndian, &head); err != nil {
		return nil, fmt.Errorf("%w: label header: %v", ErrFormat, err)
	}
	if head.Magic != labelMagic {
		return nil, fmt.Errorf("%w: label magic %d, want %d", ErrFormat, head.Magic, labelMagic)
	}

	n := int(head.Num)
	if limit > 0 && limit < n {
		n = limit
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("%w: labels: %v", ErrFormat, err)
	}
	labels := make([]int, n)
	for i, b := range buf {
		labels[i] = int(b)
	}
	return labels, nil
}

// MNIST file names, looked up with and without a .gz suffix.
const (
	TrainImages = "train-images-idx3-ubyte"
	TrainLabels = "train-labels-idx1-ubyte"
	TestImages  = "t10k-images-idx3-ubyte"
	TestLabels  = "t10k-labels-idx1-ubyte"
)

// LoadMNIST reads the MNIST training and test sets from dir, keeping the
// first nTrain and nTest samples (0 keeps all). Pixels are left at 0-255.
func LoadMNIST(dir string, nTrain, nTest int) (train, test *Dataset, err error) {
	if train, err = loadIDXPair(dir, TrainImages, TrainLabels, nTrain); err != nil {
		return nil, nil, fmt.Errorf("mnist training set: %w", err)
	}
	if test, err = loadIDXPair(dir, TestImages, TestLabels, nTest); err != nil {
		return nil, nil, fmt.Errorf("mnist test set: %w", err)
	}
	return train, test, nil
}

func loadIDXPair(dir, imageFile, labelFile string, limit int) (*Dataset, error) {
	var (
		x             *mat.Dense
		height, width int
		labels        []int
	)
	err := withFile(dir, imageFile, func(r io.Reader) (err error) {
		x, height, width, err = ReadIDXImages(r, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = withFile(dir, labelFile, func(r io.Reader) (err error) {
		labels, err = ReadIDXLabels(r, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	d, err := New(x, labels, 10)
	if err != nil {
		return nil, err
	}
	d.Rows, d.Cols = height, width
	return d, nil
}

// withFile opens dir/name or dir/name.gz and passes the decompressed stream to fn.
func withFile(dir, name string, fn func(io.Reader) error) error {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path += ".gz"
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	if err := fn(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
