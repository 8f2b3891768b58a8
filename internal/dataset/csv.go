package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV loads samples from a CSV file. Column labelCol holds the integer
// class label; every other column is a feature. hasHeader skips the first line.
// The class count is one more than the largest label seen.
func LoadCSV(filename string, labelCol int, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}
	if len(records) <= startRow {
		return nil, fmt.Errorf("%w: csv file has no data rows", ErrFormat)
	}

	numCols := len(records[startRow])
	if labelCol < 0 || labelCol >= numCols {
		return nil, fmt.Errorf("%w: label column %d out of range for %d columns", ErrFormat, labelCol, numCols)
	}
	if numCols < 2 {
		return nil, fmt.Errorf("%w: csv needs at least one feature column", ErrFormat)
	}

	numSamples := len(records) - startRow
	data := make([]float64, 0, numSamples*(numCols-1))
	labels := make([]int, 0, numSamples)
	classes := 0

	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, fmt.Errorf("%w: inconsistent number of columns at row %d", ErrFormat, i)
		}
		for j, valStr := range record {
			if j == labelCol {
				label, err := strconv.Atoi(valStr)
				if err != nil {
					return nil, fmt.Errorf("%w: label at row %d: %v", ErrFormat, i, err)
				}
				labels = append(labels, label)
				if label+1 > classes {
					classes = label + 1
				}
				continue
			}
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: value at row %d, col %d: %v", ErrFormat, i, j, err)
			}
			data = append(data, val)
		}
	}

	return New(mat.NewDense(numSamples, numCols-1, data), labels, classes)
}
