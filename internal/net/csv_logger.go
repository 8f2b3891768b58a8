package net

import (
	"encoding/csv"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// CSVLogger writes one row per epoch to a CSV file.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	err    error
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

// Err returns the first error hit while writing, if any.
func (c *CSVLogger) Err() error {
	return c.err
}

func (c *CSVLogger) OnTrainBegin(n *MultilayerPerceptron) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		c.fail(n, err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.write(n, []string{"epoch", "loss", "train_accuracy", "test_accuracy", "learning_rate", "time_seconds"})
	}
}

func (c *CSVLogger) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	if c.writer == nil {
		return
	}
	c.write(n, []string{
		strconv.Itoa(stats.Epoch),
		strconv.FormatFloat(stats.Loss, 'f', 6, 64),
		strconv.FormatFloat(stats.TrainAccuracy, 'f', 6, 64),
		strconv.FormatFloat(stats.TestAccuracy, 'f', 6, 64),
		strconv.FormatFloat(stats.LearningRate, 'g', -1, 64),
		strconv.FormatFloat(stats.Elapsed.Seconds(), 'f', 2, 64),
	})
}

func (c *CSVLogger) OnTrainEnd(n *MultilayerPerceptron) {
	if c.file == nil {
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.fail(n, err)
	}
	if err := c.file.Close(); err != nil {
		c.fail(n, err)
	}
	c.file = nil
	c.writer = nil
}

func (c *CSVLogger) write(n *MultilayerPerceptron, record []string) {
	if err := c.writer.Write(record); err != nil {
		c.fail(n, err)
		return
	}
	c.writer.Flush()
}

func (c *CSVLogger) fail(n *MultilayerPerceptron, err error) {
	if c.err == nil {
		c.err = err
	}
	n.Logger().Error("csv logger", zap.String("file", c.Filename), zap.Error(err))
}
