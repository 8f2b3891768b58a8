package net

import (
	"math"

	"github.com/FlavioCFOliveira/annt/internal/opt"
	"go.uber.org/zap"
)

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(n *MultilayerPerceptron)
	OnTrainEnd(n *MultilayerPerceptron)
	OnEpochBegin(epoch int, n *MultilayerPerceptron)
	OnEpochEnd(stats EpochStats, n *MultilayerPerceptron)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(n *MultilayerPerceptron)                 {}
func (BaseCallback) OnTrainEnd(n *MultilayerPerceptron)                   {}
func (BaseCallback) OnEpochBegin(epoch int, n *MultilayerPerceptron)      {}
func (BaseCallback) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {}

// SchedulerCallback steps a learning rate scheduler after every epoch.
type SchedulerCallback struct {
	BaseCallback
	scheduler opt.Scheduler
}

func NewSchedulerCallback(scheduler opt.Scheduler) *SchedulerCallback {
	return &SchedulerCallback{scheduler: scheduler}
}

func (c *SchedulerCallback) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	c.scheduler.Step()
}

// EarlyStopping stops training when the monitored accuracy has stopped
// improving. Test accuracy is monitored unless MonitorTrain is set.
type EarlyStopping struct {
	BaseCallback
	Patience     int
	Threshold    float64
	MonitorTrain bool

	best         float64
	numBadEpochs int
	Stopped      bool
	StoppedEpoch int
}

func NewEarlyStopping(patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Patience:  patience,
		Threshold: threshold,
		best:      math.Inf(-1),
	}
}

func (c *EarlyStopping) OnTrainBegin(n *MultilayerPerceptron) {
	c.best = math.Inf(-1)
	c.numBadEpochs = 0
	c.Stopped = false
	c.StoppedEpoch = 0
}

func (c *EarlyStopping) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	acc := stats.TestAccuracy
	if c.MonitorTrain {
		acc = stats.TrainAccuracy
	}

	if acc > c.best+c.Threshold {
		c.best = acc
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.numBadEpochs >= c.Patience {
		n.Logger().Info("early stopping",
			zap.Int("epoch", stats.Epoch),
			zap.Float64("best_accuracy", c.best*100),
			zap.Int("patience", c.Patience))
		c.Stopped = true
		c.StoppedEpoch = stats.Epoch
		n.StopTraining()
	}
}

// ModelCheckpoint saves the model whenever test accuracy reaches a new best.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	best float64
}

func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		best:     math.Inf(-1),
	}
}

func (c *ModelCheckpoint) OnTrainBegin(n *MultilayerPerceptron) {
	c.best = math.Inf(-1)
}

func (c *ModelCheckpoint) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	if stats.TestAccuracy <= c.best {
		return
	}
	c.best = stats.TestAccuracy
	if err := n.Save(c.Filename); err != nil {
		n.Logger().Error("saving checkpoint", zap.String("file", c.Filename), zap.Error(err))
		return
	}
	n.Logger().Debug("checkpoint saved",
		zap.String("file", c.Filename),
		zap.Float64("test_accuracy", stats.TestAccuracy*100))
}

// Logger logs training progress every Interval epochs.
type Logger struct {
	BaseCallback
	Interval int
}

func (c Logger) OnEpochEnd(stats EpochStats, n *MultilayerPerceptron) {
	if c.Interval > 0 && stats.Epoch%c.Interval == 0 {
		n.Logger().Info("training progress",
			zap.Int("epoch", stats.Epoch),
			zap.Float64("loss", stats.Loss),
			zap.Float64("train_accuracy", stats.TrainAccuracy*100),
			zap.Float64("test_accuracy", stats.TestAccuracy*100),
			zap.Duration("elapsed", stats.Elapsed))
	}
}
