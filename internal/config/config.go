// Package config loads the YAML configuration of the annt command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FlavioCFOliveira/annt/internal/activations"
	"github.com/FlavioCFOliveira/annt/internal/experiment"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a configuration value out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all annt configuration.
type Config struct {
	// Network hyperparameters
	Network NetworkConfig `yaml:"network"`

	// Training loop settings
	Training TrainingConfig `yaml:"training"`

	// Repeated runs and parameter sweeps
	Experiment ExperimentConfig `yaml:"experiment"`

	// Input data
	Data DataConfig `yaml:"data"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// NetworkConfig configures the multilayer perceptron.
type NetworkConfig struct {
	HiddenLayers     []int   `yaml:"hidden_layers"`
	Bias             float64 `yaml:"bias"` // 0 disables the bias input
	LearningRate     float64 `yaml:"learning_rate"`
	MinWeight        float64 `yaml:"min_weight"`
	MaxWeight        float64 `yaml:"max_weight"`
	HiddenActivation string  `yaml:"hidden_activation"`
	OutputActivation string  `yaml:"output_activation"`
	Classes          int     `yaml:"classes"`
	Seed             int64   `yaml:"seed"` // 0 = time based
}

// TrainingConfig configures the epoch loop.
type TrainingConfig struct {
	Epochs  int  `yaml:"epochs"`
	Shuffle bool `yaml:"shuffle"`
	// Momentum above 0 replaces plain SGD with momentum SGD.
	Momentum float64 `yaml:"momentum"`
	// LRStep above 0 multiplies the learning rate by LRGamma every LRStep epochs.
	LRStep  int     `yaml:"lr_step"`
	LRGamma float64 `yaml:"lr_gamma"`
	// Patience above 0 stops training after that many epochs without a
	// test accuracy gain of at least MinDelta.
	Patience int     `yaml:"patience"`
	MinDelta float64 `yaml:"min_delta"`
	// CSVLog and Checkpoint are optional output files.
	CSVLog     string `yaml:"csv_log"`
	Checkpoint string `yaml:"checkpoint"`
}

// ExperimentConfig configures bulk runs and sweeps.
type ExperimentConfig struct {
	Iterations int    `yaml:"iterations"`
	Workers    int    `yaml:"workers"` // 0 = one per CPU
	OutDir     string `yaml:"out_dir"`
	Plot       bool   `yaml:"plot"`
	PlotPath   string `yaml:"plot_path"` // empty = temp file
}

// DataConfig selects the input data: MNIST IDX files under Dir, CSV files
// when CSV is set, or generated digits when Synthetic is set.
type DataConfig struct {
	Dir          string  `yaml:"dir"`
	Synthetic    bool    `yaml:"synthetic"`
	CSV          string  `yaml:"csv"`
	TestCSV      string  `yaml:"test_csv"`
	LabelColumn  int     `yaml:"label_column"`
	Header       bool    `yaml:"header"`
	TrainSamples int     `yaml:"train_samples"` // 0 = all
	TestSamples  int     `yaml:"test_samples"`  // 0 = all
	Scale        float64 `yaml:"scale"`
	Noise        float64 `yaml:"noise"` // synthetic data only
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // json or console
}

// Default returns the default configuration.
func Default() *Config {
	p := experiment.DefaultParams()
	return &Config{
		Network: NetworkConfig{
			HiddenLayers:     p.Hidden,
			Bias:             p.Bias,
			LearningRate:     p.LearningRate,
			MinWeight:        p.MinWeight,
			MaxWeight:        p.MaxWeight,
			HiddenActivation: p.HiddenActivation,
			OutputActivation: p.OutputActivation,
			Classes:          p.Classes,
		},
		Training: TrainingConfig{
			Epochs:  p.Epochs,
			LRGamma: 0.1,
		},
		Experiment: ExperimentConfig{
			Iterations: 10,
			OutDir:     "plots",
			Plot:       true,
		},
		Data: DataConfig{
			Dir:          "data/mnist",
			TrainSamples: 800,
			TestSamples:  200,
			Scale:        255,
			Noise:        0.1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	n := c.Network
	for i, h := range n.HiddenLayers {
		if h <= 0 {
			return fmt.Errorf("%w: hidden layer %d has %d nodes", ErrInvalid, i, h)
		}
	}
	if n.Classes <= 0 {
		return fmt.Errorf("%w: %d classes", ErrInvalid, n.Classes)
	}
	if n.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate %v", ErrInvalid, n.LearningRate)
	}
	if n.MinWeight >= n.MaxWeight {
		return fmt.Errorf("%w: min weight %v not below max weight %v", ErrInvalid, n.MinWeight, n.MaxWeight)
	}
	for _, name := range []string{n.HiddenActivation, n.OutputActivation} {
		if _, err := activations.Parse(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	t := c.Training
	if t.Epochs < 0 {
		return fmt.Errorf("%w: %d epochs", ErrInvalid, t.Epochs)
	}
	if t.Momentum < 0 || t.Momentum >= 1 {
		return fmt.Errorf("%w: momentum %v outside [0, 1)", ErrInvalid, t.Momentum)
	}
	if t.LRStep > 0 && t.LRGamma <= 0 {
		return fmt.Errorf("%w: lr_gamma %v", ErrInvalid, t.LRGamma)
	}

	if c.Experiment.Iterations <= 0 {
		return fmt.Errorf("%w: %d iterations", ErrInvalid, c.Experiment.Iterations)
	}
	if c.Data.Scale <= 0 {
		return fmt.Errorf("%w: data scale %v", ErrInvalid, c.Data.Scale)
	}
	if c.Data.LabelColumn < 0 {
		return fmt.Errorf("%w: label column %d", ErrInvalid, c.Data.LabelColumn)
	}
	if c.Data.TrainSamples < 0 || c.Data.TestSamples < 0 {
		return fmt.Errorf("%w: negative sample count", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Params returns the experiment parameters.
func (c *Config) Params() experiment.Params {
	return experiment.Params{
		Epochs:           c.Training.Epochs,
		Hidden:           append([]int(nil), c.Network.HiddenLayers...),
		Bias:             c.Network.Bias,
		LearningRate:     c.Network.LearningRate,
		MinWeight:        c.Network.MinWeight,
		MaxWeight:        c.Network.MaxWeight,
		HiddenActivation: c.Network.HiddenActivation,
		OutputActivation: c.Network.OutputActivation,
		Classes:          c.Network.Classes,
		Shuffle:          c.Training.Shuffle,
		Seed:             c.Network.Seed,
	}
}

// Logger builds a production zap logger; verbose forces debug level.
func (l LoggingConfig) Logger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)
	if l.Encoding != "" {
		config.Encoding = l.Encoding
	}
	if config.Encoding == "console" {
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
