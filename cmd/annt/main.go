// Command annt trains multilayer perceptrons on MNIST style digit data and
// plots their accuracy per epoch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FlavioCFOliveira/annt/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	dataDir      string
	synthetic    bool
	trainSamples int
	testSamples  int
	epochs       int
	seed         int64

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "annt",
	Short: "Multilayer perceptron experiments",
	Long: `annt trains a multilayer perceptron with online back-propagation on a
reduced MNIST set (or synthetic digits) and plots accuracy per epoch.

Settings come from a YAML file (--config); flags override the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = cfg.Logging.Logger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "annt.yaml", "configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every epoch")
	pf.StringVar(&dataDir, "data-dir", "", "directory holding the MNIST IDX files")
	pf.BoolVar(&synthetic, "synthetic", false, "train on generated digits instead of MNIST")
	pf.IntVar(&trainSamples, "train-samples", 0, "training samples to use (0 = all)")
	pf.IntVar(&testSamples, "test-samples", 0, "test samples to use (0 = all)")
	pf.IntVar(&epochs, "epochs", 0, "training epochs")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(basicCmd, bulkCmd, varyCmd, trainCmd)
}

// applyFlags overrides configuration values with flags set on the command line.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = dataDir
	}
	if flags.Changed("synthetic") {
		cfg.Data.Synthetic = synthetic
	}
	if flags.Changed("train-samples") {
		cfg.Data.TrainSamples = trainSamples
	}
	if flags.Changed("test-samples") {
		cfg.Data.TestSamples = testSamples
	}
	if flags.Changed("epochs") {
		cfg.Training.Epochs = epochs
	}
	if flags.Changed("seed") {
		cfg.Network.Seed = seed
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
