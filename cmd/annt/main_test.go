package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/annt/internal/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainCommand(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.gob")
	weights := filepath.Join(dir, "weights.png")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"train",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--synthetic",
		"--train-samples", "20",
		"--test-samples", "10",
		"--epochs", "2",
		"--seed", "5",
		"--save", model,
		"--weights-plot", weights,
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Total params:")
	assert.Equal(t, 2, cfg.Training.Epochs)
	assert.True(t, cfg.Data.Synthetic)

	n, err := net.Load(model)
	require.NoError(t, err)
	assert.Equal(t, []int{784, 100, 10}, n.Config().Shape)

	info, err := os.Stat(weights)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestLoadCSVSplit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	var b bytes.Buffer
	b.WriteString("a,b,label\n")
	for i := 0; i < 10; i++ {
		b.WriteString("0.5,0.25,")
		b.WriteString([]string{"0", "1", "2"}[i%3])
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))

	train, test, err := loadCSV(path, "", 2, true)
	require.NoError(t, err)
	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, test.Len())
	assert.Equal(t, 3, test.Classes)
	assert.Equal(t, []int{2, 0}, test.Labels)
}
