package services

import (
	"context"
	"errors"
	"testing"

	"hwmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGPUs = `0, NVIDIA GeForce RTX 3080, 40, 61, 35, 2100, 10240
1, NVIDIA GeForce RTX 3080, 20, 55, [N/A], 2100, 10240
`

func stubRunner(out string, err error) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestNvidiaSMIUsageAverages(t *testing.T) {
	n := &NvidiaSMI{path: "nvidia-smi", run: stubRunner(twoGPUs, nil)}

	usage, err := n.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30.0, usage)
}

func TestNvidiaSMITemperaturesAndFans(t *testing.T) {
	n := &NvidiaSMI{path: "nvidia-smi", run: stubRunner(twoGPUs, nil)}

	temps, err := n.Temperatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.NameValue{
		{Name: "NVIDIA GeForce RTX 3080 #0", Value: 61},
		{Name: "NVIDIA GeForce RTX 3080 #1", Value: 55},
	}, temps)

	fans, err := n.Fans(context.Background())
	require.NoError(t, err)
	require.Len(t, fans, 1, "unsupported fan readings are skipped")
	assert.Equal(t, 35.0, fans[0].Value)
}

func TestNvidiaSMIInfo(t *testing.T) {
	n := &NvidiaSMI{path: "nvidia-smi", run: stubRunner("0, Tesla T4, [Not Supported], 45, [N/A], 1590, 15360\n", nil)}

	infos, err := n.Info(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Tesla T4", infos[0].Name)
	assert.Equal(t, "NVIDIA", infos[0].VendorName)
	assert.Equal(t, uint64(1590), infos[0].Clock)
	assert.Equal(t, "15.0 GB", infos[0].MemorySize)

	_, err = n.Usage(context.Background())
	assert.Error(t, err, "utilization not supported on any GPU")
}

func TestNvidiaSMIErrors(t *testing.T) {
	n := &NvidiaSMI{path: "nvidia-smi", run: stubRunner("", errors.New("executable file not found"))}
	_, err := n.Usage(context.Background())
	assert.Error(t, err)

	n = &NvidiaSMI{path: "nvidia-smi", run: stubRunner("", nil)}
	_, err = n.Temperatures(context.Background())
	assert.ErrorIs(t, err, errNoGPU)

	n = &NvidiaSMI{path: "nvidia-smi", run: stubRunner("garbage\n", nil)}
	_, err = n.Info(context.Background())
	assert.Error(t, err)
}
