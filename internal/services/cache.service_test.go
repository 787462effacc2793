package services

import (
	"context"
	"testing"
	"time"

	"hwmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	fakeSampler
	infoCalls int
	tempCalls int
}

func (c *countingSource) CPUTemperatures() ([]models.NameValue, error) { return nil, nil }
func (c *countingSource) GPUTemperatures(context.Context) ([]models.NameValue, error) {
	c.tempCalls++
	return []models.NameValue{{Name: "gpu", Value: float64(50 + c.tempCalls)}}, nil
}
func (c *countingSource) CPUFans() ([]models.NameValue, error) { return nil, nil }
func (c *countingSource) GPUFans(context.Context) ([]models.NameValue, error) {
	return []models.NameValue{}, nil
}
func (c *countingSource) HardwareInfo(context.Context) (*models.HardwareInfo, error) {
	c.infoCalls++
	return &models.HardwareInfo{CPU: &models.CPUInfo{Name: "test"}}, nil
}

func TestCachedSourceHonoursTTL(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedSource(src, time.Hour, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cached.HardwareInfo(ctx)
		require.NoError(t, err)
		temps, err := cached.GPUTemperatures(ctx)
		require.NoError(t, err)
		assert.Equal(t, 51.0, temps[0].Value)
	}
	assert.Equal(t, 1, src.infoCalls)
	assert.Equal(t, 1, src.tempCalls)

	cached.ClearCache()
	_, err := cached.HardwareInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.infoCalls)

	cached.SetCacheTTL(0)
	temps, err := cached.GPUTemperatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 52.0, temps[0].Value)
}
