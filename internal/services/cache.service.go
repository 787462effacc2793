package services

import (
	"context"
	"sync"
	"time"

	"hwmonitor/internal/models"
)

// CachedSource wraps a HardwareSource and holds slow readings for a TTL.
// Sensor readings use ttl; static hardware info uses infoTTL.
type CachedSource struct {
	HardwareSource

	mu          sync.RWMutex
	ttl         time.Duration
	infoTTL     time.Duration
	info        *models.HardwareInfo
	infoTime    time.Time
	gpuTemps    []models.NameValue
	gpuTempTime time.Time
	gpuFans     []models.NameValue
	gpuFanTime  time.Time
}

// NewCachedSource caches src readings
func NewCachedSource(src HardwareSource, ttl, infoTTL time.Duration) *CachedSource {
	return &CachedSource{
		HardwareSource: src,
		ttl:            ttl,
		infoTTL:        infoTTL,
	}
}

// SetCacheTTL sets the sensor cache time-to-live
func (c *CachedSource) SetCacheTTL(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = d
}

func isFresh(at time.Time, ttl time.Duration) bool {
	return !at.IsZero() && time.Since(at) < ttl
}

// HardwareInfo returns cached info if valid, otherwise fetches fresh
func (c *CachedSource) HardwareInfo(ctx context.Context) (*models.HardwareInfo, error) {
	c.mu.RLock()
	if c.info != nil && isFresh(c.infoTime, c.infoTTL) {
		defer c.mu.RUnlock()
		return c.info, nil
	}
	c.mu.RUnlock()

	info, err := c.HardwareSource.HardwareInfo(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.info = info
	c.infoTime = time.Now()
	c.mu.Unlock()

	return info, nil
}

// GPUTemperatures returns cached GPU temperatures if valid, otherwise fetches fresh
func (c *CachedSource) GPUTemperatures(ctx context.Context) ([]models.NameValue, error) {
	c.mu.RLock()
	if c.gpuTemps != nil && isFresh(c.gpuTempTime, c.ttl) {
		defer c.mu.RUnlock()
		return c.gpuTemps, nil
	}
	c.mu.RUnlock()

	temps, err := c.HardwareSource.GPUTemperatures(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.gpuTemps = temps
	c.gpuTempTime = time.Now()
	c.mu.Unlock()

	return temps, nil
}

// GPUFans returns cached GPU fan speeds if valid, otherwise fetches fresh
func (c *CachedSource) GPUFans(ctx context.Context) ([]models.NameValue, error) {
	c.mu.RLock()
	if c.gpuFans != nil && isFresh(c.gpuFanTime, c.ttl) {
		defer c.mu.RUnlock()
		return c.gpuFans, nil
	}
	c.mu.RUnlock()

	fans, err := c.HardwareSource.GPUFans(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.gpuFans = fans
	c.gpuFanTime = time.Now()
	c.mu.Unlock()

	return fans, nil
}

// ClearCache drops all cached values
func (c *CachedSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.info = nil
	c.gpuTemps = nil
	c.gpuFans = nil
}
