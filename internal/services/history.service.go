package services

import (
	"context"
	"log"
	"sync"
	"time"

	"hwmonitor/internal/models"
)

// HistoryCollector keeps the most recent usage samples per device
type HistoryCollector struct {
	mu            sync.RWMutex
	sampler       UsageSampler
	history       map[models.HardwareType][]float64
	failing       map[models.HardwareType]bool
	maxDataPoints int
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// NewHistoryCollector creates a collector keeping maxDataPoints samples per device
func NewHistoryCollector(sampler UsageSampler, maxDataPoints int) *HistoryCollector {
	if maxDataPoints <= 0 {
		maxDataPoints = 60
	}
	return &HistoryCollector{
		sampler:       sampler,
		history:       make(map[models.HardwareType][]float64, len(models.AllHardwareTypes)),
		failing:       make(map[models.HardwareType]bool),
		maxDataPoints: maxDataPoints,
	}
}

// Start begins sampling every interval until Stop
func (hc *HistoryCollector) Start(interval time.Duration) {
	hc.mu.Lock()
	if hc.running {
		hc.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	hc.running = true
	hc.cancel = cancel
	hc.done = make(chan struct{})
	done := hc.done
	hc.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hc.collectSnapshot(ctx)
			}
		}
	}()

	log.Printf("[HISTORY] Collector started (interval: %v, capacity: %d)", interval, hc.maxDataPoints)
}

// Stop halts sampling and waits for the loop to exit
func (hc *HistoryCollector) Stop() {
	hc.mu.Lock()
	if !hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = false
	hc.cancel()
	done := hc.done
	hc.mu.Unlock()

	<-done
	log.Println("[HISTORY] Collector stopped")
}

// collectSnapshot samples every device. Sampling happens outside the lock so
// slow probes never block readers.
func (hc *HistoryCollector) collectSnapshot(ctx context.Context) {
	cpuUsage, cpuErr := hc.sampler.CPUUsage()
	memUsage, memErr := hc.sampler.MemoryUsage()
	gpuUsage, gpuErr := hc.sampler.GPUUsage(ctx)

	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.record(models.HardwareCPU, cpuUsage, cpuErr)
	hc.record(models.HardwareMemory, memUsage, memErr)
	hc.record(models.HardwareGPU, gpuUsage, gpuErr)
}

// record appends one sample; must hold hc.mu
func (hc *HistoryCollector) record(target models.HardwareType, value float64, err error) {
	if err != nil {
		// log once per failure streak, GPU-less machines fail every tick
		if !hc.failing[target] {
			log.Printf("[HISTORY] %s sampling failed: %v", target, err)
			hc.failing[target] = true
		}
		return
	}
	if hc.failing[target] {
		log.Printf("[HISTORY] %s sampling recovered", target)
		hc.failing[target] = false
	}

	series := append(hc.history[target], value)
	if len(series) > hc.maxDataPoints {
		series = series[len(series)-hc.maxDataPoints:]
	}
	hc.history[target] = series
}

// History returns up to seconds of the most recent samples, oldest first.
// Zero seconds yields an empty slice; a negative value yields everything.
func (hc *HistoryCollector) History(target models.HardwareType, seconds int) []float64 {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	series := hc.history[target]
	if seconds < 0 || seconds > len(series) {
		seconds = len(series)
	}

	out := make([]float64, seconds)
	copy(out, series[len(series)-seconds:])
	return out
}

// Latest returns the newest sample for target. It reports false while the
// device is failing so callers never serve a stale reading.
func (hc *HistoryCollector) Latest(target models.HardwareType) (float64, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	series := hc.history[target]
	if len(series) == 0 || hc.failing[target] {
		return 0, false
	}
	return series[len(series)-1], true
}

// Capacity is the maximum number of samples kept per device
func (hc *HistoryCollector) Capacity() int {
	return hc.maxDataPoints
}
