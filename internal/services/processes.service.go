package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"hwmonitor/internal/models"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessSample is one observation of a running process
type ProcessSample struct {
	PID        int32
	Name       string
	CPUPercent float64
	MemoryMiB  float64
}

// ProcessSource lists the processes running right now
type ProcessSource interface {
	Snapshot(ctx context.Context) ([]ProcessSample, error)
}

// SystemProcesses reads processes through gopsutil. Process handles are kept
// between snapshots so CPU percent is measured over the sampling interval.
type SystemProcesses struct {
	handles map[int32]*process.Process
}

// NewSystemProcesses creates a gopsutil-backed process source
func NewSystemProcesses() *SystemProcesses {
	return &SystemProcesses{handles: make(map[int32]*process.Process)}
}

// Snapshot samples every visible process
func (sp *SystemProcesses) Snapshot(ctx context.Context) ([]ProcessSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	alive := make(map[int32]*process.Process, len(procs))
	samples := make([]ProcessSample, 0, len(procs))

	for _, p := range procs {
		handle, ok := sp.handles[p.Pid]
		if !ok {
			handle = p
		}
		alive[p.Pid] = handle

		name, err := handle.NameWithContext(ctx)
		if err != nil {
			continue
		}

		// first call for a new handle primes the counters and returns 0
		cpuPercent, err := handle.PercentWithContext(ctx, 0)
		if err != nil {
			cpuPercent = 0
		}

		memMiB := 0.0
		if memInfo, err := handle.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			memMiB = float64(memInfo.RSS) / MB
		}

		samples = append(samples, ProcessSample{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: cpuPercent,
			MemoryMiB:  memMiB,
		})
	}

	sp.handles = alive
	return samples, nil
}

// ProcessCollector keeps short per-process usage histories for the process table
type ProcessCollector struct {
	mu          sync.RWMutex
	source      ProcessSource
	capacity    int
	average     int
	names       map[int32]string
	cpuHistory  map[int32][]float64
	memHistory  map[int32][]float64
	lastUpdated time.Time
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewProcessCollector keeps capacity samples per process and averages the
// newest average of them when listing
func NewProcessCollector(source ProcessSource, capacity, average int) *ProcessCollector {
	if capacity <= 0 {
		capacity = 60
	}
	if average <= 0 || average > capacity {
		average = 5
	}
	return &ProcessCollector{
		source:     source,
		capacity:   capacity,
		average:    average,
		names:      make(map[int32]string),
		cpuHistory: make(map[int32][]float64),
		memHistory: make(map[int32][]float64),
	}
}

// Start begins collecting every interval until Stop
func (pc *ProcessCollector) Start(interval time.Duration) {
	pc.mu.Lock()
	if pc.running {
		pc.mu.Unlock()
		return // Already running
	}
	ctx, cancel := context.WithCancel(context.Background())
	pc.running = true
	pc.cancel = cancel
	pc.done = make(chan struct{})
	done := pc.done
	pc.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := pc.collect(ctx); err != nil {
					log.Printf("[PROCESS] Collection error: %v", err)
				}
			}
		}
	}()

	log.Printf("[PROCESS] Collector started (interval: %v)", interval)
}

// Stop halts collection and waits for the loop to exit
func (pc *ProcessCollector) Stop() {
	pc.mu.Lock()
	if !pc.running {
		pc.mu.Unlock()
		return
	}
	pc.running = false
	pc.cancel()
	done := pc.done
	pc.mu.Unlock()

	<-done
	log.Println("[PROCESS] Collector stopped")
}

// collect takes one snapshot and folds it into the histories. Processes that
// disappeared are forgotten.
func (pc *ProcessCollector) collect(ctx context.Context) error {
	samples, err := pc.source.Snapshot(ctx)
	if err != nil {
		return err
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	seen := make(map[int32]bool, len(samples))
	for _, s := range samples {
		seen[s.PID] = true
		pc.names[s.PID] = s.Name
		pc.cpuHistory[s.PID] = pushBounded(pc.cpuHistory[s.PID], s.CPUPercent, pc.capacity)
		pc.memHistory[s.PID] = pushBounded(pc.memHistory[s.PID], s.MemoryMiB, pc.capacity)
	}

	for pid := range pc.names {
		if !seen[pid] {
			delete(pc.names, pid)
			delete(pc.cpuHistory, pid)
			delete(pc.memHistory, pid)
		}
	}

	pc.lastUpdated = time.Now()
	return nil
}

// List returns every known process with averaged usage, busiest first
// Pipeline: Average → Sort
func (pc *ProcessCollector) List() []models.ProcessInfo {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	result := make([]models.ProcessInfo, 0, len(pc.names))
	for pid, name := range pc.names {
		result = append(result, models.ProcessInfo{
			PID:         pid,
			Name:        name,
			CPUUsage:    round1(tailAverage(pc.cpuHistory[pid], pc.average)),
			MemoryUsage: round1(tailAverage(pc.memHistory[pid], pc.average)),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CPUUsage != result[j].CPUUsage {
			return result[i].CPUUsage > result[j].CPUUsage
		}
		return result[i].PID < result[j].PID
	})
	return result
}

// LastUpdated is when the last successful snapshot was folded in
func (pc *ProcessCollector) LastUpdated() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.lastUpdated
}

func pushBounded(series []float64, v float64, capacity int) []float64 {
	series = append(series, v)
	if len(series) > capacity {
		series = series[len(series)-capacity:]
	}
	return series
}

// tailAverage averages the newest n values
func tailAverage(series []float64, n int) float64 {
	if len(series) == 0 {
		return 0
	}
	if n > len(series) {
		n = len(series)
	}
	sum := 0.0
	for _, v := range series[len(series)-n:] {
		sum += v
	}
	return sum / float64(n)
}
