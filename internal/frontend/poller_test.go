package frontend

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hwmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingBackend holds every CPU fetch until released, ignoring ctx the way
// a slow backend call would
type blockingBackend struct {
	*fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) CPUUsage(context.Context) (float64, error) {
	b.started <- struct{}{}
	<-b.release
	return 99, nil
}

func TestStoppedPollerDiscardsLateResult(t *testing.T) {
	backend := &blockingBackend{
		fakeBackend: newFakeBackend(),
		started:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	store := NewHistoryStore(5)
	store.Seed(SeriesCPUUsage)
	before := store.Read(SeriesCPUUsage)

	p := NewPoller("cpu-usage", time.Millisecond, true, SeriesTick(SeriesCPUUsage, backend, store))
	p.Start()

	select {
	case <-backend.started:
	case <-time.After(time.Second):
		t.Fatal("fetch never started")
	}

	p.Stop()
	close(backend.release)

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not exit")
	}
	assert.Equal(t, before, store.Read(SeriesCPUUsage))
	assert.False(t, p.Running())
}

func TestPollerTicksNeverOverlap(t *testing.T) {
	var inFlight, maxInFlight, ticks atomic.Int32
	p := NewPoller("overlap", time.Millisecond, true, func(ctx context.Context) error {
		n := inFlight.Add(1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(3 * time.Millisecond)
		inFlight.Add(-1)
		ticks.Add(1)
		return nil
	})

	p.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 5 }, 2*time.Second, time.Millisecond)
	p.Stop()
	<-p.Done()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestPollerSkipsFailedTicks(t *testing.T) {
	backend := newFakeBackend()
	backend.cpuErr = assert.AnError
	store := NewHistoryStore(5)
	store.Seed(SeriesCPUUsage)

	tick := SeriesTick(SeriesCPUUsage, backend, store)
	assert.ErrorIs(t, tick(context.Background()), assert.AnError)
	assert.Empty(t, values(store.Read(SeriesCPUUsage)))

	backend.mu.Lock()
	backend.cpuErr = nil
	backend.mu.Unlock()
	require.NoError(t, tick(context.Background()))
	assert.Equal(t, []float64{1}, values(store.Read(SeriesCPUUsage)))
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := NewPoller("idle", time.Hour, false, func(context.Context) error { return nil })
	<-p.Done()

	p.Start()
	p.Start()
	assert.True(t, p.Running())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop()
		}()
	}
	wg.Wait()
	<-p.Done()
	assert.False(t, p.Running())
}

func TestProcessTickFillsTable(t *testing.T) {
	backend := newFakeBackend()
	backend.processes = []models.ProcessInfo{{PID: 1, Name: "init"}}
	table := NewProcessTable(10)

	require.NoError(t, ProcessTick(backend, table)(context.Background()))
	assert.Len(t, table.Rows(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend.processes = nil
	require.NoError(t, ProcessTick(backend, table)(ctx))
	assert.Len(t, table.Rows(), 1, "cancelled tick must not write")
}
