package frontend

import (
	"context"
	"testing"
	"time"

	"hwmonitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(backend *fakeBackend) *App {
	cfg := DefaultAppConfig()
	cfg.Window = 5
	cfg.UsageInterval = time.Millisecond
	cfg.SensorInterval = time.Millisecond
	return NewApp(backend, cfg)
}

func TestMountPrefillsAndPolls(t *testing.T) {
	backend := newFakeBackend()
	backend.history = []float64{10, 20}
	app := testApp(backend)
	defer app.Close()

	app.Mount(context.Background(), SeriesCPUUsage)
	app.Mount(context.Background(), SeriesCPUUsage)
	assert.Equal(t, []Series{SeriesCPUUsage}, app.Mounted())

	require.Eventually(t, func() bool {
		return len(values(app.History.Read(SeriesCPUUsage))) == 5
	}, time.Second, time.Millisecond)

	got := values(app.History.Read(SeriesCPUUsage))
	assert.Len(t, got, 5)
}

func TestUnmountDropsBuffer(t *testing.T) {
	app := testApp(newFakeBackend())
	defer app.Close()

	app.Mount(context.Background(), SeriesMemoryUsage)
	require.Eventually(t, func() bool {
		return len(values(app.History.Read(SeriesMemoryUsage))) > 0
	}, time.Second, time.Millisecond)

	app.Unmount(SeriesMemoryUsage)
	app.Unmount(SeriesMemoryUsage)
	assert.Empty(t, app.Mounted())
	assert.False(t, app.History.Has(SeriesMemoryUsage))
}

func TestMountDisplayTargetsFollowsSettings(t *testing.T) {
	backend := newFakeBackend()
	app := testApp(backend)
	defer app.Close()

	_, err := app.Settings.Load(context.Background())
	require.NoError(t, err)
	app.Mount(context.Background(), SeriesGPUUsage)

	app.MountDisplayTargets(context.Background())
	assert.Equal(t, []Series{SeriesMemoryUsage}, app.Mounted())

	_, err = app.Settings.ToggleDisplayTarget(context.Background(), models.HardwareCPU)
	require.NoError(t, err)
	app.MountDisplayTargets(context.Background())
	assert.Equal(t, []Series{SeriesCPUUsage, SeriesMemoryUsage}, app.Mounted())
}

func TestHardwareInfoIsCachedUntilRefresh(t *testing.T) {
	backend := newFakeBackend()
	app := testApp(backend)

	first, err := app.HardwareInfo(context.Background())
	require.NoError(t, err)
	_, err = app.HardwareInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, backend.infoCalls)
	assert.Equal(t, "Ryzen 7", first.CPU.Name)

	_, err = app.RefreshHardwareInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.infoCalls)
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	l, err := NewEventListener("http://localhost:8080", "")
	require.NoError(t, err)
	app := testApp(newFakeBackend())
	app.Attach(l)
	app.MountProcesses()
	assert.Equal(t, 1, l.Subscribers(models.EventOpenSettings))

	app.Close()
	app.Close()
	assert.Equal(t, 0, l.Subscribers(models.EventOpenSettings))
	assert.Equal(t, 0, l.Subscribers(models.EventError))
}

// slowHistoryBackend holds UsageHistory until released
type slowHistoryBackend struct {
	*fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *slowHistoryBackend) UsageHistory(context.Context, models.HardwareType, int) ([]float64, error) {
	close(b.started)
	<-b.release
	return []float64{1, 2}, nil
}

func TestMountDoesNotBlockReadersDuringPrefill(t *testing.T) {
	backend := &slowHistoryBackend{
		fakeBackend: newFakeBackend(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	app := testApp(backend.fakeBackend)
	app.backend = backend
	defer app.Close()

	mounted := make(chan struct{})
	go func() {
		defer close(mounted)
		app.Mount(context.Background(), SeriesCPUUsage)
	}()

	select {
	case <-backend.started:
	case <-time.After(time.Second):
		t.Fatal("prefill never started")
	}

	read := make(chan []Series)
	go func() { read <- app.Mounted() }()
	select {
	case got := <-read:
		assert.Equal(t, []Series{SeriesCPUUsage}, got)
	case <-time.After(time.Second):
		t.Fatal("Mounted blocked while a prefill was in flight")
	}

	close(backend.release)
	select {
	case <-mounted:
	case <-time.After(time.Second):
		t.Fatal("Mount did not return")
	}
	require.Eventually(t, func() bool {
		return len(values(app.History.Read(SeriesCPUUsage))) >= 2
	}, time.Second, time.Millisecond)
}

func TestUnmountDuringPrefillLeavesNothingRunning(t *testing.T) {
	backend := &slowHistoryBackend{
		fakeBackend: newFakeBackend(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	app := testApp(backend.fakeBackend)
	app.backend = backend
	defer app.Close()

	mounted := make(chan struct{})
	go func() {
		defer close(mounted)
		app.Mount(context.Background(), SeriesCPUUsage)
	}()
	<-backend.started

	app.Unmount(SeriesCPUUsage)
	close(backend.release)
	<-mounted

	assert.Empty(t, app.Mounted())
	assert.False(t, app.History.Has(SeriesCPUUsage))
}
