package frontend

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"hwmonitor/internal/models"
)

// AppConfig tunes the application container
type AppConfig struct {
	// Window is the number of points kept per series
	Window         int
	UsageInterval  time.Duration
	SensorInterval time.Duration
	// ProcessRows is the process table length before ShowAll
	ProcessRows int
	// Prefill seeds usage series from the backend history on mount
	Prefill bool
}

// DefaultAppConfig matches the intervals of the desktop UI
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Window:         DefaultWindow,
		UsageInterval:  UsageInterval,
		SensorInterval: SensorInterval,
		ProcessRows:    10,
		Prefill:        true,
	}
}

// App is the presentation state shared by every view. It is passed
// explicitly to whatever renders it.
type App struct {
	backend Backend
	cfg     AppConfig

	History   *HistoryStore
	Settings  *SettingsStore
	UI        *UIState
	Processes *ProcessTable

	mu            sync.Mutex
	pollers       map[Series]*Poller
	processPoller *Poller
	unsubscribe   []func()

	infoMu sync.Mutex
	info   *models.HardwareInfo
}

// NewApp creates an App without mounted series
func NewApp(backend Backend, cfg AppConfig) *App {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.UsageInterval <= 0 {
		cfg.UsageInterval = UsageInterval
	}
	if cfg.SensorInterval <= 0 {
		cfg.SensorInterval = SensorInterval
	}
	history := NewHistoryStore(cfg.Window)
	history.spacing = cfg.UsageInterval
	return &App{
		backend:   backend,
		cfg:       cfg,
		History:   history,
		Settings:  NewSettingsStore(backend),
		UI:        &UIState{},
		Processes: NewProcessTable(cfg.ProcessRows),
		pollers:   make(map[Series]*Poller),
	}
}

// Backend returns the command interface the App talks to
func (a *App) Backend() Backend {
	return a.backend
}

func (a *App) interval(s Series) time.Duration {
	if s.Named() {
		return a.cfg.SensorInterval
	}
	return a.cfg.UsageInterval
}

// Mount creates the buffer of s and starts polling it. Mounting a mounted
// series is a no-op. The backend is never called with the app lock held, so
// views can read the app while a prefill is in flight.
func (a *App) Mount(ctx context.Context, s Series) {
	a.mu.Lock()
	if _, ok := a.pollers[s]; ok {
		a.mu.Unlock()
		return
	}
	gen := a.History.Seed(s)
	p := NewPoller(s.String(), a.interval(s), s.Named(), SeriesTick(s, a.backend, a.History))
	a.pollers[s] = p
	a.mu.Unlock()

	if a.cfg.Prefill && !s.Named() {
		values, err := a.backend.UsageHistory(ctx, s.Target(), a.cfg.Window)
		if err != nil {
			log.Printf("[APP] No history for %s: %v", s, err)
		} else {
			a.History.AppendBatchAt(s, gen, values)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// unmounted during the prefill
	if a.pollers[s] != p {
		return
	}
	p.Start()
}

// Unmount stops polling s and drops its buffer. Late results are discarded.
func (a *App) Unmount(s Series) {
	a.mu.Lock()
	p, ok := a.pollers[s]
	if ok {
		delete(a.pollers, s)
		a.History.Remove(s)
	}
	a.mu.Unlock()

	if ok {
		p.Stop()
	}
}

// Mounted lists the polled series in display order
func (a *App) Mounted() []Series {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Series, 0, len(a.pollers))
	for s := range a.pollers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MountDisplayTargets mounts the usage series of every enabled display
// target and unmounts the rest
func (a *App) MountDisplayTargets(ctx context.Context) {
	settings := a.Settings.Snapshot()
	for _, target := range models.AllHardwareTypes {
		s, err := UsageSeries(target)
		if err != nil {
			continue
		}
		if settings.HasTarget(target) {
			a.Mount(ctx, s)
		} else {
			a.Unmount(s)
		}
	}
}

// MountProcesses starts refreshing the process table
func (a *App) MountProcesses() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.processPoller != nil {
		return
	}
	a.processPoller = NewPoller("processes", ProcessInterval, true, ProcessTick(a.backend, a.Processes))
	a.processPoller.Start()
}

// UnmountProcesses stops refreshing the process table
func (a *App) UnmountProcesses() {
	a.mu.Lock()
	p := a.processPoller
	a.processPoller = nil
	a.mu.Unlock()

	if p != nil {
		p.Stop()
	}
}

// Attach subscribes the UI flags to backend events
func (a *App) Attach(listener *EventListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unsubscribe = append(a.unsubscribe,
		ListenOpenSettings(listener, a.UI),
		ListenErrors(listener, a.UI),
	)
}

// HardwareInfo returns the cached info, fetching it on first use
func (a *App) HardwareInfo(ctx context.Context) (*models.HardwareInfo, error) {
	a.infoMu.Lock()
	cached := a.info
	a.infoMu.Unlock()

	if cached != nil {
		return cached, nil
	}
	return a.RefreshHardwareInfo(ctx)
}

// RefreshHardwareInfo refetches the info and replaces the cached copy
func (a *App) RefreshHardwareInfo(ctx context.Context) (*models.HardwareInfo, error) {
	info, err := a.backend.HardwareInfo(ctx)
	if err != nil {
		log.Printf("[APP] Hardware info unavailable: %v", err)
		return nil, err
	}

	a.infoMu.Lock()
	a.info = info
	a.infoMu.Unlock()
	return info, nil
}

// Close stops every poller and drops every subscription
func (a *App) Close() {
	for _, s := range a.Mounted() {
		a.Unmount(s)
	}
	a.UnmountProcesses()

	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	for _, off := range unsubscribe {
		off()
	}
}
