package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"hwmonitor/internal/frontend"
	"hwmonitor/internal/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isQuitCmd executes a tea.Cmd and returns true if it produces a tea.QuitMsg.
func isQuitCmd(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// memBackend is an in-memory command interface
type memBackend struct {
	settings models.Settings
}

func (b *memBackend) CPUUsage(context.Context) (float64, error)    { return 30, nil }
func (b *memBackend) MemoryUsage(context.Context) (float64, error) { return 60, nil }
func (b *memBackend) GPUUsage(context.Context) (float64, error)    { return 90, nil }
func (b *memBackend) UsageHistory(context.Context, models.HardwareType, int) ([]float64, error) {
	return nil, nil
}
func (b *memBackend) CPUTemperature(context.Context) ([]models.NameValue, error) { return nil, nil }
func (b *memBackend) GPUTemperature(context.Context) ([]models.NameValue, error) { return nil, nil }
func (b *memBackend) CPUFan(context.Context) ([]models.NameValue, error)         { return nil, nil }
func (b *memBackend) GPUFan(context.Context) ([]models.NameValue, error)         { return nil, nil }
func (b *memBackend) HardwareInfo(context.Context) (*models.HardwareInfo, error) {
	return &models.HardwareInfo{CPU: &models.CPUInfo{Name: "Test CPU", Vendor: "AMD", CoreCount: 4}}, nil
}
func (b *memBackend) ProcessList(context.Context) ([]models.ProcessInfo, error) { return nil, nil }
func (b *memBackend) Settings(context.Context) (models.Settings, error) {
	return b.settings.Clone(), nil
}
func (b *memBackend) SetLanguage(_ context.Context, v string) error { b.settings.Language = v; return nil }
func (b *memBackend) SetTheme(_ context.Context, v models.Theme) error {
	b.settings.Theme = v
	return nil
}
func (b *memBackend) SetDisplayTargets(_ context.Context, v []models.HardwareType) error {
	b.settings.DisplayTargets = v
	return nil
}
func (b *memBackend) SetGraphSize(context.Context, models.GraphSize) error { return nil }
func (b *memBackend) SetLineGraphBorder(context.Context, bool) error       { return nil }
func (b *memBackend) SetLineGraphFill(context.Context, bool) error         { return nil }
func (b *memBackend) SetLineGraphMix(context.Context, bool) error          { return nil }
func (b *memBackend) SetLineGraphShowLegend(context.Context, bool) error   { return nil }
func (b *memBackend) SetLineGraphShowScale(context.Context, bool) error    { return nil }
func (b *memBackend) SetLineGraphColor(_ context.Context, _ models.HardwareType, c string) (string, error) {
	return c, nil
}
func (b *memBackend) SetState(context.Context, models.StateKey, string) error { return nil }

func newTestApp(t *testing.T) *frontend.App {
	t.Helper()
	backend := &memBackend{settings: models.Settings{
		Theme:          models.ThemeDark,
		DisplayTargets: []models.HardwareType{models.HardwareCPU},
		LineGraphColor: models.LineGraphColor{CPU: "75,192,192", Memory: "255,99,132", GPU: "255,206,86"},
	}}
	cfg := frontend.DefaultAppConfig()
	cfg.UsageInterval = time.Hour
	app := frontend.NewApp(backend, cfg)
	_, err := app.Settings.Load(context.Background())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func ready(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestSparkline(t *testing.T) {
	points := []frontend.Point{{}, {Value: 0, Valid: true}, {Value: 50, Valid: true}, {Value: 100, Valid: true}}
	assert.Equal(t, " ▁▅█", Sparkline(points, 100))
	assert.Equal(t, "  ", Sparkline([]frontend.Point{{}, {}}, 0))
}

func TestSafeRenderCatchesPanics(t *testing.T) {
	out := SafeRender(func() string { panic("boom") })
	assert.Contains(t, out, "An unexpected error has occurred.")
	assert.Contains(t, out, "boom")
	assert.Equal(t, "ok", SafeRender(func() string { return "ok" }))
}

func TestModelQuit(t *testing.T) {
	m := NewModel(newTestApp(t))
	_, cmd := m.Update(runes("q"))
	assert.True(t, isQuitCmd(cmd))
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Initializing...", NewModel(newTestApp(t)).View())
}

func TestViewShowsMountedCharts(t *testing.T) {
	app := newTestApp(t)
	app.MountDisplayTargets(context.Background())
	app.History.Append(frontend.SeriesCPUUsage, 42)

	view := ready(NewModel(app)).View()
	assert.Contains(t, view, "cpu-usage")
	assert.Contains(t, view, "42%")
	assert.NotContains(t, view, "memory-usage")
}

func TestSortKeysReachProcessTable(t *testing.T) {
	app := newTestApp(t)
	m := ready(NewModel(app))

	next, _ := m.Update(runes("3"))
	next, _ = next.Update(runes("3"))
	key, dir, ok := app.Processes.Sort()
	assert.True(t, ok)
	assert.Equal(t, frontend.SortCPU, key)
	assert.Equal(t, frontend.Descending, dir)
	assert.Contains(t, next.View(), "CPU Usage ▼")
}

func TestSettingsPanelAndErrorModal(t *testing.T) {
	app := newTestApp(t)
	m := ready(NewModel(app))

	next, cmd := m.Update(runes("s"))
	require.NotNil(t, cmd)
	assert.True(t, app.UI.ShowSettings())
	assert.Contains(t, next.View(), "Display targets")

	app.UI.ShowError(models.ErrorPayload{Title: "Failed to update settings", Message: "delete settings.json"})
	view := next.View()
	assert.True(t, strings.Contains(view, "Failed to update settings"))

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, ok := app.UI.Error()
	assert.False(t, ok)
	assert.True(t, app.UI.ShowSettings(), "first esc closes only the modal")

	next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, app.UI.ShowSettings())
}

func TestToggleTargetCommand(t *testing.T) {
	app := newTestApp(t)
	m := ready(NewModel(app))

	_, cmd := m.Update(runes("g"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, settingsMsg{}, msg)
	assert.NoError(t, msg.(settingsMsg).err)

	assert.True(t, app.Settings.Snapshot().HasTarget(models.HardwareGPU))
	assert.Contains(t, app.Mounted(), frontend.SeriesGPUUsage)
}

func TestInfoMessageRendersHardware(t *testing.T) {
	app := newTestApp(t)
	m := ready(NewModel(app))

	msg := m.fetchInfoCmd(false)()
	next, _ := m.Update(msg)
	assert.Contains(t, next.View(), "Test CPU")
}
