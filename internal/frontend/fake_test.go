package frontend

import (
	"context"
	"sync"

	"hwmonitor/internal/models"
)

type setCall struct {
	Field string
	Value interface{}
}

// fakeBackend counts cpu usage up from 1 and records every setter call
type fakeBackend struct {
	mu sync.Mutex

	cpu       float64
	cpuErr    error
	temps     []models.NameValue
	history   []float64
	processes []models.ProcessInfo
	info      *models.HardwareInfo
	infoCalls int

	settings models.Settings
	setErr   error
	calls    []setCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		settings: models.Settings{
			Language:       "en",
			Theme:          models.ThemeLight,
			DisplayTargets: []models.HardwareType{models.HardwareMemory},
			GraphSize:      "xl",
			LineGraphColor: models.LineGraphColor{CPU: "75,192,192", Memory: "255,99,132", GPU: "255,206,86"},
			State:          models.StateSettings{Display: "dashboard"},
		},
		info: &models.HardwareInfo{CPU: &models.CPUInfo{Name: "Ryzen 7", CoreCount: 8}},
	}
}

func (f *fakeBackend) CPUUsage(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cpuErr != nil {
		return 0, f.cpuErr
	}
	f.cpu++
	return f.cpu, nil
}

func (f *fakeBackend) MemoryUsage(context.Context) (float64, error) { return 50, nil }
func (f *fakeBackend) GPUUsage(context.Context) (float64, error)    { return 5, nil }

func (f *fakeBackend) UsageHistory(_ context.Context, _ models.HardwareType, seconds int) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.history
	if seconds < len(h) {
		h = h[len(h)-seconds:]
	}
	return append([]float64(nil), h...), nil
}

func (f *fakeBackend) CPUTemperature(context.Context) ([]models.NameValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.temps, nil
}

func (f *fakeBackend) GPUTemperature(context.Context) ([]models.NameValue, error) { return nil, nil }
func (f *fakeBackend) CPUFan(context.Context) ([]models.NameValue, error)         { return nil, nil }
func (f *fakeBackend) GPUFan(context.Context) ([]models.NameValue, error)         { return nil, nil }

func (f *fakeBackend) HardwareInfo(context.Context) (*models.HardwareInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	return f.info, nil
}

func (f *fakeBackend) ProcessList(context.Context) ([]models.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processes, nil
}

func (f *fakeBackend) Settings(context.Context) (models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings.Clone(), nil
}

func (f *fakeBackend) record(field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, setCall{Field: field, Value: value})
	return f.setErr
}

func (f *fakeBackend) setCalls() []setCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]setCall(nil), f.calls...)
}

func (f *fakeBackend) SetLanguage(_ context.Context, v string) error {
	return f.record("language", v)
}
func (f *fakeBackend) SetTheme(_ context.Context, v models.Theme) error {
	return f.record("theme", v)
}
func (f *fakeBackend) SetDisplayTargets(_ context.Context, v []models.HardwareType) error {
	return f.record("display_targets", append([]models.HardwareType(nil), v...))
}
func (f *fakeBackend) SetGraphSize(_ context.Context, v models.GraphSize) error {
	return f.record("graph_size", v)
}
func (f *fakeBackend) SetLineGraphBorder(_ context.Context, v bool) error {
	return f.record("line_graph_border", v)
}
func (f *fakeBackend) SetLineGraphFill(_ context.Context, v bool) error {
	return f.record("line_graph_fill", v)
}
func (f *fakeBackend) SetLineGraphMix(_ context.Context, v bool) error {
	return f.record("line_graph_mix", v)
}
func (f *fakeBackend) SetLineGraphShowLegend(_ context.Context, v bool) error {
	return f.record("line_graph_show_legend", v)
}
func (f *fakeBackend) SetLineGraphShowScale(_ context.Context, v bool) error {
	return f.record("line_graph_show_scale", v)
}

func (f *fakeBackend) SetLineGraphColor(_ context.Context, target models.HardwareType, color string) (string, error) {
	if err := f.record("line_graph_color", color); err != nil {
		return "", err
	}
	rgb, err := models.ParseHexRGB(color)
	if err != nil {
		return "", err
	}
	return rgb.String(), nil
}

func (f *fakeBackend) SetState(_ context.Context, key models.StateKey, value string) error {
	return f.record("state", string(key)+"="+value)
}
