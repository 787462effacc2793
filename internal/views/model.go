package views

import (
	"context"
	"fmt"
	"time"

	"hwmonitor/internal/frontend"
	"hwmonitor/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshInterval = 500 * time.Millisecond
	commandTimeout  = 10 * time.Second
)

type refreshMsg time.Time

type infoMsg struct {
	info *models.HardwareInfo
	err  error
}

type settingsMsg struct {
	op  string
	err error
}

// Model is the Bubbletea model of the watch view. All data lives in the
// App; the model only keeps terminal state.
type Model struct {
	app    *frontend.App
	help   help.Model
	width  int
	height int
	ready  bool
	info   *models.HardwareInfo
	status string
}

// NewModel renders app
func NewModel(app *frontend.App) Model {
	return Model{app: app, help: help.New()}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) fetchInfoCmd(refresh bool) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if refresh {
			info, err := app.RefreshHardwareInfo(ctx)
			return infoMsg{info: info, err: err}
		}
		info, err := app.HardwareInfo(ctx)
		return infoMsg{info: info, err: err}
	}
}

// settingsCmd runs a settings update off the UI goroutine
func (m Model) settingsCmd(op string, fn func(ctx context.Context, app *frontend.App) error) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return settingsMsg{op: op, err: fn(ctx, app)}
	}
}

func (m Model) toggleTargetCmd(target models.HardwareType) tea.Cmd {
	return m.settingsCmd("display "+string(target), func(ctx context.Context, app *frontend.App) error {
		if _, err := app.Settings.ToggleDisplayTarget(ctx, target); err != nil {
			return err
		}
		app.MountDisplayTargets(ctx)
		return nil
	})
}

func (m Model) toggleThemeCmd() tea.Cmd {
	next := models.ThemeDark
	if m.app.Settings.Snapshot().Theme == models.ThemeDark {
		next = models.ThemeLight
	}
	return m.settingsCmd("theme", func(ctx context.Context, app *frontend.App) error {
		return app.Settings.UpdateField(ctx, frontend.FieldTheme, next)
	})
}

func (m Model) displayStateCmd(screen string) tea.Cmd {
	return m.settingsCmd("screen", func(ctx context.Context, app *frontend.App) error {
		return app.Settings.UpdateDisplayState(ctx, models.StateDisplay, screen)
	})
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(), m.fetchInfoCmd(false))
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case refreshMsg:
		return m, refreshCmd()

	case infoMsg:
		if msg.err != nil {
			m.status = "hardware info: " + msg.err.Error()
		} else {
			m.info = msg.info
		}

	case settingsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %v", msg.op, msg.err)
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ui := m.app.UI
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Dismiss):
		if _, ok := ui.Error(); ok {
			ui.DismissError()
			return m, nil
		}
		if ui.ShowSettings() {
			ui.SetShowSettings(false)
			return m, m.displayStateCmd("dashboard")
		}
	case key.Matches(msg, keys.Settings):
		show := !ui.ShowSettings()
		ui.SetShowSettings(show)
		screen := "dashboard"
		if show {
			screen = "settings"
		}
		return m, m.displayStateCmd(screen)
	case key.Matches(msg, keys.ToggleCPU):
		return m, m.toggleTargetCmd(models.HardwareCPU)
	case key.Matches(msg, keys.ToggleMem):
		return m, m.toggleTargetCmd(models.HardwareMemory)
	case key.Matches(msg, keys.ToggleGPU):
		return m, m.toggleTargetCmd(models.HardwareGPU)
	case key.Matches(msg, keys.Theme):
		return m, m.toggleThemeCmd()
	case key.Matches(msg, keys.SortPID):
		m.app.Processes.RequestSort(frontend.SortPID)
	case key.Matches(msg, keys.SortName):
		m.app.Processes.RequestSort(frontend.SortName)
	case key.Matches(msg, keys.SortCPU):
		m.app.Processes.RequestSort(frontend.SortCPU)
	case key.Matches(msg, keys.SortMemory):
		m.app.Processes.RequestSort(frontend.SortMemory)
	case key.Matches(msg, keys.ShowAll):
		m.app.Processes.ShowAll()
	case key.Matches(msg, keys.Refresh):
		return m, m.fetchInfoCmd(true)
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return SafeRender(m.render)
}

func (m Model) render() string {
	settings := m.app.Settings.Snapshot()
	lipgloss.SetHasDarkBackground(settings.Theme != models.ThemeLight)

	sections := []string{styleHeader.Render("hwmonitor")}

	if p, ok := m.app.UI.Error(); ok {
		sections = append(sections, renderErrorModal(p))
	}

	if m.app.UI.ShowSettings() {
		sections = append(sections, renderSettings(settings))
	} else {
		sections = append(sections, renderInfo(m.info), "")
		sections = append(sections, m.renderCharts(settings)...)
		sortKey, dir, sorted := m.app.Processes.Sort()
		sections = append(sections, "", renderProcesses(m.app.Processes.Rows(), sortKey, dir, sorted))
	}

	if m.status != "" {
		sections = append(sections, styleMuted.Render(m.status))
	}
	sections = append(sections, m.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderCharts(settings models.Settings) []string {
	var out []string
	for _, s := range m.app.Mounted() {
		if s.Named() {
			out = append(out, renderNamed(s, m.app.History.ReadNamed(s), settings))
			continue
		}
		if !settings.HasTarget(s.Target()) {
			continue
		}
		out = append(out, renderUsage(s, m.app.History.Read(s), settings))
	}
	if len(out) == 0 {
		out = append(out, styleMuted.Render("no charts enabled, press c, m or g"))
	}
	return out
}
