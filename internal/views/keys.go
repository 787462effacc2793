package views

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the watch view key bindings.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit       key.Binding
	Settings   key.Binding
	Dismiss    key.Binding
	ToggleCPU  key.Binding
	ToggleMem  key.Binding
	ToggleGPU  key.Binding
	Theme      key.Binding
	SortPID    key.Binding
	SortName   key.Binding
	SortCPU    key.Binding
	SortMemory key.Binding
	ShowAll    key.Binding
	Refresh    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Settings, k.SortCPU, k.ShowAll, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleCPU, k.ToggleMem, k.ToggleGPU, k.Theme},
		{k.SortPID, k.SortName, k.SortCPU, k.SortMemory, k.ShowAll},
		{k.Settings, k.Dismiss, k.Refresh, k.Quit},
	}
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Settings:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
	Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	ToggleCPU:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cpu chart")),
	ToggleMem:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "memory chart")),
	ToggleGPU:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "gpu chart")),
	Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	SortPID:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "sort pid")),
	SortName:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "sort name")),
	SortCPU:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "sort cpu")),
	SortMemory: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "sort memory")),
	ShowAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all processes")),
	Refresh:    key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh info")),
}
