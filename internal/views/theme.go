package views

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#58A6FF"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
	colorDanger  = lipgloss.Color("#F85149")
)

var (
	styleLabel  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	styleBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	stylePanel  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1)
	styleError  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorDanger).Padding(0, 1)
)
