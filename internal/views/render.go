package views

import (
	"fmt"
	"math"
	"strings"

	"hwmonitor/internal/frontend"
	"hwmonitor/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one rune per point, scaled to [0, max]. Padding points
// render as blanks.
func Sparkline(points []frontend.Point, max float64) string {
	if max <= 0 {
		for _, p := range points {
			if p.Valid && p.Value > max {
				max = p.Value
			}
		}
	}
	if max <= 0 {
		max = 1
	}

	var b strings.Builder
	for _, p := range points {
		if !p.Valid {
			b.WriteRune(' ')
			continue
		}
		ratio := math.Min(math.Max(p.Value/max, 0), 1)
		b.WriteRune(sparkBlocks[int(math.Round(ratio*float64(len(sparkBlocks)-1)))])
	}
	return b.String()
}

// seriesColor maps the configured "r,g,b" line colour to a terminal colour
func seriesColor(settings models.Settings, target models.HardwareType) lipgloss.TerminalColor {
	rgb, err := models.ParseRGBString(settings.LineGraphColor.Get(target))
	if err != nil {
		return colorMuted
	}
	return lipgloss.Color(rgb.Hex())
}

func latestValue(points []frontend.Point) string {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Valid {
			return fmt.Sprintf("%.0f", points[i].Value)
		}
	}
	return "--"
}

// renderUsage draws one chart row for a usage series
func renderUsage(s frontend.Series, points []frontend.Point, settings models.Settings) string {
	style := lipgloss.NewStyle().Foreground(seriesColor(settings, s.Target()))
	label := styleLabel.Render(fmt.Sprintf("%-14s", s.String()))
	value := fmt.Sprintf("%4s%s", latestValue(points), s.Unit())

	spark := style.Render(Sparkline(points, 100))
	if settings.LineGraphBorder {
		spark = styleBorder.BorderForeground(seriesColor(settings, s.Target())).Render(spark)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, label, " ", spark, " ", value)
}

// renderNamed draws one row per sensor of a temperature or fan series
func renderNamed(s frontend.Series, windows []frontend.NamedWindow, settings models.Settings) string {
	style := lipgloss.NewStyle().Foreground(seriesColor(settings, s.Target()))
	lines := []string{styleLabel.Render(s.String())}
	if len(windows) == 0 {
		lines = append(lines, styleMuted.Render("  no sensors"))
	}
	for _, w := range windows {
		lines = append(lines, fmt.Sprintf("  %-24s %s %s%s",
			truncate(w.Name, 24), style.Render(Sparkline(w.Points, 0)), latestValue(w.Points), s.Unit()))
	}
	return strings.Join(lines, "\n")
}

var sortColumns = []frontend.SortKey{frontend.SortPID, frontend.SortName, frontend.SortCPU, frontend.SortMemory}

// renderProcesses draws the process table with the active sort marked
func renderProcesses(rows []models.ProcessInfo, key frontend.SortKey, dir frontend.SortDirection, sorted bool) string {
	widths := []int{8, 28, 10, 14}
	var header []string
	for i, col := range sortColumns {
		name := col.String()
		if sorted && col == key {
			if dir == frontend.Ascending {
				name += " ▲"
			} else {
				name += " ▼"
			}
		}
		header = append(header, fmt.Sprintf("%-*s", widths[i], name))
	}

	lines := []string{styleHeader.Render(strings.Join(header, ""))}
	for _, p := range rows {
		lines = append(lines, fmt.Sprintf("%-*d%-*s%-*s%-*s",
			widths[0], p.PID,
			widths[1], truncate(p.Name, widths[1]-2),
			widths[2], fmt.Sprintf("%.1f%%", p.CPUUsage),
			widths[3], fmt.Sprintf("%.1f MB", p.MemoryUsage)))
	}
	return strings.Join(lines, "\n")
}

// renderInfo draws the static hardware summary
func renderInfo(info *models.HardwareInfo) string {
	if info == nil {
		return styleMuted.Render("hardware info unavailable")
	}
	var lines []string
	if info.CPU != nil {
		lines = append(lines, styleLabel.Render("CPU:")+fmt.Sprintf(" %s (%s, %d cores, %d %s)",
			info.CPU.Name, info.CPU.Vendor, info.CPU.CoreCount, info.CPU.Clock, info.CPU.ClockUnit))
	}
	if info.Memory != nil {
		lines = append(lines, styleLabel.Render("RAM:")+" "+info.Memory.Size)
	}
	for _, g := range info.GPUs {
		lines = append(lines, styleLabel.Render("GPU:")+fmt.Sprintf(" %s (%s, %s)", g.Name, g.VendorName, g.MemorySize))
	}
	return strings.Join(lines, "\n")
}

// renderSettings draws the settings panel
func renderSettings(s models.Settings) string {
	targets := make([]string, len(s.DisplayTargets))
	for i, t := range s.DisplayTargets {
		targets[i] = string(t)
	}
	rows := []struct{ label, value string }{
		{"Language", s.Language},
		{"Theme", string(s.Theme)},
		{"Display targets", strings.Join(targets, ", ")},
		{"Graph size", string(s.GraphSize)},
		{"Border", fmt.Sprint(s.LineGraphBorder)},
		{"Fill", fmt.Sprint(s.LineGraphFill)},
		{"Mix", fmt.Sprint(s.LineGraphMix)},
		{"Legend", fmt.Sprint(s.LineGraphShowLegend)},
		{"Scale", fmt.Sprint(s.LineGraphShowScale)},
		{"CPU colour", s.LineGraphColor.CPU},
		{"Memory colour", s.LineGraphColor.Memory},
		{"GPU colour", s.LineGraphColor.GPU},
	}
	lines := []string{styleHeader.Render("Settings")}
	for _, r := range rows {
		lines = append(lines, styleLabel.Render(fmt.Sprintf("%-16s", r.label))+r.value)
	}
	return stylePanel.Render(strings.Join(lines, "\n"))
}

// renderErrorModal draws a backend error_event
func renderErrorModal(p models.ErrorPayload) string {
	return styleError.Render(styleHeader.Render(p.Title) + "\n" + p.Message + "\n\n" + styleMuted.Render("esc to close"))
}

// SafeRender runs render and turns a panic into the generic failure screen
func SafeRender(render func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = "An unexpected error has occurred.\n\n" + fmt.Sprint(r)
		}
	}()
	return render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
