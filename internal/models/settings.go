package models

import "fmt"

// Theme is the colour scheme of the UI
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Validate checks the theme is one of the known schemes
func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTheme, string(t))
	}
}

// GraphSize is the rendered chart size
type GraphSize string

// GraphSizes lists the accepted sizes, smallest first
var GraphSizes = []GraphSize{"sm", "md", "lg", "xl", "2xl"}

// Validate checks the size is in GraphSizes
func (s GraphSize) Validate() error {
	for _, known := range GraphSizes {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidGraphSize, string(s))
}

// StateKey names a field of StateSettings
type StateKey string

const StateDisplay StateKey = "display"

// StateSettings holds navigation state that survives restarts
type StateSettings struct {
	Display string `json:"display"`
}

// LineGraphColor holds per-series colours as "r,g,b" strings
type LineGraphColor struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
	GPU    string `json:"gpu"`
}

// Get returns the colour for a target
func (c LineGraphColor) Get(target HardwareType) string {
	switch target {
	case HardwareCPU:
		return c.CPU
	case HardwareMemory:
		return c.Memory
	case HardwareGPU:
		return c.GPU
	}
	return ""
}

// Set replaces the colour for a target
func (c *LineGraphColor) Set(target HardwareType, value string) {
	switch target {
	case HardwareCPU:
		c.CPU = value
	case HardwareMemory:
		c.Memory = value
	case HardwareGPU:
		c.GPU = value
	}
}

// Settings is the snapshot exchanged between backend and clients
type Settings struct {
	Language            string         `json:"language"`
	Theme               Theme          `json:"theme"`
	DisplayTargets      []HardwareType `json:"displayTargets"`
	GraphSize           GraphSize      `json:"graphSize"`
	LineGraphBorder     bool           `json:"lineGraphBorder"`
	LineGraphFill       bool           `json:"lineGraphFill"`
	LineGraphColor      LineGraphColor `json:"lineGraphColor"`
	LineGraphMix        bool           `json:"lineGraphMix"`
	LineGraphShowLegend bool           `json:"lineGraphShowLegend"`
	LineGraphShowScale  bool           `json:"lineGraphShowScale"`
	State               StateSettings  `json:"state"`
}

// Clone returns a deep copy
func (s Settings) Clone() Settings {
	out := s
	out.DisplayTargets = append([]HardwareType(nil), s.DisplayTargets...)
	return out
}

// HasTarget reports whether target is enabled
func (s Settings) HasTarget(target HardwareType) bool {
	for _, t := range s.DisplayTargets {
		if t == target {
			return true
		}
	}
	return false
}

// ValidateDisplayTargets rejects unknown and duplicate entries
func ValidateDisplayTargets(targets []HardwareType) error {
	seen := make(map[HardwareType]bool, len(targets))
	for _, t := range targets {
		if _, err := ParseHardwareType(string(t)); err != nil {
			return err
		}
		if seen[t] {
			return fmt.Errorf("%w: %q", ErrDuplicateTarget, string(t))
		}
		seen[t] = true
	}
	return nil
}

// Validate checks the snapshot invariants
func (s Settings) Validate() error {
	if err := s.Theme.Validate(); err != nil {
		return err
	}
	if err := s.GraphSize.Validate(); err != nil {
		return err
	}
	return ValidateDisplayTargets(s.DisplayTargets)
}
