package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hwmonitor/internal/models"

	"golang.org/x/text/language"
)

// SettingsFilename is the file kept under the data directory
const SettingsFilename = "settings.json"

const (
	settingsErrorTitle   = "Failed to update settings"
	settingsErrorMessage = "If this keeps happening, delete settings.json"
)

type lineGraphColors struct {
	CPU    models.RGB `json:"cpu"`
	Memory models.RGB `json:"memory"`
	GPU    models.RGB `json:"gpu"`
}

// storedSettings is the on-disk layout. Colours are stored as RGB triples and
// rendered as "r,g,b" for clients.
type storedSettings struct {
	Version             string                `json:"version"`
	Language            string                `json:"language"`
	Theme               models.Theme          `json:"theme"`
	DisplayTargets      []models.HardwareType `json:"displayTargets"`
	GraphSize           models.GraphSize      `json:"graphSize"`
	LineGraphBorder     bool                  `json:"lineGraphBorder"`
	LineGraphFill       bool                  `json:"lineGraphFill"`
	LineGraphColor      lineGraphColors       `json:"lineGraphColor"`
	LineGraphMix        bool                  `json:"lineGraphMix"`
	LineGraphShowLegend bool                  `json:"lineGraphShowLegend"`
	LineGraphShowScale  bool                  `json:"lineGraphShowScale"`
	State               models.StateSettings  `json:"state"`
}

func defaultSettings(version string) storedSettings {
	return storedSettings{
		Version:         version,
		Language:        "en",
		Theme:           models.ThemeDark,
		DisplayTargets:  append([]models.HardwareType(nil), models.AllHardwareTypes...),
		GraphSize:       "xl",
		LineGraphBorder: true,
		LineGraphFill:   true,
		LineGraphColor: lineGraphColors{
			CPU:    models.RGB{75, 192, 192},
			Memory: models.RGB{255, 99, 132},
			GPU:    models.RGB{255, 206, 86},
		},
		LineGraphMix:        false,
		LineGraphShowLegend: true,
		LineGraphShowScale:  false,
		State:               models.StateSettings{Display: "dashboard"},
	}
}

func (s storedSettings) clone() storedSettings {
	out := s
	out.DisplayTargets = append([]models.HardwareType(nil), s.DisplayTargets...)
	return out
}

func (s *storedSettings) color(target models.HardwareType) *models.RGB {
	switch target {
	case models.HardwareCPU:
		return &s.LineGraphColor.CPU
	case models.HardwareMemory:
		return &s.LineGraphColor.Memory
	case models.HardwareGPU:
		return &s.LineGraphColor.GPU
	}
	return nil
}

// SettingsService owns the authoritative settings and persists every change
type SettingsService struct {
	mu       sync.Mutex
	path     string
	settings storedSettings
	emitter  EventEmitter
}

// NewSettingsService loads settings.json from dataDir. A missing or corrupt file
// falls back to the defaults. emitter may be nil.
func NewSettingsService(dataDir, version string, emitter EventEmitter) *SettingsService {
	s := &SettingsService{
		path:     filepath.Join(dataDir, SettingsFilename),
		settings: defaultSettings(version),
		emitter:  emitter,
	}

	loaded, err := s.readFile()
	switch {
	case err == nil:
		s.settings = loaded
		log.Printf("[SETTINGS] Loaded %s", s.path)
	case os.IsNotExist(err):
		log.Printf("[SETTINGS] No settings file at %s, using defaults", s.path)
	default:
		log.Printf("[SETTINGS] Could not read %s, using defaults: %v", s.path, err)
	}

	return s
}

func (s *SettingsService) readFile() (storedSettings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return storedSettings{}, err
	}

	loaded := s.settings.clone()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return storedSettings{}, fmt.Errorf("deserialize settings: %w", err)
	}
	if err := validateStored(loaded); err != nil {
		return storedSettings{}, err
	}
	return loaded, nil
}

func validateStored(s storedSettings) error {
	if err := s.Theme.Validate(); err != nil {
		return err
	}
	if err := s.GraphSize.Validate(); err != nil {
		return err
	}
	return models.ValidateDisplayTargets(s.DisplayTargets)
}

// writeFile replaces the settings file atomically
func (s *SettingsService) writeFile(settings storedSettings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// update applies mutate to a copy, persists it, and only then commits it.
// Persistence failures are reported to listeners as an error_event.
func (s *SettingsService) update(op string, mutate func(*storedSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.clone()
	if err := mutate(&next); err != nil {
		return err
	}

	if err := s.writeFile(next); err != nil {
		log.Printf("[SETTINGS] %s failed: %v", op, err)
		s.emitError()
		return err
	}

	s.settings = next
	return nil
}

func (s *SettingsService) emitError() {
	if s.emitter == nil {
		return
	}
	payload := models.ErrorPayload{Title: settingsErrorTitle, Message: settingsErrorMessage}
	if err := s.emitter.Emit(models.EventError, payload); err != nil {
		log.Printf("[SETTINGS] Failed to emit error event: %v", err)
	}
}

// Snapshot returns the client view of the settings
func (s *SettingsService) Snapshot() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.settings
	return models.Settings{
		Language:        cur.Language,
		Theme:           cur.Theme,
		DisplayTargets:  append([]models.HardwareType{}, cur.DisplayTargets...),
		GraphSize:       cur.GraphSize,
		LineGraphBorder: cur.LineGraphBorder,
		LineGraphFill:   cur.LineGraphFill,
		LineGraphColor: models.LineGraphColor{
			CPU:    cur.LineGraphColor.CPU.String(),
			Memory: cur.LineGraphColor.Memory.String(),
			GPU:    cur.LineGraphColor.GPU.String(),
		},
		LineGraphMix:        cur.LineGraphMix,
		LineGraphShowLegend: cur.LineGraphShowLegend,
		LineGraphShowScale:  cur.LineGraphShowScale,
		State:               cur.State,
	}
}

// SetLanguage persists a BCP 47 language tag in canonical form
func (s *SettingsService) SetLanguage(lang string) error {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil || tag == language.Und {
		return fmt.Errorf("%w: %q", models.ErrInvalidLanguage, lang)
	}
	return s.update("set_language", func(st *storedSettings) error {
		st.Language = tag.String()
		return nil
	})
}

// SetTheme persists the colour scheme
func (s *SettingsService) SetTheme(theme models.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	return s.update("set_theme", func(st *storedSettings) error {
		st.Theme = theme
		return nil
	})
}

// SetDisplayTargets persists the set of charted devices
func (s *SettingsService) SetDisplayTargets(targets []models.HardwareType) error {
	if err := models.ValidateDisplayTargets(targets); err != nil {
		return err
	}
	return s.update("set_display_targets", func(st *storedSettings) error {
		st.DisplayTargets = append([]models.HardwareType{}, targets...)
		return nil
	})
}

// SetGraphSize persists the chart size
func (s *SettingsService) SetGraphSize(size models.GraphSize) error {
	if err := size.Validate(); err != nil {
		return err
	}
	return s.update("set_graph_size", func(st *storedSettings) error {
		st.GraphSize = size
		return nil
	})
}

func (s *SettingsService) SetLineGraphBorder(v bool) error {
	return s.update("set_line_graph_border", func(st *storedSettings) error {
		st.LineGraphBorder = v
		return nil
	})
}

func (s *SettingsService) SetLineGraphFill(v bool) error {
	return s.update("set_line_graph_fill", func(st *storedSettings) error {
		st.LineGraphFill = v
		return nil
	})
}

func (s *SettingsService) SetLineGraphMix(v bool) error {
	return s.update("set_line_graph_mix", func(st *storedSettings) error {
		st.LineGraphMix = v
		return nil
	})
}

func (s *SettingsService) SetLineGraphShowLegend(v bool) error {
	return s.update("set_line_graph_show_legend", func(st *storedSettings) error {
		st.LineGraphShowLegend = v
		return nil
	})
}

func (s *SettingsService) SetLineGraphShowScale(v bool) error {
	return s.update("set_line_graph_show_scale", func(st *storedSettings) error {
		st.LineGraphShowScale = v
		return nil
	})
}

// SetLineGraphColor stores a "#rrggbb" colour and returns the canonical "r,g,b"
func (s *SettingsService) SetLineGraphColor(target models.HardwareType, hex string) (string, error) {
	if _, err := models.ParseHardwareType(string(target)); err != nil {
		return "", err
	}
	rgb, err := models.ParseHexRGB(strings.ToLower(strings.TrimSpace(hex)))
	if err != nil {
		return "", err
	}

	err = s.update("set_line_graph_color", func(st *storedSettings) error {
		*st.color(target) = rgb
		return nil
	})
	if err != nil {
		return "", err
	}
	return rgb.String(), nil
}

// SetState persists one navigation state field
func (s *SettingsService) SetState(key models.StateKey, value string) error {
	return s.update("set_state", func(st *storedSettings) error {
		switch key {
		case models.StateDisplay:
			st.State.Display = value
		default:
			return fmt.Errorf("%w: %q", models.ErrInvalidStateKey, string(key))
		}
		return nil
	})
}

// Path returns the settings file location
func (s *SettingsService) Path() string {
	return s.path
}
