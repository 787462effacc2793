package frontend

import (
	"context"
	"fmt"
	"log"
	"sync"

	"hwmonitor/internal/models"
)

// Field names a top-level settings field that UpdateField can change
type Field int

const (
	FieldLanguage Field = iota
	FieldTheme
	FieldDisplayTargets
	FieldGraphSize
	FieldLineGraphBorder
	FieldLineGraphFill
	FieldLineGraphMix
	FieldLineGraphShowLegend
	FieldLineGraphShowScale
)

// Fields lists every field accepted by UpdateField
var Fields = []Field{
	FieldLanguage, FieldTheme, FieldDisplayTargets, FieldGraphSize,
	FieldLineGraphBorder, FieldLineGraphFill, FieldLineGraphMix,
	FieldLineGraphShowLegend, FieldLineGraphShowScale,
}

func (f Field) String() string {
	switch f {
	case FieldLanguage:
		return "language"
	case FieldTheme:
		return "theme"
	case FieldDisplayTargets:
		return "display_targets"
	case FieldGraphSize:
		return "graph_size"
	case FieldLineGraphBorder:
		return "line_graph_border"
	case FieldLineGraphFill:
		return "line_graph_fill"
	case FieldLineGraphMix:
		return "line_graph_mix"
	case FieldLineGraphShowLegend:
		return "line_graph_show_legend"
	case FieldLineGraphShowScale:
		return "line_graph_show_scale"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

type fieldUpdate struct {
	persist func(ctx context.Context) error
	apply   func(st *models.Settings)
}

func bindField[T any](field Field, value interface{}, persist func(context.Context, T) error, apply func(*models.Settings, T)) (fieldUpdate, error) {
	v, ok := value.(T)
	if !ok {
		return fieldUpdate{}, fmt.Errorf("%s expects %T, got %T", field, *new(T), value)
	}
	return fieldUpdate{
		persist: func(ctx context.Context) error { return persist(ctx, v) },
		apply:   func(st *models.Settings) { apply(st, v) },
	}, nil
}

// SettingsStore caches the backend settings. Field updates are persisted
// first and applied locally only once the backend accepted them; navigation
// state is the exception and is applied even when persisting fails.
type SettingsStore struct {
	backend SettingsBackend

	// writeMu serialises updates so persist and apply are not interleaved
	writeMu  sync.Mutex
	mu       sync.RWMutex
	settings models.Settings
	loaded   bool
}

func NewSettingsStore(backend SettingsBackend) *SettingsStore {
	return &SettingsStore{backend: backend}
}

// Load replaces the local snapshot with the backend's
func (s *SettingsStore) Load(ctx context.Context) (models.Settings, error) {
	settings, err := s.backend.Settings(ctx)
	if err != nil {
		log.Printf("[SETTINGS] Load failed: %v", err)
		return models.Settings{}, err
	}

	s.mu.Lock()
	s.settings = settings.Clone()
	s.loaded = true
	s.mu.Unlock()
	return settings, nil
}

// Loaded reports whether Load has succeeded at least once
func (s *SettingsStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current settings
func (s *SettingsStore) Snapshot() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *SettingsStore) apply(fn func(st *models.Settings)) {
	s.mu.Lock()
	fn(&s.settings)
	s.mu.Unlock()
}

func (s *SettingsStore) fieldUpdate(field Field, value interface{}) (fieldUpdate, error) {
	b := s.backend
	switch field {
	case FieldLanguage:
		return bindField(field, value, b.SetLanguage, func(st *models.Settings, v string) { st.Language = v })
	case FieldTheme:
		return bindField(field, value, b.SetTheme, func(st *models.Settings, v models.Theme) { st.Theme = v })
	case FieldDisplayTargets:
		return bindField(field, value, b.SetDisplayTargets, func(st *models.Settings, v []models.HardwareType) {
			st.DisplayTargets = append([]models.HardwareType{}, v...)
		})
	case FieldGraphSize:
		return bindField(field, value, b.SetGraphSize, func(st *models.Settings, v models.GraphSize) { st.GraphSize = v })
	case FieldLineGraphBorder:
		return bindField(field, value, b.SetLineGraphBorder, func(st *models.Settings, v bool) { st.LineGraphBorder = v })
	case FieldLineGraphFill:
		return bindField(field, value, b.SetLineGraphFill, func(st *models.Settings, v bool) { st.LineGraphFill = v })
	case FieldLineGraphMix:
		return bindField(field, value, b.SetLineGraphMix, func(st *models.Settings, v bool) { st.LineGraphMix = v })
	case FieldLineGraphShowLegend:
		return bindField(field, value, b.SetLineGraphShowLegend, func(st *models.Settings, v bool) { st.LineGraphShowLegend = v })
	case FieldLineGraphShowScale:
		return bindField(field, value, b.SetLineGraphShowScale, func(st *models.Settings, v bool) { st.LineGraphShowScale = v })
	}
	return fieldUpdate{}, fmt.Errorf("unknown settings %v", field)
}

// UpdateField persists value and then applies it. On failure the local
// snapshot is left unchanged and the error is logged and returned.
func (s *SettingsStore) UpdateField(ctx context.Context, field Field, value interface{}) error {
	update, err := s.fieldUpdate(field, value)
	if err != nil {
		log.Printf("[SETTINGS] %v", err)
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := update.persist(ctx); err != nil {
		log.Printf("[SETTINGS] Failed to persist %s: %v", field, err)
		return err
	}
	s.apply(update.apply)
	return nil
}

// ToggleDisplayTarget adds target when absent and removes it when present,
// then persists the resulting set. It returns the set now in effect.
func (s *SettingsStore) ToggleDisplayTarget(ctx context.Context, target models.HardwareType) ([]models.HardwareType, error) {
	if _, err := models.ParseHardwareType(string(target)); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot().DisplayTargets
	next := make([]models.HardwareType, 0, len(current)+1)
	found := false
	for _, t := range current {
		if t == target {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, target)
	}

	if err := s.backend.SetDisplayTargets(ctx, next); err != nil {
		log.Printf("[SETTINGS] Failed to persist display_targets: %v", err)
		return current, err
	}
	s.apply(func(st *models.Settings) { st.DisplayTargets = next })
	return append([]models.HardwareType(nil), next...), nil
}

// UpdateLineColor stores a "#rrggbb" colour. The backend's canonical form
// becomes the local value.
func (s *SettingsStore) UpdateLineColor(ctx context.Context, target models.HardwareType, color string) (string, error) {
	if _, err := models.ParseHardwareType(string(target)); err != nil {
		return "", err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	canonical, err := s.backend.SetLineGraphColor(ctx, target, color)
	if err != nil {
		log.Printf("[SETTINGS] Failed to persist line colour for %s: %v", target, err)
		return "", err
	}
	s.apply(func(st *models.Settings) { st.LineGraphColor.Set(target, canonical) })
	return canonical, nil
}

// UpdateDisplayState changes navigation state. The local value is applied
// even when persisting fails; the error is still returned.
func (s *SettingsStore) UpdateDisplayState(ctx context.Context, key models.StateKey, value string) error {
	var apply func(st *models.Settings)
	switch key {
	case models.StateDisplay:
		apply = func(st *models.Settings) { st.State.Display = value }
	default:
		return fmt.Errorf("%w: %q", models.ErrInvalidStateKey, string(key))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.backend.SetState(ctx, key, value)
	if err != nil {
		log.Printf("[SETTINGS] Failed to persist state %s, keeping local value: %v", key, err)
	}
	s.apply(apply)
	return err
}
