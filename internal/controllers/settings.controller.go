package controllers

import (
	"errors"
	"net/http"

	"hwmonitor/internal/models"
	"hwmonitor/internal/services"

	"github.com/gin-gonic/gin"
)

// SettingsController exposes the persisted settings
type SettingsController struct {
	settings *services.SettingsService
}

// NewSettingsController wires the settings handlers
func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{settings: settings}
}

type valueRequest[T any] struct {
	Value *T `json:"value"`
}

type colorRequest struct {
	Target models.HardwareType `json:"target"`
	Value  string              `json:"value"`
}

type stateRequest struct {
	Key   models.StateKey `json:"key"`
	Value string          `json:"value"`
}

// GetSettings returns the full snapshot
func (s *SettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Snapshot())
}

// bindValue decodes {"value": ...} and rejects a missing value
func bindValue[T any](c *gin.Context) (T, bool) {
	var req valueRequest[T]
	var zero T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return zero, false
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return zero, false
	}
	return *req.Value, true
}

// respondUpdate maps validation errors to 400 and persistence errors to 500
func respondUpdate(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrUnknownTarget,
		models.ErrInvalidTheme,
		models.ErrInvalidGraphSize,
		models.ErrInvalidColor,
		models.ErrInvalidStateKey,
		models.ErrDuplicateTarget,
		models.ErrInvalidLanguage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// boolSetter adapts a bool setter into a handler
func (s *SettingsController) boolSetter(set func(bool) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := bindValue[bool](c)
		if !ok {
			return
		}
		respondUpdate(c, set(v))
	}
}

func (s *SettingsController) SetLanguage(c *gin.Context) {
	v, ok := bindValue[string](c)
	if !ok {
		return
	}
	respondUpdate(c, s.settings.SetLanguage(v))
}

func (s *SettingsController) SetTheme(c *gin.Context) {
	v, ok := bindValue[models.Theme](c)
	if !ok {
		return
	}
	respondUpdate(c, s.settings.SetTheme(v))
}

func (s *SettingsController) SetDisplayTargets(c *gin.Context) {
	v, ok := bindValue[[]models.HardwareType](c)
	if !ok {
		return
	}
	respondUpdate(c, s.settings.SetDisplayTargets(v))
}

func (s *SettingsController) SetGraphSize(c *gin.Context) {
	v, ok := bindValue[models.GraphSize](c)
	if !ok {
		return
	}
	respondUpdate(c, s.settings.SetGraphSize(v))
}

func (s *SettingsController) SetLineGraphBorder() gin.HandlerFunc {
	return s.boolSetter(s.settings.SetLineGraphBorder)
}

func (s *SettingsController) SetLineGraphFill() gin.HandlerFunc {
	return s.boolSetter(s.settings.SetLineGraphFill)
}

func (s *SettingsController) SetLineGraphMix() gin.HandlerFunc {
	return s.boolSetter(s.settings.SetLineGraphMix)
}

func (s *SettingsController) SetLineGraphShowLegend() gin.HandlerFunc {
	return s.boolSetter(s.settings.SetLineGraphShowLegend)
}

func (s *SettingsController) SetLineGraphShowScale() gin.HandlerFunc {
	return s.boolSetter(s.settings.SetLineGraphShowScale)
}

// SetLineGraphColor stores a colour and returns its canonical "r,g,b" form
func (s *SettingsController) SetLineGraphColor(c *gin.Context) {
	var req colorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	canonical, err := s.settings.SetLineGraphColor(req.Target, req.Value)
	if err != nil {
		respondUpdate(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": canonical})
}

// SetState stores one navigation state field
func (s *SettingsController) SetState(c *gin.Context) {
	var req stateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	respondUpdate(c, s.settings.SetState(req.Key, req.Value))
}
