package controllers

import (
	"net/http"
	"strconv"

	"hwmonitor/internal/models"
	"hwmonitor/internal/services"

	"github.com/gin-gonic/gin"
)

// HardwareController serves live and historical telemetry
type HardwareController struct {
	source    services.HardwareSource
	history   *services.HistoryCollector
	processes *services.ProcessCollector
}

// NewHardwareController wires the telemetry handlers
func NewHardwareController(source services.HardwareSource, history *services.HistoryCollector, processes *services.ProcessCollector) *HardwareController {
	return &HardwareController{source: source, history: history, processes: processes}
}

func targetParam(c *gin.Context) (models.HardwareType, bool) {
	target, err := models.ParseHardwareType(c.Param("target"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return target, true
}

// GetUsage returns the current usage percent of a device.
// The collector's newest sample is preferred so readers do not perturb
// the CPU delta window.
func (h *HardwareController) GetUsage(c *gin.Context) {
	target, ok := targetParam(c)
	if !ok {
		return
	}

	if v, ok := h.history.Latest(target); ok {
		c.JSON(http.StatusOK, models.UsageValue{Value: v})
		return
	}

	var (
		v   float64
		err error
	)
	switch target {
	case models.HardwareCPU:
		v, err = h.source.CPUUsage()
	case models.HardwareMemory:
		v, err = h.source.MemoryUsage()
	case models.HardwareGPU:
		v, err = h.source.GPUUsage(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.UsageValue{Value: v})
}

// GetHistory returns recent usage samples, oldest first
// Query params: seconds=N (default: collector capacity)
func (h *HardwareController) GetHistory(c *gin.Context) {
	target, ok := targetParam(c)
	if !ok {
		return
	}

	seconds := h.history.Capacity()
	if raw := c.Query("seconds"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seconds"})
			return
		}
		seconds = n
	}

	c.JSON(http.StatusOK, models.UsageHistory{
		Target: target,
		Values: h.history.History(target, seconds),
	})
}

// GetTemperature returns named temperature readings for cpu or gpu
func (h *HardwareController) GetTemperature(c *gin.Context) {
	target, ok := targetParam(c)
	if !ok {
		return
	}

	var (
		values []models.NameValue
		err    error
	)
	switch target {
	case models.HardwareCPU:
		values, err = h.source.CPUTemperatures()
	case models.HardwareGPU:
		values, err = h.source.GPUTemperatures(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature is only available for cpu and gpu"})
		return
	}
	respondNamed(c, values, err)
}

// GetFan returns named fan speed readings for cpu or gpu
func (h *HardwareController) GetFan(c *gin.Context) {
	target, ok := targetParam(c)
	if !ok {
		return
	}

	var (
		values []models.NameValue
		err    error
	)
	switch target {
	case models.HardwareCPU:
		values, err = h.source.CPUFans()
	case models.HardwareGPU:
		values, err = h.source.GPUFans(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "fan speed is only available for cpu and gpu"})
		return
	}
	respondNamed(c, values, err)
}

func respondNamed(c *gin.Context, values []models.NameValue, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if values == nil {
		values = []models.NameValue{}
	}
	c.JSON(http.StatusOK, values)
}

// GetHardwareInfo returns static CPU, memory and GPU descriptions
func (h *HardwareController) GetHardwareInfo(c *gin.Context) {
	info, err := h.source.HardwareInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetProcesses returns the process table with averaged usage
func (h *HardwareController) GetProcesses(c *gin.Context) {
	c.JSON(http.StatusOK, h.processes.List())
}
