package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"hwmonitor/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// UsageSampler provides point-in-time usage percentages
type UsageSampler interface {
	CPUUsage() (float64, error)
	MemoryUsage() (float64, error)
	GPUUsage(ctx context.Context) (float64, error)
}

// HardwareSource is everything the command interface can ask the machine
type HardwareSource interface {
	UsageSampler
	CPUTemperatures() ([]models.NameValue, error)
	GPUTemperatures(ctx context.Context) ([]models.NameValue, error)
	CPUFans() ([]models.NameValue, error)
	GPUFans(ctx context.Context) ([]models.NameValue, error)
	HardwareInfo(ctx context.Context) (*models.HardwareInfo, error)
}

// Probe reads the local machine through gopsutil, nvidia-smi and hwmon
type Probe struct {
	gpu  GPUProbe
	fans *FanReader
}

// NewProbe creates a probe. gpu may be nil on machines without a supported GPU.
func NewProbe(gpu GPUProbe, fans *FanReader) *Probe {
	return &Probe{gpu: gpu, fans: fans}
}

var errNoGPU = errors.New("no supported GPU")

// CPUUsage returns the average usage over all cores, rounded to an integer percent
func (p *Probe) CPUUsage() (float64, error) {
	perCore, err := cpu.Percent(0, true)
	if err != nil {
		return 0, err
	}
	if len(perCore) == 0 {
		return 0, fmt.Errorf("cpu usage not available")
	}

	total := 0.0
	for _, v := range perCore {
		total += v
	}
	return math.Round(total / float64(len(perCore))), nil
}

// MemoryUsage returns used memory as a rounded percent of total
func (p *Probe) MemoryUsage() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	if vm.Total == 0 {
		return 0, fmt.Errorf("memory total is zero")
	}
	return math.Round(float64(vm.Used) / float64(vm.Total) * 100), nil
}

// GPUUsage returns the GPU utilisation percent
func (p *Probe) GPUUsage(ctx context.Context) (float64, error) {
	if p.gpu == nil {
		return 0, errNoGPU
	}
	return p.gpu.Usage(ctx)
}

// CPUTemperatures returns the host sensor readings that belong to the CPU package
func (p *Probe) CPUTemperatures() ([]models.NameValue, error) {
	temps, err := host.SensorsTemperatures()
	if err != nil && len(temps) == 0 {
		return nil, err
	}

	var readings []models.NameValue
	for _, t := range temps {
		if !isCPUSensor(t.SensorKey) {
			continue
		}
		readings = append(readings, models.NameValue{Name: t.SensorKey, Value: t.Temperature})
	}
	return readings, nil
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, prefix := range []string{"coretemp", "k10temp", "zenpower", "cpu", "tctl", "package"} {
		if strings.Contains(key, prefix) {
			return true
		}
	}
	return false
}

// GPUTemperatures returns one reading per GPU
func (p *Probe) GPUTemperatures(ctx context.Context) ([]models.NameValue, error) {
	if p.gpu == nil {
		return nil, errNoGPU
	}
	return p.gpu.Temperatures(ctx)
}

// CPUFans returns chassis and CPU fan speeds in RPM
func (p *Probe) CPUFans() ([]models.NameValue, error) {
	if p.fans == nil {
		return nil, fmt.Errorf("fan readings not available")
	}
	return p.fans.Read()
}

// GPUFans returns one fan speed percent per GPU
func (p *Probe) GPUFans(ctx context.Context) ([]models.NameValue, error) {
	if p.gpu == nil {
		return nil, errNoGPU
	}
	return p.gpu.Fans(ctx)
}

// HardwareInfo returns whatever static info is available. It only fails when
// nothing at all could be read.
func (p *Probe) HardwareInfo(ctx context.Context) (*models.HardwareInfo, error) {
	info := &models.HardwareInfo{}

	cpuInfo, err := getCPUInfo()
	if err != nil {
		log.Printf("[HARDWARE] Could not read CPU info: %v", err)
	} else {
		info.CPU = cpuInfo
	}

	memInfo, err := getMemoryInfo()
	if err != nil {
		log.Printf("[HARDWARE] Could not read memory info: %v", err)
	} else {
		info.Memory = memInfo
	}

	if p.gpu != nil {
		gpus, err := p.gpu.Info(ctx)
		if err != nil {
			log.Printf("[HARDWARE] Could not read GPU info: %v", err)
		} else {
			info.GPUs = gpus
		}
	}

	if info.CPU == nil && info.Memory == nil && info.GPUs == nil {
		return nil, fmt.Errorf("failed to get any hardware info")
	}
	return info, nil
}

func getCPUInfo() (*models.CPUInfo, error) {
	infos, err := cpu.Info()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("cpu information not available")
	}

	coreCount, err := cpu.Counts(true)
	if err != nil {
		log.Printf("Warning: Could not get CPU core count: %v", err)
		coreCount = len(infos)
	}

	first := infos[0]
	return &models.CPUInfo{
		Name:      strings.TrimSpace(first.ModelName),
		Vendor:    FormatVendorName(first.VendorID),
		CoreCount: coreCount,
		Clock:     uint64(first.Mhz),
		ClockUnit: "MHz",
		CPUName:   fmt.Sprintf("cpu%d", first.CPU),
	}, nil
}

func getMemoryInfo() (*models.MemoryInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	return &models.MemoryInfo{
		Size:       FormatSize(vm.Total, 1),
		ClockUnit:  "MHz",
		MemoryType: "Unknown",
	}, nil
}

// FormatSize renders a byte count with a GB/MB unit
func FormatSize(bytes uint64, precision int) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.*f GB", precision, float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.*f MB", precision, float64(bytes)/MB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// FormatVendorName maps CPUID vendor strings to marketing names
func FormatVendorName(vendorID string) string {
	switch vendorID {
	case "GenuineIntel":
		return "Intel"
	case "AuthenticAMD":
		return "AMD"
	default:
		return vendorID
	}
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
