package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HardwareType identifies a device class that can be charted
type HardwareType string

const (
	HardwareCPU    HardwareType = "cpu"
	HardwareMemory HardwareType = "memory"
	HardwareGPU    HardwareType = "gpu"
)

// AllHardwareTypes lists every chartable device class in display order
var AllHardwareTypes = []HardwareType{HardwareCPU, HardwareMemory, HardwareGPU}

// ParseHardwareType converts a case-insensitive name into a HardwareType
func ParseHardwareType(s string) (HardwareType, error) {
	switch t := HardwareType(strings.ToLower(strings.TrimSpace(s))); t {
	case HardwareCPU, HardwareMemory, HardwareGPU:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
}

func (t *HardwareType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHardwareType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// CPUInfo represents static CPU identity
type CPUInfo struct {
	Name      string `json:"name"`
	Vendor    string `json:"vendor"`
	CoreCount int    `json:"coreCount"`
	Clock     uint64 `json:"clock"`
	ClockUnit string `json:"clockUnit"`
	CPUName   string `json:"cpuName"`
}

// MemoryInfo represents installed memory
type MemoryInfo struct {
	Size        string `json:"size"`
	Clock       uint64 `json:"clock"`
	ClockUnit   string `json:"clockUnit"`
	MemoryCount int    `json:"memoryCount"`
	MemoryType  string `json:"memoryType"`
}

// GraphicInfo represents one graphics adapter
type GraphicInfo struct {
	Name                string `json:"name"`
	VendorName          string `json:"vendorName"`
	Clock               uint64 `json:"clock"`
	MemorySize          string `json:"memorySize"`
	MemorySizeDedicated string `json:"memorySizeDedicated"`
}

// HardwareInfo combines the static descriptions. Any part may be missing
// when the platform cannot report it.
type HardwareInfo struct {
	CPU    *CPUInfo      `json:"cpu"`
	Memory *MemoryInfo   `json:"memory"`
	GPUs   []GraphicInfo `json:"gpus"`
}

// NameValue is a labelled reading such as a sensor temperature or fan speed
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
