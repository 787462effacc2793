package frontend

import (
	"context"
	"fmt"
	"time"

	"hwmonitor/internal/models"
)

// Series is one named metric stream
type Series int

const (
	SeriesCPUUsage Series = iota
	SeriesMemoryUsage
	SeriesGPUUsage
	SeriesCPUTemp
	SeriesGPUTemp
	SeriesCPUFan
	SeriesGPUFan
)

// AllSeries lists every series in display order
var AllSeries = []Series{
	SeriesCPUUsage, SeriesMemoryUsage, SeriesGPUUsage,
	SeriesCPUTemp, SeriesGPUTemp, SeriesCPUFan, SeriesGPUFan,
}

const (
	UsageInterval  = time.Second
	SensorInterval = 10 * time.Second
)

func (s Series) String() string {
	switch s {
	case SeriesCPUUsage:
		return "cpu-usage"
	case SeriesMemoryUsage:
		return "memory-usage"
	case SeriesGPUUsage:
		return "gpu-usage"
	case SeriesCPUTemp:
		return "cpu-temp"
	case SeriesGPUTemp:
		return "gpu-temp"
	case SeriesCPUFan:
		return "cpu-fan"
	case SeriesGPUFan:
		return "gpu-fan"
	}
	return fmt.Sprintf("series(%d)", int(s))
}

// ParseSeries parses names like "cpu-usage"
func ParseSeries(name string) (Series, error) {
	for _, s := range AllSeries {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown series %q", name)
}

// UsageSeries returns the usage series of a device
func UsageSeries(target models.HardwareType) (Series, error) {
	switch target {
	case models.HardwareCPU:
		return SeriesCPUUsage, nil
	case models.HardwareMemory:
		return SeriesMemoryUsage, nil
	case models.HardwareGPU:
		return SeriesGPUUsage, nil
	}
	return 0, fmt.Errorf("%w: %q", models.ErrUnknownTarget, string(target))
}

// Named reports whether the series carries one value per sensor
func (s Series) Named() bool {
	switch s {
	case SeriesCPUUsage, SeriesMemoryUsage, SeriesGPUUsage:
		return false
	case SeriesCPUTemp, SeriesGPUTemp, SeriesCPUFan, SeriesGPUFan:
		return true
	}
	panic(fmt.Sprintf("unhandled %v", s))
}

// Target is the device the series belongs to
func (s Series) Target() models.HardwareType {
	switch s {
	case SeriesCPUUsage, SeriesCPUTemp, SeriesCPUFan:
		return models.HardwareCPU
	case SeriesMemoryUsage:
		return models.HardwareMemory
	case SeriesGPUUsage, SeriesGPUTemp, SeriesGPUFan:
		return models.HardwareGPU
	}
	panic(fmt.Sprintf("unhandled %v", s))
}

// Interval is the poll period: 1s for usage, 10s for sensors
func (s Series) Interval() time.Duration {
	if s.Named() {
		return SensorInterval
	}
	return UsageInterval
}

// Unit is the display unit of the series values
func (s Series) Unit() string {
	switch s {
	case SeriesCPUUsage, SeriesMemoryUsage, SeriesGPUUsage:
		return "%"
	case SeriesCPUTemp, SeriesGPUTemp:
		return "°C"
	case SeriesCPUFan, SeriesGPUFan:
		return "RPM"
	}
	panic(fmt.Sprintf("unhandled %v", s))
}

// Sample is one fetch result. Usage series set Value; named series set Named.
type Sample struct {
	Value float64
	Named []models.NameValue
}

// Fetch pulls the current sample of s from the backend
func (s Series) Fetch(ctx context.Context, backend TelemetryBackend) (Sample, error) {
	var (
		sample Sample
		err    error
	)
	switch s {
	case SeriesCPUUsage:
		sample.Value, err = backend.CPUUsage(ctx)
	case SeriesMemoryUsage:
		sample.Value, err = backend.MemoryUsage(ctx)
	case SeriesGPUUsage:
		sample.Value, err = backend.GPUUsage(ctx)
	case SeriesCPUTemp:
		sample.Named, err = backend.CPUTemperature(ctx)
	case SeriesGPUTemp:
		sample.Named, err = backend.GPUTemperature(ctx)
	case SeriesCPUFan:
		sample.Named, err = backend.CPUFan(ctx)
	case SeriesGPUFan:
		sample.Named, err = backend.GPUFan(ctx)
	default:
		return Sample{}, fmt.Errorf("unhandled %v", s)
	}
	return sample, err
}

// Record writes a sample into store. It reports false when nothing was
// appended, either because the series is not mounted or the fetch was empty.
func (s Series) Record(store *HistoryStore, sample Sample) bool {
	return s.RecordAt(store, 0, sample)
}

// RecordAt is Record restricted to the buffer of generation gen
func (s Series) RecordAt(store *HistoryStore, gen uint64, sample Sample) bool {
	if s.Named() {
		return store.AppendNamedAt(s, gen, sample.Named)
	}
	return store.AppendBatchAt(s, gen, []float64{sample.Value})
}
