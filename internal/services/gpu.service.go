package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"hwmonitor/internal/models"
)

// GPUProbe reads graphics adapter telemetry
type GPUProbe interface {
	Usage(ctx context.Context) (float64, error)
	Temperatures(ctx context.Context) ([]models.NameValue, error)
	Fans(ctx context.Context) ([]models.NameValue, error)
	Info(ctx context.Context) ([]models.GraphicInfo, error)
}

// CommandRunner executes an external command and returns its stdout
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

const nvidiaQuery = "index,name,utilization.gpu,temperature.gpu,fan.speed,clocks.max.graphics,memory.total"

// gpuRow is one line of nvidia-smi output. Unsupported fields are nil.
type gpuRow struct {
	Index       int
	Name        string
	Utilization *float64
	Temperature *float64
	FanSpeed    *float64
	MaxClockMHz *float64
	MemoryMiB   *float64
}

// NvidiaSMI queries NVIDIA GPUs through the nvidia-smi binary
type NvidiaSMI struct {
	path string
	run  CommandRunner
}

// NewNvidiaSMI creates a probe that shells out to the binary at path
func NewNvidiaSMI(path string) *NvidiaSMI {
	if path == "" {
		path = "nvidia-smi"
	}
	return &NvidiaSMI{path: path, run: execRunner}
}

func (n *NvidiaSMI) query(ctx context.Context) ([]gpuRow, error) {
	out, err := n.run(ctx, n.path, "--query-gpu="+nvidiaQuery, "--format=csv,noheader,nounits")
	if err != nil {
		return nil, err
	}
	rows, err := parseNvidiaSMI(out)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNoGPU
	}
	return rows, nil
}

func parseNvidiaSMI(out []byte) ([]gpuRow, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = 7

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse nvidia-smi output: %w", err)
	}

	rows := make([]gpuRow, 0, len(records))
	for _, rec := range records {
		index, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("parse nvidia-smi index %q: %w", rec[0], err)
		}
		rows = append(rows, gpuRow{
			Index:       index,
			Name:        strings.TrimSpace(rec[1]),
			Utilization: parseOptionalFloat(rec[2]),
			Temperature: parseOptionalFloat(rec[3]),
			FanSpeed:    parseOptionalFloat(rec[4]),
			MaxClockMHz: parseOptionalFloat(rec[5]),
			MemoryMiB:   parseOptionalFloat(rec[6]),
		})
	}
	return rows, nil
}

// parseOptionalFloat returns nil for "[N/A]", "[Not Supported]" and the like
func parseOptionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Usage returns the mean utilisation across GPUs, rounded
func (n *NvidiaSMI) Usage(ctx context.Context) (float64, error) {
	rows, err := n.query(ctx)
	if err != nil {
		return 0, err
	}

	total, count := 0.0, 0
	for _, row := range rows {
		if row.Utilization == nil {
			continue
		}
		total += *row.Utilization
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("gpu utilization not supported")
	}
	return math.Round(total / float64(count)), nil
}

// Temperatures returns the core temperature of each GPU in Celsius
func (n *NvidiaSMI) Temperatures(ctx context.Context) ([]models.NameValue, error) {
	rows, err := n.query(ctx)
	if err != nil {
		return nil, err
	}
	return namedValues(rows, func(r gpuRow) *float64 { return r.Temperature }), nil
}

// Fans returns the fan speed percent of each GPU
func (n *NvidiaSMI) Fans(ctx context.Context) ([]models.NameValue, error) {
	rows, err := n.query(ctx)
	if err != nil {
		return nil, err
	}
	return namedValues(rows, func(r gpuRow) *float64 { return r.FanSpeed }), nil
}

// Info describes each GPU
func (n *NvidiaSMI) Info(ctx context.Context) ([]models.GraphicInfo, error) {
	rows, err := n.query(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.GraphicInfo, 0, len(rows))
	for _, row := range rows {
		info := models.GraphicInfo{Name: row.Name, VendorName: "NVIDIA"}
		if row.MaxClockMHz != nil {
			info.Clock = uint64(*row.MaxClockMHz)
		}
		if row.MemoryMiB != nil {
			size := FormatSize(uint64(*row.MemoryMiB*MB), 1)
			info.MemorySize = size
			info.MemorySizeDedicated = size
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func namedValues(rows []gpuRow, pick func(gpuRow) *float64) []models.NameValue {
	values := make([]models.NameValue, 0, len(rows))
	for _, row := range rows {
		v := pick(row)
		if v == nil {
			continue
		}
		name := row.Name
		if len(rows) > 1 {
			name = fmt.Sprintf("%s #%d", row.Name, row.Index)
		}
		values = append(values, models.NameValue{Name: name, Value: *v})
	}
	return values
}
