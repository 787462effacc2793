package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"hwmonitor/internal/models"
)

// FanReader reads fan tachometers from the Linux hwmon sysfs tree
type FanReader struct {
	root string
}

// NewFanReader reads from root, normally /sys/class/hwmon
func NewFanReader(root string) *FanReader {
	return &FanReader{root: root}
}

// Read returns every fan*_input reading as "<chip>/<label>" in RPM
func (f *FanReader) Read() ([]models.NameValue, error) {
	chips, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("read hwmon root: %w", err)
	}

	var readings []models.NameValue
	for _, chip := range chips {
		dir := filepath.Join(f.root, chip.Name())
		chipName := readTrimmed(filepath.Join(dir, "name"))
		if chipName == "" {
			chipName = chip.Name()
		}

		inputs, _ := filepath.Glob(filepath.Join(dir, "fan*_input"))
		sort.Strings(inputs)
		for _, input := range inputs {
			rpm, err := strconv.ParseFloat(readTrimmed(input), 64)
			if err != nil {
				continue
			}
			fan := strings.TrimSuffix(filepath.Base(input), "_input")
			label := readTrimmed(filepath.Join(dir, fan+"_label"))
			if label == "" {
				label = fan
			}
			readings = append(readings, models.NameValue{Name: chipName + "/" + label, Value: rpm})
		}
	}
	return readings, nil
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
