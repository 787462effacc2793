package frontend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hwmonitor/internal/models"
)

// ProcessInterval is how often the process list is refreshed
const ProcessInterval = 3 * time.Second

// SortKey is a process table column
type SortKey int

const (
	SortPID SortKey = iota
	SortName
	SortCPU
	SortMemory
)

var sortKeyNames = map[SortKey]string{
	SortPID:    "PID",
	SortName:   "Name",
	SortCPU:    "CPU Usage",
	SortMemory: "Memory Usage",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("column(%d)", int(k))
}

// SortDirection is ascending or descending
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// ProcessTable holds the process list plus the transient table state
type ProcessTable struct {
	mu          sync.RWMutex
	rows        []models.ProcessInfo
	sorted      bool
	key         SortKey
	direction   SortDirection
	showAll     bool
	defaultRows int
}

// NewProcessTable shows defaultRows rows until ShowAll is called
func NewProcessTable(defaultRows int) *ProcessTable {
	return &ProcessTable{defaultRows: defaultRows}
}

// Set replaces the rows
func (t *ProcessTable) Set(rows []models.ProcessInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]models.ProcessInfo(nil), rows...)
}

// RequestSort sorts by key ascending, or flips to descending when the table
// is already sorted ascending by key
func (t *ProcessTable) RequestSort(key SortKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	direction := Ascending
	if t.sorted && t.key == key && t.direction == Ascending {
		direction = Descending
	}
	t.sorted = true
	t.key = key
	t.direction = direction
}

// Sort returns the active sort, ok is false while unsorted
func (t *ProcessTable) Sort() (key SortKey, direction SortDirection, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.key, t.direction, t.sorted
}

// ShowAll lifts the row limit
func (t *ProcessTable) ShowAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.showAll = true
}

// Rows returns the visible rows in display order
func (t *ProcessTable) Rows() []models.ProcessInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := append([]models.ProcessInfo(nil), t.rows...)
	if t.sorted {
		less := processLess(t.key)
		sort.SliceStable(rows, func(i, j int) bool {
			if t.direction == Descending {
				return less(rows[j], rows[i])
			}
			return less(rows[i], rows[j])
		})
	}
	if !t.showAll && t.defaultRows > 0 && len(rows) > t.defaultRows {
		rows = rows[:t.defaultRows]
	}
	return rows
}

func processLess(key SortKey) func(a, b models.ProcessInfo) bool {
	switch key {
	case SortName:
		return func(a, b models.ProcessInfo) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortCPU:
		return func(a, b models.ProcessInfo) bool { return a.CPUUsage < b.CPUUsage }
	case SortMemory:
		return func(a, b models.ProcessInfo) bool { return a.MemoryUsage < b.MemoryUsage }
	default:
		return func(a, b models.ProcessInfo) bool { return a.PID < b.PID }
	}
}

// ProcessTick refreshes table from the backend
func ProcessTick(backend TelemetryBackend, table *ProcessTable) TickFunc {
	return func(ctx context.Context) error {
		rows, err := backend.ProcessList(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		table.Set(rows)
		return nil
	}
}
