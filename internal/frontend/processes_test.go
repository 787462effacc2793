package frontend

import (
	"testing"

	"hwmonitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func pids(rows []models.ProcessInfo) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.PID
	}
	return out
}

func TestProcessTableSorting(t *testing.T) {
	table := NewProcessTable(0)
	table.Set([]models.ProcessInfo{
		{PID: 3, Name: "bash", CPUUsage: 1.5, MemoryUsage: 4},
		{PID: 1, Name: "Xorg", CPUUsage: 9.1, MemoryUsage: 120},
		{PID: 2, Name: "code", CPUUsage: 4.2, MemoryUsage: 800},
	})

	assert.Equal(t, []int32{3, 1, 2}, pids(table.Rows()), "unsorted keeps backend order")

	table.RequestSort(SortCPU)
	assert.Equal(t, []int32{3, 2, 1}, pids(table.Rows()))

	table.RequestSort(SortCPU)
	key, dir, ok := table.Sort()
	assert.True(t, ok)
	assert.Equal(t, SortCPU, key)
	assert.Equal(t, Descending, dir)
	assert.Equal(t, []int32{1, 2, 3}, pids(table.Rows()))

	table.RequestSort(SortName)
	assert.Equal(t, []int32{3, 2, 1}, pids(table.Rows()))

	table.RequestSort(SortMemory)
	table.RequestSort(SortMemory)
	table.RequestSort(SortMemory)
	_, dir, _ = table.Sort()
	assert.Equal(t, Ascending, dir)
	assert.Equal(t, []int32{3, 1, 2}, pids(table.Rows()))
}

func TestProcessTableRowLimit(t *testing.T) {
	table := NewProcessTable(2)
	table.Set([]models.ProcessInfo{{PID: 1}, {PID: 2}, {PID: 3}})

	assert.Len(t, table.Rows(), 2)
	table.ShowAll()
	assert.Len(t, table.Rows(), 3)
}
