package models

// ProcessInfo is one row of the process table. Usages are averaged over the
// most recent samples.
type ProcessInfo struct {
	PID         int32   `json:"pid"`
	Name        string  `json:"name"`
	CPUUsage    float64 `json:"cpuUsage"`
	MemoryUsage float64 `json:"memoryUsage"` // MiB
}
