package models

// UsageValue wraps a single usage reading
type UsageValue struct {
	Value float64 `json:"value"`
}

// UsageHistory is a usage series, oldest first
type UsageHistory struct {
	Target HardwareType `json:"target"`
	Values []float64    `json:"values"`
}
