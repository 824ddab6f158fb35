package models

// Battery health states reported by the status endpoint.
const (
	StateCollecting  = "COLLECTING"
	StateOperational = "OPERATIONAL"
	StateReplace     = "REPLACE"
)

// BatteryStatus is the user-facing summary of a battery's analysis.
type BatteryStatus struct {
	Battery        Battery  `json:"battery"`
	State          string   `json:"state"`
	Message        string   `json:"message"`
	IcaSamples     int      `json:"ica_samples"`
	CcctSamples    int      `json:"ccct_samples"`
	LatestCcctTime *float64 `json:"latest_ccct_time,omitempty"`
}

// TypeCount is the number of registered batteries of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
