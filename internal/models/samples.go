package models

import "time"

// IcaSample is one (charge, voltage) point of an incremental-capacity cycle.
type IcaSample struct {
	ID        int       `json:"id"`
	BatteryID int       `json:"battery_id"`
	Charge    float64   `json:"charge"`
	Voltage   float64   `json:"voltage"`
	Timestamp time.Time `json:"timestamp"`
}

// CcctSample is one capacity-fade measurement. SOC is derived from the
// battery's nominal charge when samples are read back.
type CcctSample struct {
	ID            int       `json:"id"`
	BatteryID     int       `json:"battery_id"`
	OverallCharge float64   `json:"overall_charge"`
	SOC           float64   `json:"soc"`
	ElapsedTime   float64   `json:"elapsed_time"`
	Timestamp     time.Time `json:"timestamp"`
}
