package models

import "time"

// AnalysisEvent records the outcome of one analysis run.
type AnalysisEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	BatteryID   int       `json:"battery_id"`
	Type        string    `json:"type"`   // LEFT_BORDER | RIGHT_BORDER | STOP_TIME
	Status      string    `json:"status"` // APPLIED | WAITING | SKIPPED
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
