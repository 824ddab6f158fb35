package models

import "time"

// Model family names accepted in Parameters.Model. Anything else is fitted as cubic.
const (
	ModelLinear    = "linear"
	ModelQuadratic = "quadratic"
	ModelCubic     = "cubic"
)

// Parameters configures the analysis of a single battery.
type Parameters struct {
	FirstIcaCycle   int    `json:"first_ica_cycle" mapstructure:"first_ica_cycle"`
	LastIcaCycle    int    `json:"last_ica_cycle" mapstructure:"last_ica_cycle"`
	FirstCcctCycle  int    `json:"first_ccct_cycle" mapstructure:"first_ccct_cycle"`
	LastCcctCycle   int    `json:"last_ccct_cycle" mapstructure:"last_ccct_cycle"` // CCCT samples required before the fit runs
	CcctCyclesStage int    `json:"ccct_cycles_stage" mapstructure:"ccct_cycles_stage"`
	FilterWidth     int    `json:"filter_width" mapstructure:"filter_width"` // Gaussian sigma, in samples
	Peak            int    `json:"peak" mapstructure:"peak"`                 // index into detected peaks
	Model           string `json:"model" mapstructure:"model"`               // linear | quadratic | anything else = cubic
}

// Battery is a registered cell under test together with its latest analysis results.
type Battery struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user_id"`
	Type          string     `json:"type"`
	NominalCharge float64    `json:"nominal_charge"`
	Parameters    Parameters `json:"parameters"`
	LeftBorder    *float64   `json:"left_border,omitempty"`
	RightBorder   *float64   `json:"right_border,omitempty"`
	StopTime      *float64   `json:"stop_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
