package service

import (
	"time"

	"battery_analysis/internal/models"
)

// LogFilter supports history filtering by time range, outcome type and battery.
type LogFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	Type      string    // "", "LEFT_BORDER", "RIGHT_BORDER", "STOP_TIME"
	BatteryID int       // 0 means every battery
}

// DefaultPresetKey selects the preset used for unknown battery types.
const DefaultPresetKey = "default"

// Presets maps a battery type to the analysis parameters it is registered with.
type Presets map[string]models.Parameters

// DefaultPresets returns the built-in parameter sets for types "a" and "b"
// plus the fallback used for everything else.
func DefaultPresets() Presets {
	return Presets{
		"a": {
			FirstIcaCycle: 1, LastIcaCycle: 2, FirstCcctCycle: 3, LastCcctCycle: 10,
			CcctCyclesStage: 2, FilterWidth: 3, Peak: 2, Model: models.ModelLinear,
		},
		"b": {
			FirstIcaCycle: 1, LastIcaCycle: 2, FirstCcctCycle: 3, LastCcctCycle: 1,
			CcctCyclesStage: 1, FilterWidth: 1, Peak: 1, Model: models.ModelQuadratic,
		},
		DefaultPresetKey: {
			FirstIcaCycle: 1, LastIcaCycle: 2, FirstCcctCycle: 3, LastCcctCycle: 1,
			CcctCyclesStage: 1, FilterWidth: 1, Peak: 1, Model: models.ModelCubic,
		},
	}
}

// For returns the parameters for a battery type.
func (p Presets) For(batType string) models.Parameters {
	if params, ok := p[batType]; ok {
		return params
	}
	if params, ok := p[DefaultPresetKey]; ok {
		return params
	}
	return DefaultPresets()[DefaultPresetKey]
}

// Merge returns a copy of p with the entries of override replacing or adding types.
func (p Presets) Merge(override Presets) Presets {
	out := make(Presets, len(p)+len(override))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
