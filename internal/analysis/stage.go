package analysis

import "fmt"

// Samples per incremental-capacity cycle.
const SamplesPerIcaCycle = 30

// StopThreshold is the fraction of nominal capacity treated as end of life.
const StopThreshold = 0.8

// Stage selects which ICA cycle a curve is built from.
type Stage struct {
	Name     string
	Expected int // exact number of stored samples required
	From, To int // half-open slice of the stored samples
}

var (
	// FirstCycle uses samples 0..29 once exactly 30 are stored.
	FirstCycle = Stage{Name: "first", Expected: SamplesPerIcaCycle, From: 0, To: SamplesPerIcaCycle}
	// SecondCycle uses samples 30..60 once exactly 60 are stored.
	SecondCycle = Stage{Name: "second", Expected: 2 * SamplesPerIcaCycle, From: SamplesPerIcaCycle, To: 2*SamplesPerIcaCycle + 1}
)

// ParseStage maps "first"/"1" and "second"/"2" to a Stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "first", "1":
		return FirstCycle, nil
	case "second", "2":
		return SecondCycle, nil
	default:
		return Stage{}, fmt.Errorf("unknown stage %q: want first or second", s)
	}
}

func (s Stage) String() string { return s.Name }
