package analysis

import "errors"

// Analysis conditions. None of them is fatal: the orchestrator records the
// outcome and waits for the next append.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateCurve  = errors.New("degenerate curve")
	ErrFitFailure       = errors.New("fit failure")
)

// Operation names reported in an Outcome.
const (
	OpLeftBorder  = "LEFT_BORDER"
	OpRightBorder = "RIGHT_BORDER"
	OpStopTime    = "STOP_TIME"
)

// Outcome statuses.
const (
	StatusApplied = "APPLIED"
	StatusWaiting = "WAITING"
	StatusSkipped = "SKIPPED"
)

// Outcome is the structured result of one analysis operation.
type Outcome struct {
	Operation string
	BatteryID int
	Status    string
	Value     float64 // valid when Status == StatusApplied
	Reason    error   // set when the operation did not apply
}

// Applied reports whether the operation persisted a new value.
func (o Outcome) Applied() bool { return o.Status == StatusApplied }

func applied(op string, batteryID int, v float64) Outcome {
	return Outcome{Operation: op, BatteryID: batteryID, Status: StatusApplied, Value: v}
}

// notApplied classifies an analysis condition into WAITING or SKIPPED.
func notApplied(op string, batteryID int, reason error) Outcome {
	status := StatusSkipped
	if errors.Is(reason, ErrInsufficientData) {
		status = StatusWaiting
	}
	return Outcome{Operation: op, BatteryID: batteryID, Status: status, Reason: reason}
}
