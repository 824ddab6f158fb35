package analysis

import (
	"context"

	"battery_analysis/internal/models"
)

// Store is the data-access contract the analysis core needs from its host.
type Store interface {
	Battery(ctx context.Context, id int) (models.Battery, error)
	IcaSamples(ctx context.Context, batteryID int) ([]models.IcaSample, error)
	CcctSamples(ctx context.Context, batteryID int) ([]models.CcctSample, error)
	SaveLeftBorder(ctx context.Context, batteryID int, v float64) error
	SaveRightBorder(ctx context.Context, batteryID int, v float64) error
	SaveStopTime(ctx context.Context, batteryID int, v float64) error
}

// AppendHook is called synchronously after a sample was stored for a battery.
type AppendHook func(ctx context.Context, batteryID int)

// Notifier lets the orchestrator subscribe to sample appends.
type Notifier interface {
	OnIcaAppended(h AppendHook)
	OnCcctAppended(h AppendHook)
}
