package service

import (
	"context"
	"io"
	"time"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/chart"
	"battery_analysis/internal/logger"
	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

// Registration creates and looks up batteries.
type Registration interface {
	Register(ctx context.Context, p RegisterParams) (models.Battery, error)
	Get(ctx context.Context, id int) (models.Battery, error)
	List(ctx context.Context) ([]models.Battery, error)
	Summary(ctx context.Context) ([]models.TypeCount, error)
}

// Telemetry ingests samples. Every append triggers the subscribed analyses
// before it returns.
type Telemetry interface {
	AppendIca(ctx context.Context, batteryID int, charge, voltage float64) (models.IcaSample, error)
	AppendCcct(ctx context.Context, batteryID int, overallCharge, elapsed float64) (models.CcctSample, error)
}

// Status exposes the user-facing battery state.
type Status interface {
	GetStatus(ctx context.Context, batteryID int) (models.BatteryStatus, error)
}

// Analysis exposes manual re-analysis and curve inspection.
type Analysis interface {
	Reanalyze(ctx context.Context, batteryID int) ([]analysis.Outcome, error)
	Curve(ctx context.Context, batteryID int, stage analysis.Stage) (analysis.Diagnostics, error)
	RenderCurve(ctx context.Context, batteryID int, stage analysis.Stage, w io.Writer, opts chart.Options) error
}

// EventLog exposes the analysis outcome history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AnalysisEvent, error)
}

// Sweeper runs the periodic re-analysis. Stop via context cancellation.
type Sweeper interface {
	Run(ctx context.Context, interval time.Duration)
	SweepOnce(ctx context.Context) (int, error)
}

// Service aggregates all sub-services.
type Service struct {
	Registration
	Telemetry
	Status
	Analysis
	EventLog
	Sweeper
}

// NewService wires the repositories, the analysis core and the sub-services.
// The orchestrator is subscribed to telemetry before NewService returns.
func NewService(repos *repository.Repository, presets Presets, log *logger.Logger) *Service {
	locks := newBatteryLocks()
	store := repository.NewAnalysisStore(repos.Batteries, repos.Samples)
	events := NewEventLogService(repos.EventRepo)

	orchestrator := analysis.NewOrchestrator(store, events, log)
	telemetry := NewTelemetryService(repos.Batteries, repos.Samples, locks, log)
	orchestrator.Subscribe(telemetry)

	an := NewAnalysisService(store, orchestrator, locks)

	return &Service{
		Registration: NewRegistrationService(repos.Users, repos.Batteries, presets, log),
		Telemetry:    telemetry,
		Status:       NewStatusService(repos.Batteries, repos.Samples),
		Analysis:     an,
		EventLog:     events,
		Sweeper:      NewSweeperService(repos.Batteries, an, log),
	}
}
