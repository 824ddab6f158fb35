package analysis

import (
	"context"
	"errors"

	"battery_analysis/internal/logger"
)

// Reporter receives every outcome the orchestrator produces.
type Reporter interface {
	Report(ctx context.Context, o Outcome) error
}

// Orchestrator decides which analyses run when new telemetry arrives.
// It does no locking of its own: callers serialize work per battery.
type Orchestrator struct {
	borders     *BorderEstimator
	degradation *DegradationModel
	reporter    Reporter
	log         *logger.Logger
}

// NewOrchestrator wires the core components over one store. reporter and log may be nil.
func NewOrchestrator(store Store, reporter Reporter, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		borders:     NewBorderEstimator(store),
		degradation: NewDegradationModel(store),
		reporter:    reporter,
		log:         log,
	}
}

// Subscribe registers the orchestrator's hooks on a sample feed.
func (o *Orchestrator) Subscribe(n Notifier) {
	n.OnIcaAppended(func(ctx context.Context, batteryID int) { _, _ = o.HandleIcaAppended(ctx, batteryID) })
	n.OnCcctAppended(func(ctx context.Context, batteryID int) { _, _ = o.HandleCcctAppended(ctx, batteryID) })
}

// HandleIcaAppended runs the left and right border estimation.
func (o *Orchestrator) HandleIcaAppended(ctx context.Context, batteryID int) ([]Outcome, error) {
	var (
		out  []Outcome
		errs []error
	)
	for _, run := range []func(context.Context, int) (Outcome, error){
		o.borders.EstimateLeft,
		o.borders.EstimateRight,
	} {
		res, err := run(ctx, batteryID)
		if err != nil {
			o.logFailure(batteryID, err)
			errs = append(errs, err)
			continue
		}
		o.report(ctx, res)
		out = append(out, res)
	}
	return out, errors.Join(errs...)
}

// HandleCcctAppended runs the stop-time estimation.
func (o *Orchestrator) HandleCcctAppended(ctx context.Context, batteryID int) ([]Outcome, error) {
	res, err := o.degradation.EstimateStopTime(ctx, batteryID)
	if err != nil {
		o.logFailure(batteryID, err)
		return nil, err
	}
	o.report(ctx, res)
	return []Outcome{res}, nil
}

// Reanalyze re-runs every analysis for a battery. Results overwrite earlier ones.
func (o *Orchestrator) Reanalyze(ctx context.Context, batteryID int) ([]Outcome, error) {
	ica, icaErr := o.HandleIcaAppended(ctx, batteryID)
	ccct, ccctErr := o.HandleCcctAppended(ctx, batteryID)
	return append(ica, ccct...), errors.Join(icaErr, ccctErr)
}

func (o *Orchestrator) report(ctx context.Context, res Outcome) {
	if o.log != nil {
		switch res.Status {
		case StatusApplied:
			o.log.Infow("analysis_applied", "op", res.Operation, "battery_id", res.BatteryID, "value", res.Value)
		case StatusWaiting:
			o.log.Debugw("analysis_waiting_for_data", "op", res.Operation, "battery_id", res.BatteryID, "reason", res.Reason)
		default:
			o.log.Warnw("analysis_skipped", "op", res.Operation, "battery_id", res.BatteryID, "reason", res.Reason)
		}
	}
	if o.reporter == nil {
		return
	}
	if err := o.reporter.Report(ctx, res); err != nil && o.log != nil {
		o.log.Errorw("analysis_report_failed", "op", res.Operation, "battery_id", res.BatteryID, "err", err)
	}
}

func (o *Orchestrator) logFailure(batteryID int, err error) {
	if o.log != nil {
		o.log.Errorw("analysis_store_failed", "battery_id", batteryID, "err", err)
	}
}
