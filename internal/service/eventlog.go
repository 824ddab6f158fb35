package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidBatteryID = errors.New("invalid battery id: must be >= 0")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f LogFilter) (repository.EventFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventFilter{}, errInvalidTimeRange
	}
	if f.BatteryID < 0 {
		return repository.EventFilter{}, errInvalidBatteryID
	}
	return repository.EventFilter{From: from, To: to, Type: normalizeEventType(f.Type), BatteryID: f.BatteryID}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.AnalysisEvent, error) {
	filter, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, filter)
}

// Report records an analysis outcome in the event log. Outcomes that are only
// waiting for more samples are not recorded, nor are outcomes identical to the
// latest event of the same battery and type.
func (s *EventLogService) Report(ctx context.Context, o analysis.Outcome) error {
	if o.Status == analysis.StatusWaiting {
		return nil
	}
	ev := outcomeEvent(o, time.Now().UTC())
	last, err := s.eventRepo.Latest(ctx, ev.BatteryID, ev.Type)
	if err != nil {
		return err
	}
	if last != nil && sameOutcome(*last, ev) {
		return nil
	}
	return s.eventRepo.Append(ctx, ev)
}

func sameOutcome(a, b models.AnalysisEvent) bool {
	if !strings.EqualFold(a.Status, b.Status) || a.Description != b.Description {
		return false
	}
	av, aok := eventValue(a.Metadata)
	bv, bok := eventValue(b.Metadata)
	return aok == bok && av == bv
}

// eventValue extracts the applied value from event metadata.
func eventValue(meta any) (float64, bool) {
	m, ok := meta.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := m["value"].(float64)
	return v, ok
}

func outcomeEvent(o analysis.Outcome, at time.Time) models.AnalysisEvent {
	ev := models.AnalysisEvent{
		OccurredAt: at,
		BatteryID:  o.BatteryID,
		Type:       o.Operation,
		Status:     o.Status,
	}
	switch o.Status {
	case analysis.StatusApplied:
		ev.Description = strings.ToLower(strings.ReplaceAll(o.Operation, "_", " ")) + " updated"
		ev.Metadata = map[string]any{"value": o.Value}
	default:
		ev.Description = "analysis not applied"
		if o.Reason != nil {
			ev.Description = o.Reason.Error()
		}
	}
	return ev
}
