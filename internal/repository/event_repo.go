package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"battery_analysis/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL = `INSERT INTO analysis_events (id, occurred_at, battery_id, type, status, message, meta) VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, occurred_at, battery_id, type, status, message, meta FROM analysis_events`
	latestEventSQL = selectEventSQL + ` WHERE battery_id = ? AND type = ? ORDER BY occurred_at DESC, rowid DESC LIMIT 1`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.AnalysisEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		toSQLiteTime(e.OccurredAt),
		e.BatteryID,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		strings.ToUpper(strings.TrimSpace(e.Status)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive), type and battery, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, f EventFilter) ([]models.AnalysisEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC().Format(sqliteTimeLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC().Format(sqliteTimeLayout))
	}
	if typ := strings.ToUpper(strings.TrimSpace(f.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if f.BatteryID > 0 {
		conds = append(conds, "battery_id = ?")
		args = append(args, f.BatteryID)
	}

	q := selectEventSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AnalysisEvent, 0, 64)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the most recent event of eventType for a battery, or nil.
func (r *EventSQLite) Latest(ctx context.Context, batteryID int, eventType string) (*models.AnalysisEvent, error) {
	typ := strings.ToUpper(strings.TrimSpace(eventType))
	ev, err := scanEvent(r.db.QueryRowContext(ctx, latestEventSQL, batteryID, typ))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest %s event for battery %d: %w", typ, batteryID, err)
	}
	return &ev, nil
}

func scanEvent(row rowScanner) (models.AnalysisEvent, error) {
	var (
		ev      models.AnalysisEvent
		at      time.Time
		metaStr sql.NullString
	)
	if err := row.Scan(&ev.EventID, &at, &ev.BatteryID, &ev.Type, &ev.Status, &ev.Description, &metaStr); err != nil {
		return models.AnalysisEvent{}, err
	}
	ev.OccurredAt = at.UTC()

	if metaStr.Valid && metaStr.String != "" {
		var v any
		if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
			ev.Metadata = v
		} else {
			ev.Metadata = metaStr.String // keep raw if malformed
		}
	}
	return ev, nil
}
