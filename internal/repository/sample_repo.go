package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"battery_analysis/internal/models"
)

type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite {
	return &SampleSQLite{db: db}
}

var _ Samples = (*SampleSQLite)(nil)

const (
	insertIcaSQL  = `INSERT INTO ica_samples (battery_id, charge, voltage, recorded_at) VALUES (?, ?, ?, ?)`
	insertCcctSQL = `INSERT INTO ccct_samples (battery_id, overall_charge, ccct_time, recorded_at) VALUES (?, ?, ?, ?)`

	selectIcaSQL = `SELECT id, battery_id, charge, voltage, recorded_at
		FROM ica_samples WHERE battery_id = ? ORDER BY id ASC`

	// SOC is derived from the owning battery's nominal charge at read time.
	selectCcctSQL = `SELECT c.id, c.battery_id, c.overall_charge, b.nominal_charge, c.ccct_time, c.recorded_at
		FROM ccct_samples c JOIN batteries b ON b.id = c.battery_id
		WHERE c.battery_id = ? ORDER BY c.id ASC`

	countSamplesSQL = `SELECT
		(SELECT COUNT(id) FROM ica_samples WHERE battery_id = ?),
		(SELECT COUNT(id) FROM ccct_samples WHERE battery_id = ?)`

	latestCcctTimeSQL = `SELECT MAX(ccct_time) FROM ccct_samples WHERE battery_id = ?`
)

// AppendIca stores one ICA sample and returns its ID.
func (r *SampleSQLite) AppendIca(ctx context.Context, s models.IcaSample) (int, error) {
	res, err := r.db.ExecContext(ctx, insertIcaSQL, s.BatteryID, s.Charge, s.Voltage, toSQLiteTime(s.Timestamp))
	if err != nil {
		return 0, fmt.Errorf("insert ica sample for battery %d: %w", s.BatteryID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for ica sample: %w", err)
	}
	return int(id), nil
}

// AppendCcct stores one CCCT sample and returns its ID.
func (r *SampleSQLite) AppendCcct(ctx context.Context, s models.CcctSample) (int, error) {
	res, err := r.db.ExecContext(ctx, insertCcctSQL, s.BatteryID, s.OverallCharge, s.ElapsedTime, toSQLiteTime(s.Timestamp))
	if err != nil {
		return 0, fmt.Errorf("insert ccct sample for battery %d: %w", s.BatteryID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for ccct sample: %w", err)
	}
	return int(id), nil
}

// IcaSamples returns a battery's ICA samples in insertion order.
func (r *SampleSQLite) IcaSamples(ctx context.Context, batteryID int) ([]models.IcaSample, error) {
	rows, err := r.db.QueryContext(ctx, selectIcaSQL, batteryID)
	if err != nil {
		return nil, fmt.Errorf("select ica samples for battery %d: %w", batteryID, err)
	}
	defer rows.Close()

	out := make([]models.IcaSample, 0, 64)
	for rows.Next() {
		var (
			s  models.IcaSample
			at time.Time
		)
		if err := rows.Scan(&s.ID, &s.BatteryID, &s.Charge, &s.Voltage, &at); err != nil {
			return nil, fmt.Errorf("scan ica sample: %w", err)
		}
		s.Timestamp = at.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// CcctSamples returns a battery's CCCT samples in insertion order with SOC
// filled in. SOC stays 0 while the nominal charge is unknown.
func (r *SampleSQLite) CcctSamples(ctx context.Context, batteryID int) ([]models.CcctSample, error) {
	rows, err := r.db.QueryContext(ctx, selectCcctSQL, batteryID)
	if err != nil {
		return nil, fmt.Errorf("select ccct samples for battery %d: %w", batteryID, err)
	}
	defer rows.Close()

	out := make([]models.CcctSample, 0, 16)
	for rows.Next() {
		var (
			s       models.CcctSample
			nominal float64
			at      time.Time
		)
		if err := rows.Scan(&s.ID, &s.BatteryID, &s.OverallCharge, &nominal, &s.ElapsedTime, &at); err != nil {
			return nil, fmt.Errorf("scan ccct sample: %w", err)
		}
		if nominal != 0 {
			s.SOC = s.OverallCharge / nominal
		}
		s.Timestamp = at.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Counts returns how many ICA and CCCT samples a battery has.
func (r *SampleSQLite) Counts(ctx context.Context, batteryID int) (int, int, error) {
	var ica, ccct int
	if err := r.db.QueryRowContext(ctx, countSamplesSQL, batteryID, batteryID).Scan(&ica, &ccct); err != nil {
		return 0, 0, fmt.Errorf("count samples for battery %d: %w", batteryID, err)
	}
	return ica, ccct, nil
}

// LatestCcctTime returns the largest elapsed time recorded, or nil when none.
func (r *SampleSQLite) LatestCcctTime(ctx context.Context, batteryID int) (*float64, error) {
	var v sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, latestCcctTimeSQL, batteryID).Scan(&v); err != nil {
		return nil, fmt.Errorf("latest ccct time for battery %d: %w", batteryID, err)
	}
	return nullableFloat(v), nil
}
