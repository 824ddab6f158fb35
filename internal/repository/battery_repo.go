package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"battery_analysis/internal/models"
)

type BatterySQLite struct {
	db *sql.DB
}

func NewBatterySQLite(db *sql.DB) *BatterySQLite {
	return &BatterySQLite{db: db}
}

var _ Batteries = (*BatterySQLite)(nil)

const (
	batteryColumns = `id, user_id, bat_type, nominal_charge,
		f_ica_c, l_ica_c, f_ccct_c, l_ccct_c, ccct_stage, filter_width, peak, model,
		left_border, right_border, stop_time, created_at`

	insertBatterySQL = `INSERT INTO batteries (user_id, bat_type, nominal_charge,
		f_ica_c, l_ica_c, f_ccct_c, l_ccct_c, ccct_stage, filter_width, peak, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectBatterySQL     = `SELECT ` + batteryColumns + ` FROM batteries WHERE id = ?`
	selectBatteriesSQL   = `SELECT ` + batteryColumns + ` FROM batteries ORDER BY id ASC`
	countBatteryTypesSQL = `SELECT bat_type, COUNT(id) FROM batteries GROUP BY bat_type ORDER BY bat_type ASC`
	updateLeftBorderSQL  = `UPDATE batteries SET left_border = ? WHERE id = ?`
	updateRightBorderSQL = `UPDATE batteries SET right_border = ? WHERE id = ?`
	updateStopTimeSQL    = `UPDATE batteries SET stop_time = ? WHERE id = ?`
)

// Create inserts a battery with its parameters and returns the new ID.
func (r *BatterySQLite) Create(ctx context.Context, b models.Battery) (int, error) {
	p := b.Parameters
	res, err := r.db.ExecContext(ctx, insertBatterySQL,
		b.UserID,
		b.Type,
		b.NominalCharge,
		p.FirstIcaCycle,
		p.LastIcaCycle,
		p.FirstCcctCycle,
		p.LastCcctCycle,
		p.CcctCyclesStage,
		p.FilterWidth,
		p.Peak,
		p.Model,
		toSQLiteTime(b.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert battery for user %d: %w", b.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for battery: %w", err)
	}
	return int(id), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattery(row rowScanner) (models.Battery, error) {
	var (
		b                 models.Battery
		left, right, stop sql.NullFloat64
		created           time.Time
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.Type, &b.NominalCharge,
		&b.Parameters.FirstIcaCycle,
		&b.Parameters.LastIcaCycle,
		&b.Parameters.FirstCcctCycle,
		&b.Parameters.LastCcctCycle,
		&b.Parameters.CcctCyclesStage,
		&b.Parameters.FilterWidth,
		&b.Parameters.Peak,
		&b.Parameters.Model,
		&left, &right, &stop, &created,
	)
	if err != nil {
		return models.Battery{}, err
	}
	b.LeftBorder = nullableFloat(left)
	b.RightBorder = nullableFloat(right)
	b.StopTime = nullableFloat(stop)
	b.CreatedAt = created.UTC()
	return b, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Get loads one battery. Returns ErrNotFound if it does not exist.
func (r *BatterySQLite) Get(ctx context.Context, id int) (models.Battery, error) {
	b, err := scanBattery(r.db.QueryRowContext(ctx, selectBatterySQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Battery{}, fmt.Errorf("battery %d: %w", id, ErrNotFound)
		}
		return models.Battery{}, fmt.Errorf("select battery %d: %w", id, err)
	}
	return b, nil
}

// List returns every battery ordered by ID.
func (r *BatterySQLite) List(ctx context.Context) ([]models.Battery, error) {
	rows, err := r.db.QueryContext(ctx, selectBatteriesSQL)
	if err != nil {
		return nil, fmt.Errorf("select batteries: %w", err)
	}
	defer rows.Close()

	var out []models.Battery
	for rows.Next() {
		b, err := scanBattery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan battery: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountByType returns how many batteries of each type are registered.
func (r *BatterySQLite) CountByType(ctx context.Context) ([]models.TypeCount, error) {
	rows, err := r.db.QueryContext(ctx, countBatteryTypesSQL)
	if err != nil {
		return nil, fmt.Errorf("count batteries by type: %w", err)
	}
	defer rows.Close()

	var out []models.TypeCount
	for rows.Next() {
		var tc models.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *BatterySQLite) SaveLeftBorder(ctx context.Context, id int, v float64) error {
	return r.updateOne(ctx, updateLeftBorderSQL, "left border", id, v)
}

func (r *BatterySQLite) SaveRightBorder(ctx context.Context, id int, v float64) error {
	return r.updateOne(ctx, updateRightBorderSQL, "right border", id, v)
}

func (r *BatterySQLite) SaveStopTime(ctx context.Context, id int, v float64) error {
	return r.updateOne(ctx, updateStopTimeSQL, "stop time", id, v)
}

// updateOne writes a single result column; one statement keeps it atomic.
func (r *BatterySQLite) updateOne(ctx context.Context, query, what string, id int, v float64) error {
	res, err := r.db.ExecContext(ctx, query, v, id)
	if err != nil {
		return fmt.Errorf("update %s of battery %d: %w", what, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s of battery %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("battery %d: %w", id, ErrNotFound)
	}
	return nil
}
