package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"battery_analysis/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// sqliteTimeLayout is the TIMESTAMP text format written to SQLite.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type Users interface {
	Create(ctx context.Context, name string) (int, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
}

type Batteries interface {
	Create(ctx context.Context, b models.Battery) (int, error)
	Get(ctx context.Context, id int) (models.Battery, error)
	List(ctx context.Context) ([]models.Battery, error)
	CountByType(ctx context.Context) ([]models.TypeCount, error)
	SaveLeftBorder(ctx context.Context, id int, v float64) error
	SaveRightBorder(ctx context.Context, id int, v float64) error
	SaveStopTime(ctx context.Context, id int, v float64) error
}

type Samples interface {
	AppendIca(ctx context.Context, s models.IcaSample) (int, error)
	AppendCcct(ctx context.Context, s models.CcctSample) (int, error)
	IcaSamples(ctx context.Context, batteryID int) ([]models.IcaSample, error)
	CcctSamples(ctx context.Context, batteryID int) ([]models.CcctSample, error)
	Counts(ctx context.Context, batteryID int) (ica int, ccct int, err error)
	LatestCcctTime(ctx context.Context, batteryID int) (*float64, error)
}

// EventFilter narrows an analysis event listing. Zero values mean "any".
type EventFilter struct {
	From      time.Time
	To        time.Time
	Type      string
	BatteryID int
}

type EventRepo interface {
	Append(ctx context.Context, e models.AnalysisEvent) error
	List(ctx context.Context, f EventFilter) ([]models.AnalysisEvent, error)
	// Latest returns the newest event of a type for a battery, or nil when none.
	Latest(ctx context.Context, batteryID int, eventType string) (*models.AnalysisEvent, error)
}

type Repository struct {
	Users     Users
	Batteries Batteries
	Samples   Samples
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:     NewUserRepository(db),
		Batteries: NewBatterySQLite(db),
		Samples:   NewSampleSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}

// toSQLiteTime formats t in UTC, substituting now for the zero time.
func toSQLiteTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(sqliteTimeLayout)
}
