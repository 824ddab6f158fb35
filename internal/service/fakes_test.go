package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

// fakeUsers is an in-memory repository.Users.
type fakeUsers struct {
	byName    map[string]*models.User
	nextID    int
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byName: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, name string) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.byName[name] = &models.User{ID: f.nextID, Name: name}
	return f.nextID, nil
}

func (f *fakeUsers) GetByName(_ context.Context, name string) (*models.User, error) {
	return f.byName[name], nil
}

// fakeBatteries is an in-memory repository.Batteries.
type fakeBatteries struct {
	mu      sync.Mutex
	rows    map[int]models.Battery
	nextID  int
	listErr error
}

func newFakeBatteries(bs ...models.Battery) *fakeBatteries {
	f := &fakeBatteries{rows: map[int]models.Battery{}}
	for _, b := range bs {
		f.rows[b.ID] = b
		if b.ID > f.nextID {
			f.nextID = b.ID
		}
	}
	return f
}

func (f *fakeBatteries) Create(_ context.Context, b models.Battery) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	f.rows[b.ID] = b
	return b.ID, nil
}

func (f *fakeBatteries) Get(_ context.Context, id int) (models.Battery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return models.Battery{}, fmt.Errorf("battery %d: %w", id, repository.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBatteries) List(_ context.Context) ([]models.Battery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Battery, 0, len(f.rows))
	for _, b := range f.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBatteries) CountByType(_ context.Context) ([]models.TypeCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, b := range f.rows {
		counts[b.Type]++
	}
	out := make([]models.TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, models.TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (f *fakeBatteries) update(id int, set func(*models.Battery)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	set(&b)
	f.rows[id] = b
	return nil
}

func (f *fakeBatteries) SaveLeftBorder(_ context.Context, id int, v float64) error {
	return f.update(id, func(b *models.Battery) { b.LeftBorder = &v })
}

func (f *fakeBatteries) SaveRightBorder(_ context.Context, id int, v float64) error {
	return f.update(id, func(b *models.Battery) { b.RightBorder = &v })
}

func (f *fakeBatteries) SaveStopTime(_ context.Context, id int, v float64) error {
	return f.update(id, func(b *models.Battery) { b.StopTime = &v })
}

// fakeSamples is an in-memory repository.Samples. CCCT SOC is derived
// through the linked fakeBatteries like the SQL join does.
type fakeSamples struct {
	mu        sync.Mutex
	batteries *fakeBatteries
	ica       map[int][]models.IcaSample
	ccct      map[int][]models.CcctSample
	nextID    int
	appendErr error
}

func newFakeSamples(b *fakeBatteries) *fakeSamples {
	return &fakeSamples{batteries: b, ica: map[int][]models.IcaSample{}, ccct: map[int][]models.CcctSample{}}
}

func (f *fakeSamples) AppendIca(_ context.Context, s models.IcaSample) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.nextID++
	s.ID = f.nextID
	f.ica[s.BatteryID] = append(f.ica[s.BatteryID], s)
	return s.ID, nil
}

func (f *fakeSamples) AppendCcct(_ context.Context, s models.CcctSample) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.nextID++
	s.ID = f.nextID
	s.SOC = 0
	f.ccct[s.BatteryID] = append(f.ccct[s.BatteryID], s)
	return s.ID, nil
}

func (f *fakeSamples) IcaSamples(_ context.Context, id int) ([]models.IcaSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.IcaSample(nil), f.ica[id]...), nil
}

func (f *fakeSamples) CcctSamples(ctx context.Context, id int) ([]models.CcctSample, error) {
	b, err := f.batteries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.CcctSample(nil), f.ccct[id]...)
	for i := range out {
		if b.NominalCharge != 0 {
			out[i].SOC = out[i].OverallCharge / b.NominalCharge
		}
	}
	return out, nil
}

func (f *fakeSamples) Counts(_ context.Context, id int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ica[id]), len(f.ccct[id]), nil
}

func (f *fakeSamples) LatestCcctTime(_ context.Context, id int) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *float64
	for _, s := range f.ccct[id] {
		v := s.ElapsedTime
		if latest == nil || v > *latest {
			latest = &v
		}
	}
	return latest, nil
}

// fakeEventRepo captures appends and list filters.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.AnalysisEvent
	gotCtx    context.Context
	gotF      repository.EventFilter
	events    []models.AnalysisEvent
	err       error
	latestErr error
	calls     int
}

func (f *fakeEventRepo) Append(_ context.Context, e models.AnalysisEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.err
}

func (f *fakeEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]models.AnalysisEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotF = filter
	return f.events, f.err
}

func (f *fakeEventRepo) Latest(_ context.Context, batteryID int, eventType string) (*models.AnalysisEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	for i := len(f.appended) - 1; i >= 0; i-- {
		if e := f.appended[i]; e.BatteryID == batteryID && e.Type == eventType {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

func newFakeRepository(bs ...models.Battery) *repository.Repository {
	batteries := newFakeBatteries(bs...)
	return &repository.Repository{
		Users:     newFakeUsers(),
		Batteries: batteries,
		Samples:   newFakeSamples(batteries),
		EventRepo: &fakeEventRepo{},
	}
}
