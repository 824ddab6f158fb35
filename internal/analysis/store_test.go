package analysis

import (
	"context"
	"errors"
	"sync"

	"battery_analysis/internal/models"
)

// memStore is an in-memory Store used across the package tests.
type memStore struct {
	mu        sync.Mutex
	batteries map[int]models.Battery
	ica       map[int][]models.IcaSample
	ccct      map[int][]models.CcctSample
	saves     int
	failSave  error
}

func newMemStore() *memStore {
	return &memStore{
		batteries: map[int]models.Battery{},
		ica:       map[int][]models.IcaSample{},
		ccct:      map[int][]models.CcctSample{},
	}
}

var errNoBattery = errors.New("no such battery")

func (s *memStore) Battery(_ context.Context, id int) (models.Battery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batteries[id]
	if !ok {
		return models.Battery{}, errNoBattery
	}
	return b, nil
}

func (s *memStore) IcaSamples(_ context.Context, id int) ([]models.IcaSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.IcaSample(nil), s.ica[id]...), nil
}

func (s *memStore) CcctSamples(_ context.Context, id int) ([]models.CcctSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.batteries[id]
	out := append([]models.CcctSample(nil), s.ccct[id]...)
	for i := range out {
		if b.NominalCharge != 0 {
			out[i].SOC = out[i].OverallCharge / b.NominalCharge
		}
	}
	return out, nil
}

func (s *memStore) save(id int, set func(*models.Battery, *float64), v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	b, ok := s.batteries[id]
	if !ok {
		return errNoBattery
	}
	set(&b, &v)
	s.batteries[id] = b
	s.saves++
	return nil
}

func (s *memStore) SaveLeftBorder(_ context.Context, id int, v float64) error {
	return s.save(id, func(b *models.Battery, v *float64) { b.LeftBorder = v }, v)
}

func (s *memStore) SaveRightBorder(_ context.Context, id int, v float64) error {
	return s.save(id, func(b *models.Battery, v *float64) { b.RightBorder = v }, v)
}

func (s *memStore) SaveStopTime(_ context.Context, id int, v float64) error {
	return s.save(id, func(b *models.Battery, v *float64) { b.StopTime = v }, v)
}

func (s *memStore) addBattery(b models.Battery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batteries[b.ID] = b
}

func (s *memStore) addIca(id int, samples ...models.IcaSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ica[id] = append(s.ica[id], samples...)
}

func (s *memStore) addCcct(id int, samples ...models.CcctSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ccct[id] = append(s.ccct[id], samples...)
}

func (s *memStore) get(id int) models.Battery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batteries[id]
}
