package service

import "sync"

// batteryLocks serializes sample appends and analysis runs per battery.
// Different batteries proceed in parallel.
type batteryLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newBatteryLocks() *batteryLocks {
	return &batteryLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *batteryLocks) lock(id int) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
