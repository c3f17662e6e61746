package monitor

import (
	"sync"
	"time"
)

// FlagStore persists the maintenance flag across restarts.
type FlagStore interface {
	SetMaintenance(enabled bool) error
	Maintenance() (bool, error)
}

// Liveness watches for prolonged stretches without productive work and
// flips the shared maintenance flag when the bot has gone quiet, on the
// assumption that the game is down for maintenance. The next success
// clears the flag again.
type Liveness struct {
	mu          sync.Mutex
	store       FlagStore
	threshold   time.Duration
	lastSuccess time.Time
	now         func() time.Time

	onChange func(enabled bool)
}

// NewLiveness creates a monitor with the given inactivity threshold.
func NewLiveness(store FlagStore, threshold time.Duration) *Liveness {
	return &Liveness{
		store:     store,
		threshold: threshold,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (l *Liveness) WithClock(now func() time.Time) *Liveness {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

// OnChange registers a callback fired whenever the monitor flips the flag.
// Called without the internal lock held.
func (l *Liveness) OnChange(fn func(enabled bool)) *Liveness {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
	return l
}

// Begin marks the start of a run. The inactivity clock starts now, so a
// freshly started bot gets a full threshold before maintenance triggers.
func (l *Liveness) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSuccess = l.now()
}

// RecordSuccess notes productive work. Clears maintenance if it was on.
func (l *Liveness) RecordSuccess() error {
	l.mu.Lock()
	l.lastSuccess = l.now()
	fn := l.onChange
	l.mu.Unlock()

	enabled, err := l.store.Maintenance()
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	if err := l.store.SetMaintenance(false); err != nil {
		return err
	}
	if fn != nil {
		fn(false)
	}
	return nil
}

// Check flips maintenance on when the threshold has elapsed since the last
// success. Returns the current maintenance state.
func (l *Liveness) Check() (bool, error) {
	l.mu.Lock()
	elapsed := l.now().Sub(l.lastSuccess)
	threshold := l.threshold
	fn := l.onChange
	l.mu.Unlock()

	enabled, err := l.store.Maintenance()
	if err != nil {
		return false, err
	}
	if enabled || elapsed <= threshold {
		return enabled, nil
	}

	if err := l.store.SetMaintenance(true); err != nil {
		return false, err
	}
	if fn != nil {
		fn(true)
	}
	return true, nil
}

// Maintenance reads the current persisted flag without evaluating the
// threshold.
func (l *Liveness) Maintenance() (bool, error) {
	return l.store.Maintenance()
}

// SetMaintenance forces the flag, for the operator override.
func (l *Liveness) SetMaintenance(enabled bool) error {
	l.mu.Lock()
	if !enabled {
		// Keep the clock from instantly re-triggering after a manual clear.
		l.lastSuccess = l.now()
	}
	fn := l.onChange
	l.mu.Unlock()

	if err := l.store.SetMaintenance(enabled); err != nil {
		return err
	}
	if fn != nil {
		fn(enabled)
	}
	return nil
}
