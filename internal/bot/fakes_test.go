package bot

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/lastwar-tools/truckbot/internal/config"
	"github.com/lastwar-tools/truckbot/internal/events"
	"github.com/lastwar-tools/truckbot/internal/logging"
)

// fakeDevice records taps and serves scripted frames.
type fakeDevice struct {
	mu       sync.Mutex
	taps     []Point
	captures int
	frames   []*image.RGBA
	failures int
	connects int
}

func (d *fakeDevice) Capture() (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failures > 0 {
		d.failures--
		return nil, errors.New("transport gone")
	}
	var frame *image.RGBA
	if len(d.frames) > 0 {
		frame = d.frames[d.captures%len(d.frames)]
	} else {
		frame = image.NewRGBA(image.Rect(0, 0, 720, 1560))
	}
	d.captures++
	return frame, nil
}

func (d *fakeDevice) Tap(x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taps = append(d.taps, Point{x, y})
	return nil
}

func (d *fakeDevice) Swipe(int, int, int, int, int) error { return nil }

func (d *fakeDevice) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connects++
	return nil
}

func (d *fakeDevice) Disconnect() error { return nil }

func (d *fakeDevice) tapLog() []Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Point, len(d.taps))
	copy(out, d.taps)
	return out
}

// fakeTruckVision serves scripted perception results.
type fakeTruckVision struct {
	trucks   []image.Point
	strength string
	server   string
	matches  bool
}

func (v *fakeTruckVision) FindTrucks(*image.RGBA) []image.Point   { return v.trucks }
func (v *fakeTruckVision) ReadStrength(*image.RGBA) string        { return v.strength }
func (v *fakeTruckVision) ReadServer(*image.RGBA) string          { return v.server }
func (v *fakeTruckVision) MatchesServer(*image.RGBA, string) bool { return v.matches }

// fakeZombieVision serves a scripted stamina offer and cooldown per call.
type fakeZombieVision struct {
	mu        sync.Mutex
	offers    []bool
	cooldowns []time.Duration
	offerIdx  int
	cdIdx     int
}

func (v *fakeZombieVision) HasStaminaOffer(*image.RGBA) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.offerIdx >= len(v.offers) {
		return false
	}
	offer := v.offers[v.offerIdx]
	v.offerIdx++
	return offer
}

func (v *fakeZombieVision) ReadCooldown(*image.RGBA) (time.Duration, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cdIdx >= len(v.cooldowns) {
		return 0, false
	}
	cd := v.cooldowns[v.cdIdx]
	v.cdIdx++
	return cd, true
}

// memLedger is an in-memory DedupLedger.
type memLedger struct {
	mu      sync.Mutex
	entries map[string]bool
	resets  int
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[string]bool)}
}

func (l *memLedger) Contains(value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[value], nil
}

func (l *memLedger) Add(value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[value] = true
	return nil
}

func (l *memLedger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]bool)
	l.resets++
	return nil
}

// memStats records shares in memory.
type memStats struct {
	mu     sync.Mutex
	shares [][3]string
}

func (s *memStats) RecordShare(strength, server, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares = append(s.shares, [3]string{strength, server, actor})
	return nil
}

func (s *memStats) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shares)
}

// memMonitor is an in-memory MaintenanceMonitor.
type memMonitor struct {
	mu        sync.Mutex
	enabled   bool
	successes int
	maintErr  error
}

func (m *memMonitor) Begin() {}

func (m *memMonitor) RecordSuccess() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes++
	m.enabled = false
	return nil
}

func (m *memMonitor) Check() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled, nil
}

func (m *memMonitor) Maintenance() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled, m.maintErr
}

// testSettings returns settings tuned for fast tests.
func testSettings() *config.Settings {
	s := config.NewDefaultSettings()
	s.TapSettleMS = 0
	s.ResetMinutes = 60
	return s
}

func testLogger() *logging.Logger {
	return logging.New("test").SetMinLevel(logging.LevelError)
}

func newSession() (*Session, chan struct{}) {
	stopCh := make(chan struct{})
	c := &Controller{}
	return &Session{controller: c, stopCh: stopCh}, stopCh
}

func newTestBus() *events.Bus {
	return events.NewBus(64)
}

// idleRunner runs until stopped, signalling each start.
type idleRunner struct {
	name    string
	started chan struct{} // buffered
}

func (r *idleRunner) Name() string { return r.name }

func (r *idleRunner) Run(session *Session) {
	select {
	case r.started <- struct{}{}:
	default:
	}
	for session.Sleep(time.Hour) {
	}
}

// blockingRunner wedges its first run in a device-style call that ignores
// the stop request, then behaves like idleRunner on later runs.
type blockingRunner struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (r *blockingRunner) Name() string { return "blocking" }

func (r *blockingRunner) Run(session *Session) {
	r.mu.Lock()
	r.calls++
	first := r.calls == 1
	r.mu.Unlock()

	if first {
		<-r.release
		return
	}
	for session.Sleep(time.Hour) {
	}
}
