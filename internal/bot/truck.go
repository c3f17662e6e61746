package bot

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/lastwar-tools/truckbot/internal/config"
	"github.com/lastwar-tools/truckbot/internal/events"
	"github.com/lastwar-tools/truckbot/internal/logging"
	"github.com/lastwar-tools/truckbot/internal/ocr"
)

const (
	maintenancePollInterval = 10 * time.Second
	passRecoveryDelay       = 5 * time.Second
)

// TruckCounters are the per-run truck statistics shown on the dashboard.
type TruckCounters struct {
	Processed int
	Shared    int
	Skipped   int
}

// TruckStatus is a point-in-time snapshot of the truck loop.
type TruckStatus struct {
	Status     string
	LastAction string
	Counters   TruckCounters
}

// TruckBot finds reindeer trucks on screen, reads their strength and
// server, applies the share policy and shares them into chat.
type TruckBot struct {
	device   Device
	vision   TruckVision
	ledger   DedupLedger
	stats    StatsRecorder
	monitor  MaintenanceMonitor
	settings *config.Settings
	log      *logging.Logger
	bus      *events.Bus

	mu         sync.RWMutex
	status     string
	lastAction string
	counters   TruckCounters
	actor      string
}

// NewTruckBot assembles the truck loop.
func NewTruckBot(device Device, vision TruckVision, ledger DedupLedger, stats StatsRecorder,
	monitor MaintenanceMonitor, settings *config.Settings, log *logging.Logger, bus *events.Bus) *TruckBot {
	return &TruckBot{
		device:   device,
		vision:   vision,
		ledger:   ledger,
		stats:    stats,
		monitor:  monitor,
		settings: settings,
		log:      log,
		bus:      bus,
	}
}

// Name implements Runner.
func (b *TruckBot) Name() string { return "truck" }

// SetActor sets the user name recorded with share statistics.
func (b *TruckBot) SetActor(actor string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actor = actor
}

// Status returns a snapshot of the loop state.
func (b *TruckBot) Status() TruckStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return TruckStatus{
		Status:     b.status,
		LastAction: b.lastAction,
		Counters:   b.counters,
	}
}

// ResetCounters zeroes the per-run counters, for the dashboard reset.
func (b *TruckBot) ResetCounters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters = TruckCounters{}
}

// Run implements Runner. One iteration per screen pass; any error or
// panic inside a pass is logged and the loop continues after a short
// delay.
func (b *TruckBot) Run(session *Session) {
	b.monitor.Begin()
	b.setStatus("Running", "starting up")

	resetDone := make(chan struct{})
	go b.ledgerResetLoop(session, resetDone)
	defer func() { <-resetDone }()

	for !session.Stopping() {
		if session.Paused() {
			b.setStatus("Paused", "")
			session.Sleep(time.Second)
			continue
		}

		enabled, err := b.monitor.Maintenance()
		if err != nil {
			b.log.Error("maintenance state read failed", err)
		}
		if enabled {
			b.setStatus("Maintenance", "game under maintenance, bot idle")
			session.Sleep(maintenancePollInterval)
			continue
		}

		b.runPass(session)

		if _, err := b.monitor.Check(); err != nil {
			b.log.Error("maintenance check failed", err)
		}
	}

	b.setStatus("Stopped", "")
}

// ledgerResetLoop truncates the dedup ledger every ResetMinutes so stale
// strengths age out and recurring trucks can be shared again. A
// non-positive interval disables the reset.
func (b *TruckBot) ledgerResetLoop(session *Session, done chan struct{}) {
	defer close(done)
	interval := time.Duration(b.settings.ResetMinutes) * time.Minute
	if interval <= 0 {
		return
	}
	for {
		if !session.Sleep(interval) {
			return
		}
		if err := b.ledger.Reset(); err != nil {
			b.log.Error("ledger reset failed", err)
			continue
		}
		b.setAction(fmt.Sprintf("dedup ledger reset after %d min", b.settings.ResetMinutes))
		b.log.Info("dedup ledger reset")
	}
}

// runPass performs one capture-match-share pass with panic recovery.
func (b *TruckBot) runPass(session *Session) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pass panicked: %v", r)
			b.log.Error("truck pass failed", err)
			b.setStatus("Error", err.Error())
			session.Sleep(passRecoveryDelay)
		}
	}()

	if err := b.pass(session); err != nil {
		b.log.Error("truck pass failed", err)
		b.setStatus("Error", err.Error())
		session.Sleep(passRecoveryDelay)
	}
}

func (b *TruckBot) pass(session *Session) error {
	b.setStatus("Running", "scanning for trucks")

	screen, err := b.device.Capture()
	if err != nil {
		return fmt.Errorf("screen capture failed: %w", err)
	}

	trucks := b.vision.FindTrucks(screen)
	layout := b.shareLayout()
	if len(trucks) == 0 {
		b.setAction("no truck found, escaping")
		if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
			return err
		}
		b.bump(func(c *TruckCounters) { c.Processed++ })
		return nil
	}

	// First match in scan order; good enough in practice since the list
	// shows at most a handful of trucks.
	target := trucks[0]
	b.setAction(fmt.Sprintf("truck found at (%d,%d)", target.X, target.Y))
	if err := b.device.Tap(target.X+TruckTapOffset.X, target.Y+TruckTapOffset.Y); err != nil {
		return err
	}

	detail, err := b.device.Capture()
	if err != nil {
		return fmt.Errorf("detail capture failed: %w", err)
	}

	if b.settings.ServerFilterEnabled {
		b.setAction("checking server")
		if !b.vision.MatchesServer(detail, b.settings.ServerNumber) {
			b.setAction("wrong server, skipping")
			if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
				return err
			}
			b.skip("wrong server")
			return nil
		}
	}

	b.setAction("reading strength")
	strengthText := b.vision.ReadStrength(detail)
	value, parsed := ocr.ParseStrength(strengthText)

	if !parsed {
		// An unreadable detail view usually means a dialog is stacked on
		// top, so escape twice to get back to the list.
		b.setAction("strength unreadable, double escape")
		if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
			return err
		}
		session.Sleep(500 * time.Millisecond)
		if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
			return err
		}
		b.skip("strength unreadable")
		return nil
	}

	if b.settings.StrengthLimitEnabled && value > b.settings.StrengthLimit {
		b.setAction(fmt.Sprintf("strength %.1fM above limit %.1fM, skipping", value, b.settings.StrengthLimit))
		if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
			return err
		}
		b.skip("over strength limit")
		return nil
	}

	known, err := b.ledger.Contains(strengthText)
	if err != nil {
		return fmt.Errorf("ledger lookup failed: %w", err)
	}
	if known {
		b.setAction(fmt.Sprintf("strength %s already shared, skipping", strengthText))
		if err := b.device.Tap(layout.Escape.X, layout.Escape.Y); err != nil {
			return err
		}
		b.skip("already shared")
		return nil
	}

	return b.share(detail, strengthText, layout)
}

// share records the strength, reads the server tag and runs the timed
// share tap sequence.
func (b *TruckBot) share(detail *image.RGBA, strengthText string, layout ShareLayout) error {
	b.setAction(fmt.Sprintf("sharing truck (strength %s)", strengthText))

	if err := b.ledger.Add(strengthText); err != nil {
		return fmt.Errorf("ledger append failed: %w", err)
	}
	server := b.vision.ReadServer(detail)

	for _, p := range []Point{layout.Share, layout.Confirm1, layout.Confirm2, layout.Escape} {
		if err := b.device.Tap(p.X, p.Y); err != nil {
			return err
		}
	}

	b.bump(func(c *TruckCounters) { c.Shared++; c.Processed++ })

	b.mu.RLock()
	actor := b.actor
	shared := b.counters.Shared
	b.mu.RUnlock()

	b.setAction(fmt.Sprintf("truck shared (%d total)", shared))
	if err := b.stats.RecordShare(strengthText, server, actor); err != nil {
		b.log.Error("failed to record share statistic", err)
	}
	b.bus.Publish(events.NewTruckSharedEvent(strengthText, server, b.settings.ShareMode))

	if err := b.monitor.RecordSuccess(); err != nil {
		b.log.Error("failed to record liveness success", err)
	}
	return nil
}

func (b *TruckBot) shareLayout() ShareLayout {
	if b.settings.ShareMode == config.ShareModeAlliance {
		return AllianceShareLayout
	}
	return WorldShareLayout
}

func (b *TruckBot) setStatus(status, action string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	if action != "" {
		b.lastAction = action
	}
}

func (b *TruckBot) setAction(action string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAction = action
}

func (b *TruckBot) bump(update func(*TruckCounters)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	update(&b.counters)
}

// skip counts a skipped truck and announces the reason.
func (b *TruckBot) skip(reason string) {
	b.bump(func(c *TruckCounters) { c.Skipped++; c.Processed++ })
	b.bus.Publish(events.Event{
		Type:      events.TypeTruckSkipped,
		Source:    b.Name(),
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"reason": reason},
	})
}
