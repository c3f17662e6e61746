package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/lastwar-tools/truckbot/internal/config"
	"github.com/lastwar-tools/truckbot/internal/events"
	"github.com/lastwar-tools/truckbot/internal/logging"
)

// cooldownFallback is armed when the timer region cannot be read, so the
// squad is retried soon instead of being parked forever.
const cooldownFallback = time.Minute

// SquadTimer tracks one squad's deployment cooldown.
type SquadTimer struct {
	ID           int
	availableAt  time.Time
	lastCooldown time.Duration
}

// Arm sets the cooldown after a deployment.
func (t *SquadTimer) Arm(cooldown time.Duration, now time.Time) {
	t.lastCooldown = cooldown
	t.availableAt = now.Add(cooldown)
}

// Available reports whether the squad can deploy again.
func (t *SquadTimer) Available(now time.Time) bool {
	return !now.Before(t.availableAt)
}

// Wait returns the time until the squad becomes available.
func (t *SquadTimer) Wait(now time.Time) time.Duration {
	if t.Available(now) {
		return 0
	}
	return t.availableAt.Sub(now)
}

// LastCooldown returns the cooldown observed on the last deployment.
func (t *SquadTimer) LastCooldown() time.Duration {
	return t.lastCooldown
}

// StaminaBudget tracks the two stamina denominations against their
// per-run limits.
type StaminaBudget struct {
	usedLarge  int
	usedSmall  int
	limitLarge int
	limitSmall int
	unlimited  bool
}

// NewStaminaBudget creates a fresh budget for a run.
func NewStaminaBudget(limitLarge, limitSmall int, unlimited bool) *StaminaBudget {
	return &StaminaBudget{
		limitLarge: limitLarge,
		limitSmall: limitSmall,
		unlimited:  unlimited,
	}
}

// CanLarge reports whether another 50-stamina item may be taken.
func (s *StaminaBudget) CanLarge() bool {
	return s.unlimited || s.usedLarge < s.limitLarge
}

// CanSmall reports whether another 10-stamina item may be taken.
func (s *StaminaBudget) CanSmall() bool {
	return s.unlimited || s.usedSmall < s.limitSmall
}

// UseLarge counts a taken 50-stamina item.
func (s *StaminaBudget) UseLarge() { s.usedLarge++ }

// UseSmall counts a taken 10-stamina item.
func (s *StaminaBudget) UseSmall() { s.usedSmall++ }

// Exhausted reports whether both denominations are spent.
func (s *StaminaBudget) Exhausted() bool {
	return !s.CanLarge() && !s.CanSmall()
}

// Used returns the taken counts.
func (s *StaminaBudget) Used() (large, small int) {
	return s.usedLarge, s.usedSmall
}

// pickSquad chooses among the available squads the one whose last
// observed cooldown was shortest. The assumption is that a short cooldown
// repeats, so that squad frees up fastest again; a cheap heuristic kept
// in one place.
func pickSquad(available []int, timers map[int]*SquadTimer) int {
	best := available[0]
	for _, id := range available[1:] {
		if timers[id].LastCooldown() < timers[best].LastCooldown() {
			best = id
		}
	}
	return best
}

// ZombieStatus is a point-in-time snapshot of the zombie loop.
type ZombieStatus struct {
	Status    string
	Deployed  int
	UsedLarge int
	UsedSmall int
}

// ZombieBot cycles up to three squads against the gold-zombie event,
// collecting stamina until the configured limits run out.
type ZombieBot struct {
	device   Device
	vision   ZombieVision
	settings *config.Settings
	log      *logging.Logger
	bus      *events.Bus
	layout   ZombieLayout
	now      func() time.Time
	pace     time.Duration

	mu       sync.RWMutex
	status   string
	deployed int
	budget   *StaminaBudget
}

// NewZombieBot assembles the zombie loop.
func NewZombieBot(device Device, vision ZombieVision, settings *config.Settings,
	log *logging.Logger, bus *events.Bus) *ZombieBot {
	return &ZombieBot{
		device:   device,
		vision:   vision,
		settings: settings,
		log:      log,
		bus:      bus,
		layout:   DefaultZombieLayout,
		now:      time.Now,
		pace:     time.Second,
	}
}

// WithClock overrides the time source, for tests.
func (b *ZombieBot) WithClock(now func() time.Time) *ZombieBot {
	b.now = now
	return b
}

// WithPace overrides the base UI settle delay, for tests.
func (b *ZombieBot) WithPace(pace time.Duration) *ZombieBot {
	b.pace = pace
	return b
}

// Name implements Runner.
func (b *ZombieBot) Name() string { return "zombie" }

// Status returns a snapshot of the loop state.
func (b *ZombieBot) Status() ZombieStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := ZombieStatus{Status: b.status, Deployed: b.deployed}
	if b.budget != nil {
		s.UsedLarge, s.UsedSmall = b.budget.Used()
	}
	return s
}

// Run implements Runner. Deploys every enabled squad once, then keeps
// cycling whichever squad frees up, until stopped or the stamina budget
// is exhausted.
func (b *ZombieBot) Run(session *Session) {
	budget := NewStaminaBudget(b.settings.StaminaLargeMax, b.settings.StaminaSmallMax, b.settings.StaminaUnlimited)
	b.mu.Lock()
	b.budget = budget
	b.deployed = 0
	b.status = "Running"
	b.mu.Unlock()

	timers := make(map[int]*SquadTimer)
	enabled := []bool{b.settings.Squad1Enabled, b.settings.Squad2Enabled, b.settings.Squad3Enabled}
	for i, on := range enabled {
		if on {
			timers[i+1] = &SquadTimer{ID: i + 1}
		}
	}
	if len(timers) == 0 {
		b.setStatus("Stopped: no squads enabled")
		return
	}

	// Initial sequence: deploy each enabled squad once, in order.
	for id := 1; id <= 3; id++ {
		timer, ok := timers[id]
		if !ok {
			continue
		}
		if !b.navigate(session) {
			return
		}
		if err := b.deploy(session, timer, budget); err != nil {
			b.finish(err)
			return
		}
		if session.Stopping() {
			return
		}
	}

	for !session.Stopping() {
		if session.Paused() {
			b.setStatus("Paused")
			session.Sleep(time.Second)
			continue
		}

		if !b.navigate(session) {
			return
		}

		now := b.now()
		var available []int
		for id, timer := range timers {
			if timer.Available(now) {
				available = append(available, id)
			}
		}

		var target *SquadTimer
		if len(available) > 0 {
			target = timers[pickSquad(available, timers)]
		} else {
			// Wait for the squad that frees up first.
			target = nextFree(timers, now)
			wait := target.Wait(now)
			b.setStatus(fmt.Sprintf("Waiting %ds for squad %d", int(wait.Seconds()), target.ID))
			if !session.Sleep(wait) {
				return
			}
		}

		b.setStatus(fmt.Sprintf("Deploying squad %d", target.ID))
		if err := b.deploy(session, target, budget); err != nil {
			b.finish(err)
			return
		}

		if !session.Sleep(2 * b.pace) {
			return
		}
	}
}

func nextFree(timers map[int]*SquadTimer, now time.Time) *SquadTimer {
	var next *SquadTimer
	for _, timer := range timers {
		if next == nil || timer.Wait(now) < next.Wait(now) {
			next = timer
		}
	}
	return next
}

// navigate taps through the three-step sequence into the deploy screen.
func (b *ZombieBot) navigate(session *Session) bool {
	steps := []struct {
		p     Point
		pause time.Duration
	}{
		{b.layout.Nav1, b.pace},
		{b.layout.Nav2, 3 * b.pace},
		{b.layout.Nav3, b.pace},
	}
	for _, step := range steps {
		if session.Stopping() {
			return false
		}
		if err := b.device.Tap(step.p.X, step.p.Y); err != nil {
			b.log.Error("navigation tap failed", err)
			return session.Sleep(passRecoveryDelay)
		}
		if !session.Sleep(step.pause) {
			return false
		}
	}
	return true
}

// deploy sends one squad out and arms its cooldown timer. Returns
// ErrStaminaExhausted when the run must end.
func (b *ZombieBot) deploy(session *Session, timer *SquadTimer, budget *StaminaBudget) error {
	squad := b.layout.Squads[timer.ID-1]
	if err := b.device.Tap(squad.X, squad.Y); err != nil {
		return fmt.Errorf("squad tap failed: %w", err)
	}
	if !session.Sleep(b.pace) {
		return nil
	}

	screen, err := b.device.Capture()
	if err != nil {
		return fmt.Errorf("deploy capture failed: %w", err)
	}

	if b.vision.HasStaminaOffer(screen) {
		if budget.Exhausted() {
			b.log.Warn("stamina limits exhausted, ending run")
			b.bus.Publish(events.Event{Type: events.TypeStaminaExhausted, Source: b.Name(), Timestamp: time.Now()})
			return ErrStaminaExhausted
		}
		if !b.collectStamina(session, budget) {
			return ErrStaminaExhausted
		}
	} else {
		if err := b.armTimer(timer); err != nil {
			return err
		}
		session.Sleep(b.pace / 2)
		if err := b.device.Tap(b.layout.Confirm.X, b.layout.Confirm.Y); err != nil {
			return fmt.Errorf("confirm tap failed: %w", err)
		}
		session.Sleep(b.pace)
		b.countDeployment()
		return nil
	}

	if err := b.armTimer(timer); err != nil {
		return err
	}
	b.countDeployment()
	return nil
}

// collectStamina takes whatever denominations the budget still allows.
// Returns false when nothing was collectible.
func (b *ZombieBot) collectStamina(session *Session, budget *StaminaBudget) bool {
	b.setStatus("Collecting stamina")
	b.device.Tap(b.layout.Confirm.X, b.layout.Confirm.Y)
	session.Sleep(b.pace)

	collected := false
	if budget.CanLarge() {
		b.device.Tap(b.layout.StaminaLarge.X, b.layout.StaminaLarge.Y)
		budget.UseLarge()
		collected = true
		session.Sleep(b.pace)
	}
	if budget.CanSmall() {
		b.device.Tap(b.layout.StaminaSmall.X, b.layout.StaminaSmall.Y)
		budget.UseSmall()
		collected = true
		session.Sleep(b.pace)
	}

	b.device.Tap(b.layout.StaminaClose.X, b.layout.StaminaClose.Y)
	session.Sleep(b.pace)
	b.device.Tap(b.layout.Confirm.X, b.layout.Confirm.Y)
	session.Sleep(b.pace)

	if !collected {
		b.log.Warn("stamina limit reached, nothing collectible")
	}
	return collected
}

// armTimer reads the cooldown from the timer region and arms the squad
// timer, falling back to one minute when OCR misses.
func (b *ZombieBot) armTimer(timer *SquadTimer) error {
	screen, err := b.device.Capture()
	if err != nil {
		return fmt.Errorf("timer capture failed: %w", err)
	}

	cooldown, ok := b.vision.ReadCooldown(screen)
	if !ok {
		b.log.Warn(fmt.Sprintf("could not read cooldown for squad %d, arming %s fallback", timer.ID, cooldownFallback))
		cooldown = cooldownFallback
	}
	timer.Arm(cooldown, b.now())
	return nil
}

func (b *ZombieBot) countDeployment() {
	b.mu.Lock()
	b.deployed++
	deployed := b.deployed
	b.mu.Unlock()

	b.log.InfoWithFields("squad deployed", map[string]interface{}{"total": deployed})
	b.bus.Publish(events.Event{Type: events.TypeSquadDeployed, Source: b.Name(), Timestamp: time.Now()})
}

func (b *ZombieBot) setStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

func (b *ZombieBot) finish(err error) {
	if err == ErrStaminaExhausted {
		b.setStatus("Stopped: stamina limits exhausted")
	} else {
		b.setStatus(fmt.Sprintf("Stopped: %v", err))
		b.bus.Publish(events.NewBotFailedEvent(b.Name(), err))
	}
}
