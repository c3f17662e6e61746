package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/lastwar-tools/truckbot/internal/events"
	"github.com/lastwar-tools/truckbot/internal/logging"
)

const defaultJoinTimeout = 10 * time.Second

// Runner is a bot loop executed under a Controller.
type Runner interface {
	Name() string
	Run(session *Session)
}

// Session is the cooperative handle a Runner polls while it works. All
// loop sleeps go through Sleep so a stop request is honored within half a
// second.
type Session struct {
	controller *Controller
	stopCh     chan struct{}
}

// Stopping reports whether the run should wind down.
func (s *Session) Stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Paused reports whether the run is paused.
func (s *Session) Paused() bool {
	s.controller.mu.Lock()
	defer s.controller.mu.Unlock()
	return s.controller.paused
}

// Sleep waits for d in chunks of at most half a second, returning false
// as soon as a stop is requested.
func (s *Session) Sleep(d time.Duration) bool {
	const chunk = 500 * time.Millisecond
	for d > 0 {
		step := d
		if step > chunk {
			step = chunk
		}
		select {
		case <-s.stopCh:
			return false
		case <-time.After(step):
		}
		d -= step
	}
	return !s.Stopping()
}

// Controller owns one bot loop: exclusive preemptible ownership, pause
// toggling, cooperative stop and an optional wall-clock auto-stop timer.
type Controller struct {
	mu     sync.Mutex
	runner Runner
	device Connector
	log    *logging.Logger
	bus    *events.Bus

	running bool
	paused  bool
	owner   string
	stopCh  chan struct{}
	done    chan struct{}

	timerEnabled bool
	deadline     time.Time
	joinTimeout  time.Duration
}

// NewController creates a controller for one runner.
func NewController(runner Runner, device Connector, log *logging.Logger, bus *events.Bus) *Controller {
	return &Controller{
		runner:      runner,
		device:      device,
		log:         log,
		bus:         bus,
		joinTimeout: defaultJoinTimeout,
	}
}

// SetAutoStop arms the wall-clock auto-stop timer for the next Start.
// Passing zero disables it.
func (c *Controller) SetAutoStop(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timerEnabled = duration > 0
	if c.timerEnabled {
		c.deadline = time.Now().Add(duration)
	}
}

// Start launches the runner for owner. Starting an already-running bot
// under the same owner is a no-op. A different non-privileged owner gets
// ErrBotInUse; a privileged one force-stops the current run and takes
// over.
func (c *Controller) Start(owner string, privileged bool) error {
	// Stop drops the lock, so another caller may have taken over in the
	// meantime; re-evaluate ownership until the slot is observed free
	// under the lock.
	c.mu.Lock()
	for c.running {
		if c.owner == owner {
			c.mu.Unlock()
			return nil
		}
		if !privileged {
			current := c.owner
			c.mu.Unlock()
			return fmt.Errorf("%w by %s", ErrBotInUse, current)
		}
		c.log.InfoWithFields("preempting current run", map[string]interface{}{
			"previous_owner": c.owner,
			"new_owner":      owner,
		})
		c.mu.Unlock()
		if err := c.Stop(); err != nil {
			return fmt.Errorf("failed to preempt previous run: %w", err)
		}
		c.mu.Lock()
	}

	if err := c.device.Connect(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("device connection failed: %w", err)
	}

	c.running = true
	c.paused = false
	c.owner = owner
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})
	session := &Session{controller: c, stopCh: c.stopCh}
	stopCh := c.stopCh
	done := c.done
	c.mu.Unlock()

	c.bus.Publish(events.NewBotStartedEvent(c.runner.Name(), owner))
	c.log.InfoWithFields("bot started", map[string]interface{}{"owner": owner})

	go c.watchDeadline(stopCh)
	go func() {
		defer close(done)
		c.runner.Run(session)

		// A loop that returns on its own (stamina limit, fatal error)
		// still has to release ownership so the failure is observable.
		// The stopCh comparison ties the cleanup to this run: a wedged
		// runner outliving its join timeout must not tear down whatever
		// run replaced it.
		c.mu.Lock()
		selfFinished := c.running && c.stopCh == stopCh
		if selfFinished {
			c.running = false
			c.paused = false
			close(c.stopCh)
		}
		c.mu.Unlock()

		if selfFinished {
			c.device.Disconnect()
			c.bus.Publish(events.NewBotStoppedEvent(c.runner.Name(), "finished"))
			c.log.Info("bot finished")
		}
	}()

	return nil
}

// watchDeadline stops the run when the auto-stop deadline passes. The
// deadline is re-read every poll so it can be re-armed mid-run.
func (c *Controller) watchDeadline(stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-time.After(time.Second):
		}

		c.mu.Lock()
		expired := c.timerEnabled && time.Now().After(c.deadline)
		c.mu.Unlock()

		if expired {
			c.log.Info("auto-stop timer expired")
			c.Stop()
			return
		}
	}
}

// TogglePause flips the pause state of a running bot.
func (c *Controller) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return false
	}
	c.paused = !c.paused
	if c.paused {
		c.bus.Publish(events.Event{Type: events.TypeBotPaused, Source: c.runner.Name(), Timestamp: time.Now()})
	} else {
		c.bus.Publish(events.Event{Type: events.TypeBotResumed, Source: c.runner.Name(), Timestamp: time.Now()})
	}
	return c.paused
}

// Stop requests a cooperative stop and waits for the loop to exit, with a
// bounded join.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.paused = false
	c.timerEnabled = false
	close(c.stopCh)
	done := c.done
	timeout := c.joinTimeout
	c.mu.Unlock()

	select {
	case <-done:
	case <-time.After(timeout):
		c.log.Warn("bot loop did not exit before join timeout")
	}

	if err := c.device.Disconnect(); err != nil {
		c.log.Error("device disconnect failed", err)
	}
	c.bus.Publish(events.NewBotStoppedEvent(c.runner.Name(), "requested"))
	c.log.Info("bot stopped")
	return nil
}

// Owner returns the current run's owner, empty when idle.
func (c *Controller) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

// Running reports whether a run is active. A false value without a prior
// Stop call means the loop terminated on its own.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Remaining returns the time left on the auto-stop timer, or zero when
// the timer is off.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.timerEnabled {
		return 0
	}
	remaining := time.Until(c.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
