package bot

import (
	"testing"
	"time"
)

func TestSquadTimerArithmetic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timer := &SquadTimer{ID: 1}

	if !timer.Available(now) {
		t.Error("fresh timer should be available")
	}

	timer.Arm(45*time.Minute, now)
	if timer.Available(now) {
		t.Error("armed timer should not be available")
	}
	if got := timer.Wait(now); got != 45*time.Minute {
		t.Errorf("Wait = %v, want 45m", got)
	}
	if !timer.Available(now.Add(45 * time.Minute)) {
		t.Error("timer should free up exactly at the deadline")
	}
	if timer.LastCooldown() != 45*time.Minute {
		t.Errorf("LastCooldown = %v, want 45m", timer.LastCooldown())
	}
}

func TestPickSquadPrefersShortestCooldown(t *testing.T) {
	timers := map[int]*SquadTimer{
		1: {ID: 1, lastCooldown: 50 * time.Minute},
		2: {ID: 2, lastCooldown: 20 * time.Minute},
		3: {ID: 3, lastCooldown: 35 * time.Minute},
	}

	if got := pickSquad([]int{1, 2, 3}, timers); got != 2 {
		t.Errorf("pickSquad = %d, want 2 (shortest last cooldown)", got)
	}
	if got := pickSquad([]int{1, 3}, timers); got != 3 {
		t.Errorf("pickSquad = %d, want 3", got)
	}
	if got := pickSquad([]int{1}, timers); got != 1 {
		t.Errorf("pickSquad = %d, want the only candidate", got)
	}
}

func TestStaminaBudgetLimits(t *testing.T) {
	b := NewStaminaBudget(2, 1, false)

	if !b.CanLarge() || !b.CanSmall() {
		t.Fatal("fresh budget should allow both denominations")
	}

	b.UseLarge()
	b.UseLarge()
	b.UseSmall()

	if b.CanLarge() {
		t.Error("large denomination should be exhausted after 2 uses")
	}
	if b.CanSmall() {
		t.Error("small denomination should be exhausted after 1 use")
	}
	if !b.Exhausted() {
		t.Error("budget should be exhausted")
	}

	large, small := b.Used()
	if large != 2 || small != 1 {
		t.Errorf("Used = (%d,%d), want (2,1)", large, small)
	}
}

func TestStaminaBudgetUnlimited(t *testing.T) {
	b := NewStaminaBudget(0, 0, true)
	for i := 0; i < 100; i++ {
		b.UseLarge()
		b.UseSmall()
	}
	if b.Exhausted() {
		t.Error("unlimited budget must never exhaust")
	}
}

func newTestZombieBot(vision *fakeZombieVision) (*ZombieBot, *fakeDevice) {
	device := &fakeDevice{}
	settings := testSettings()
	settings.Squad1Enabled = false
	settings.Squad2Enabled = true
	settings.Squad3Enabled = false
	b := NewZombieBot(device, vision, settings, testLogger(), newTestBus()).WithPace(time.Millisecond)
	return b, device
}

func TestDeployArmsCooldown(t *testing.T) {
	vision := &fakeZombieVision{
		offers:    []bool{false},
		cooldowns: []time.Duration{42 * time.Minute},
	}
	b, device := newTestZombieBot(vision)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.WithClock(func() time.Time { return now })

	session, _ := newSession()
	timer := &SquadTimer{ID: 2}
	budget := NewStaminaBudget(0, 0, true)

	if err := b.deploy(session, timer, budget); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	if timer.LastCooldown() != 42*time.Minute {
		t.Errorf("cooldown = %v, want 42m", timer.LastCooldown())
	}
	if timer.Available(now) {
		t.Error("deployed squad should be on cooldown")
	}

	taps := device.tapLog()
	if len(taps) == 0 || taps[0] != DefaultZombieLayout.Squads[1] {
		t.Errorf("first tap = %v, want squad 2 slot", taps)
	}
	if taps[len(taps)-1] != DefaultZombieLayout.Confirm {
		t.Errorf("last tap = %v, want confirm", taps[len(taps)-1])
	}
	if b.Status().Deployed != 1 {
		t.Errorf("deployed = %d, want 1", b.Status().Deployed)
	}
}

func TestDeployCooldownFallback(t *testing.T) {
	// No cooldown readable from the timer region.
	vision := &fakeZombieVision{offers: []bool{false}}
	b, _ := newTestZombieBot(vision)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.WithClock(func() time.Time { return now })

	session, _ := newSession()
	timer := &SquadTimer{ID: 2}

	if err := b.deploy(session, timer, NewStaminaBudget(0, 0, true)); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	if timer.LastCooldown() != time.Minute {
		t.Errorf("fallback cooldown = %v, want 1m", timer.LastCooldown())
	}
}

func TestDeployStaminaOfferCollects(t *testing.T) {
	vision := &fakeZombieVision{
		offers:    []bool{true},
		cooldowns: []time.Duration{30 * time.Minute},
	}
	b, device := newTestZombieBot(vision)
	session, _ := newSession()
	timer := &SquadTimer{ID: 2}
	budget := NewStaminaBudget(3, 3, false)

	if err := b.deploy(session, timer, budget); err != nil {
		t.Fatalf("deploy failed: %v", err)
	}

	large, small := budget.Used()
	if large != 1 || small != 1 {
		t.Errorf("budget used = (%d,%d), want (1,1)", large, small)
	}

	taps := device.tapLog()
	sawLarge, sawSmall, sawClose := false, false, false
	for _, tap := range taps {
		switch tap {
		case DefaultZombieLayout.StaminaLarge:
			sawLarge = true
		case DefaultZombieLayout.StaminaSmall:
			sawSmall = true
		case DefaultZombieLayout.StaminaClose:
			sawClose = true
		}
	}
	if !sawLarge || !sawSmall || !sawClose {
		t.Errorf("collection taps incomplete: large=%v small=%v close=%v", sawLarge, sawSmall, sawClose)
	}
	if b.Status().Deployed != 1 {
		t.Errorf("deployed = %d, want 1", b.Status().Deployed)
	}
}

func TestDeployStaminaExhaustedIsTerminal(t *testing.T) {
	vision := &fakeZombieVision{offers: []bool{true}}
	b, _ := newTestZombieBot(vision)
	session, _ := newSession()
	timer := &SquadTimer{ID: 2}

	budget := NewStaminaBudget(1, 1, false)
	budget.UseLarge()
	budget.UseSmall()

	err := b.deploy(session, timer, budget)
	if err != ErrStaminaExhausted {
		t.Fatalf("deploy error = %v, want ErrStaminaExhausted", err)
	}
	if b.Status().Deployed != 0 {
		t.Error("terminal deploy must not count")
	}
}

func TestZombieRunNoSquadsEnabled(t *testing.T) {
	vision := &fakeZombieVision{}
	b, _ := newTestZombieBot(vision)
	b.settings.Squad2Enabled = false

	session, _ := newSession()
	done := make(chan struct{})
	go func() {
		b.Run(session)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run with no squads should return immediately")
	}
}
