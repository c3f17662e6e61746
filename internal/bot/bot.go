package bot

import (
	"errors"
	"image"
	"time"
)

// Sentinel errors surfaced to the external control layer.
var (
	// ErrBotInUse is returned when a non-privileged caller tries to start
	// a bot another owner is already running.
	ErrBotInUse = errors.New("bot already in use")

	// ErrStaminaExhausted ends a zombie run when both stamina
	// denominations are spent.
	ErrStaminaExhausted = errors.New("stamina limits exhausted")
)

// Device is the screen and input surface of the game device.
type Device interface {
	Capture() (*image.RGBA, error)
	Tap(x, y int) error
	Swipe(x1, y1, x2, y2, durationMS int) error
}

// Connector manages the device connection lifecycle. Connected once per
// run start and disconnected at run end, never mid-loop.
type Connector interface {
	Connect() error
	Disconnect() error
}

// TruckVision is the perception surface of the truck loop.
type TruckVision interface {
	// FindTrucks returns all truck icon locations in scan order.
	FindTrucks(screen *image.RGBA) []image.Point
	// ReadStrength returns the raw OCR strength text, empty on miss.
	ReadStrength(detail *image.RGBA) string
	// ReadServer returns the server digits, "Unknown" on miss.
	ReadServer(detail *image.RGBA) string
	// MatchesServer reports whether the detail view names the server.
	MatchesServer(detail *image.RGBA, server string) bool
}

// ZombieVision is the perception surface of the zombie loop.
type ZombieVision interface {
	// HasStaminaOffer reports whether the stamina reward notice is shown.
	HasStaminaOffer(screen *image.RGBA) bool
	// ReadCooldown reads the squad cooldown from the timer region.
	ReadCooldown(screen *image.RGBA) (time.Duration, bool)
}

// StatsRecorder persists share statistics.
type StatsRecorder interface {
	RecordShare(strength, server, actor string) error
}

// DedupLedger remembers already-shared values between resets.
type DedupLedger interface {
	Contains(value string) (bool, error)
	Add(value string) error
	Reset() error
}

// MaintenanceMonitor tracks productive work and the maintenance flag.
type MaintenanceMonitor interface {
	Begin()
	RecordSuccess() error
	Check() (bool, error)
	Maintenance() (bool, error)
}
