package events

import "time"

// Type identifies a kind of event
type Type string

const (
	TypeBotStarted         Type = "bot.started"
	TypeBotStopped         Type = "bot.stopped"
	TypeBotPaused          Type = "bot.paused"
	TypeBotResumed         Type = "bot.resumed"
	TypeBotFailed          Type = "bot.failed"
	TypeTruckShared        Type = "truck.shared"
	TypeTruckSkipped       Type = "truck.skipped"
	TypeSquadDeployed      Type = "squad.deployed"
	TypeStaminaExhausted   Type = "stamina.exhausted"
	TypeMaintenanceChanged Type = "maintenance.changed"
)

// Event is a system event with metadata, consumed by the external
// dashboard layer.
type Event struct {
	Type      Type
	Source    string
	Timestamp time.Time
	Data      map[string]interface{}
}

// Handler processes an event
type Handler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// NewBotStartedEvent creates a bot started event.
func NewBotStartedEvent(bot, owner string) Event {
	return Event{
		Type:      TypeBotStarted,
		Source:    bot,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"owner": owner,
		},
	}
}

// NewBotStoppedEvent creates a bot stopped event.
func NewBotStoppedEvent(bot, reason string) Event {
	return Event{
		Type:      TypeBotStopped,
		Source:    bot,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"reason": reason,
		},
	}
}

// NewBotFailedEvent creates a bot failed event.
func NewBotFailedEvent(bot string, err error) Event {
	return Event{
		Type:      TypeBotFailed,
		Source:    bot,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"error": err.Error(),
		},
	}
}

// NewTruckSharedEvent creates a truck shared event.
func NewTruckSharedEvent(strength, server, mode string) Event {
	return Event{
		Type:      TypeTruckShared,
		Source:    "truck",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"strength": strength,
			"server":   server,
			"mode":     mode,
		},
	}
}

// NewMaintenanceChangedEvent creates a maintenance changed event.
func NewMaintenanceChangedEvent(enabled bool) Event {
	return Event{
		Type:      TypeMaintenanceChanged,
		Source:    "monitor",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"enabled": enabled,
		},
	}
}
