package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Share modes.
const (
	ShareModeWorld    = "world"
	ShareModeAlliance = "alliance"
)

// Settings holds everything loaded from Settings.ini. Loaded whenever the
// settings change and held in memory between loads.
type Settings struct {
	// Device
	ADBPath     string
	DevicePort  int
	TapSettleMS int

	// Truck
	StrengthLimitEnabled bool
	StrengthLimit        float64
	ServerFilterEnabled  bool
	ServerNumber         string
	ResetMinutes         int
	ShareMode            string
	TimerEnabled         bool
	TimerMinutes         int
	NoTruckSeconds       int

	// Zombie
	Squad1Enabled    bool
	Squad2Enabled    bool
	Squad3Enabled    bool
	StaminaLargeMax  int
	StaminaSmallMax  int
	StaminaUnlimited bool

	// Logging
	LogLevel string
	LogFile  string
}

// NewDefaultSettings creates settings with default values.
func NewDefaultSettings() *Settings {
	return &Settings{
		ADBPath:              "adb",
		DevicePort:           5555,
		TapSettleMS:          2000,
		StrengthLimitEnabled: true,
		StrengthLimit:        60.0,
		ServerFilterEnabled:  true,
		ServerNumber:         "49",
		ResetMinutes:         15,
		ShareMode:            ShareModeWorld,
		TimerEnabled:         false,
		TimerMinutes:         60,
		NoTruckSeconds:       300,
		Squad1Enabled:        false,
		Squad2Enabled:        true,
		Squad3Enabled:        true,
		StaminaLargeMax:      0,
		StaminaSmallMax:      0,
		StaminaUnlimited:     true,
		LogLevel:             "INFO",
		LogFile:              "truckbot.log",
	}
}

// LoadFromINI loads settings from a Settings.ini file.
func LoadFromINI(path string) (*Settings, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	s := NewDefaultSettings()

	device := cfg.Section("Device")
	s.ADBPath = device.Key("adbPath").MustString(s.ADBPath)
	s.DevicePort = device.Key("port").MustInt(s.DevicePort)
	s.TapSettleMS = device.Key("tapSettleMs").MustInt(s.TapSettleMS)

	truck := cfg.Section("Truck")
	s.StrengthLimitEnabled = truck.Key("strengthLimitEnabled").MustBool(s.StrengthLimitEnabled)
	s.StrengthLimit = truck.Key("strengthLimit").MustFloat64(s.StrengthLimit)
	s.ServerFilterEnabled = truck.Key("serverFilterEnabled").MustBool(s.ServerFilterEnabled)
	s.ServerNumber = truck.Key("serverNumber").MustString(s.ServerNumber)
	s.ResetMinutes = truck.Key("resetMinutes").MustInt(s.ResetMinutes)
	s.ShareMode = truck.Key("shareMode").MustString(s.ShareMode)
	s.TimerEnabled = truck.Key("timerEnabled").MustBool(s.TimerEnabled)
	s.TimerMinutes = truck.Key("timerMinutes").MustInt(s.TimerMinutes)
	s.NoTruckSeconds = truck.Key("noTruckSeconds").MustInt(s.NoTruckSeconds)

	zombie := cfg.Section("Zombie")
	s.Squad1Enabled = zombie.Key("squad1Enabled").MustBool(s.Squad1Enabled)
	s.Squad2Enabled = zombie.Key("squad2Enabled").MustBool(s.Squad2Enabled)
	s.Squad3Enabled = zombie.Key("squad3Enabled").MustBool(s.Squad3Enabled)
	s.StaminaLargeMax = zombie.Key("staminaLargeMax").MustInt(s.StaminaLargeMax)
	s.StaminaSmallMax = zombie.Key("staminaSmallMax").MustInt(s.StaminaSmallMax)
	s.StaminaUnlimited = zombie.Key("staminaUnlimited").MustBool(s.StaminaUnlimited)

	logging := cfg.Section("Logging")
	s.LogLevel = logging.Key("logLevel").MustString(s.LogLevel)
	s.LogFile = logging.Key("logFile").MustString(s.LogFile)

	return s, nil
}

// SaveToINI saves settings to an INI file.
func SaveToINI(s *Settings, path string) error {
	cfg := ini.Empty()

	device := cfg.Section("Device")
	device.Key("adbPath").SetValue(s.ADBPath)
	device.Key("port").SetValue(fmt.Sprintf("%d", s.DevicePort))
	device.Key("tapSettleMs").SetValue(fmt.Sprintf("%d", s.TapSettleMS))

	truck := cfg.Section("Truck")
	truck.Key("strengthLimitEnabled").SetValue(fmt.Sprintf("%t", s.StrengthLimitEnabled))
	truck.Key("strengthLimit").SetValue(fmt.Sprintf("%g", s.StrengthLimit))
	truck.Key("serverFilterEnabled").SetValue(fmt.Sprintf("%t", s.ServerFilterEnabled))
	truck.Key("serverNumber").SetValue(s.ServerNumber)
	truck.Key("resetMinutes").SetValue(fmt.Sprintf("%d", s.ResetMinutes))
	truck.Key("shareMode").SetValue(s.ShareMode)
	truck.Key("timerEnabled").SetValue(fmt.Sprintf("%t", s.TimerEnabled))
	truck.Key("timerMinutes").SetValue(fmt.Sprintf("%d", s.TimerMinutes))
	truck.Key("noTruckSeconds").SetValue(fmt.Sprintf("%d", s.NoTruckSeconds))

	zombie := cfg.Section("Zombie")
	zombie.Key("squad1Enabled").SetValue(fmt.Sprintf("%t", s.Squad1Enabled))
	zombie.Key("squad2Enabled").SetValue(fmt.Sprintf("%t", s.Squad2Enabled))
	zombie.Key("squad3Enabled").SetValue(fmt.Sprintf("%t", s.Squad3Enabled))
	zombie.Key("staminaLargeMax").SetValue(fmt.Sprintf("%d", s.StaminaLargeMax))
	zombie.Key("staminaSmallMax").SetValue(fmt.Sprintf("%d", s.StaminaSmallMax))
	zombie.Key("staminaUnlimited").SetValue(fmt.Sprintf("%t", s.StaminaUnlimited))

	logging := cfg.Section("Logging")
	logging.Key("logLevel").SetValue(s.LogLevel)
	logging.Key("logFile").SetValue(s.LogFile)

	return cfg.SaveTo(path)
}

// Validate checks that required connection parameters are present. A run
// must not start without them.
func (s *Settings) Validate() error {
	if s.ADBPath == "" {
		return fmt.Errorf("adbPath is required")
	}
	if s.DevicePort <= 0 || s.DevicePort > 65535 {
		return fmt.Errorf("port %d is out of range", s.DevicePort)
	}
	if s.ShareMode != ShareModeWorld && s.ShareMode != ShareModeAlliance {
		return fmt.Errorf("shareMode must be %q or %q, got %q", ShareModeWorld, ShareModeAlliance, s.ShareMode)
	}
	return nil
}
