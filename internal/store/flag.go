package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// maintenanceState is the on-disk shape of the maintenance flag.
type maintenanceState struct {
	Enabled   bool      `json:"enabled"`
	ChangedAt time.Time `json:"changed_at"`
}

// MaintenanceFlag is a JSON-file-backed flag shared with the external
// dashboard layer. The file survives restarts so maintenance mode is not
// lost when the process bounces.
type MaintenanceFlag struct {
	mu   sync.Mutex
	path string
}

// NewMaintenanceFlag creates a flag persisted at path. A missing file
// reads as disabled.
func NewMaintenanceFlag(path string) *MaintenanceFlag {
	return &MaintenanceFlag{path: path}
}

// SetMaintenance persists the flag.
func (f *MaintenanceFlag) SetMaintenance(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(maintenanceState{Enabled: enabled, ChangedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode maintenance flag: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write maintenance flag: %w", err)
	}
	return nil
}

// Maintenance reads the persisted flag.
func (f *MaintenanceFlag) Maintenance() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read maintenance flag: %w", err)
	}

	var state maintenanceState
	if err := json.Unmarshal(data, &state); err != nil {
		return false, fmt.Errorf("failed to decode maintenance flag: %w", err)
	}
	return state.Enabled, nil
}
