package ledger

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Ledger is a newline-delimited file of values already handled, used to
// suppress duplicate shares. Entries age out when the periodic reset
// truncates the file; that staleness is intentional.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// New creates a ledger backed by the file at path. The file is created
// empty if it does not exist.
func New(path string) (*Ledger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	f.Close()
	return &Ledger{path: path}, nil
}

// Contains reports whether value was recorded since the last reset.
// Matching is exact on the full line.
func (l *Ledger) Contains(value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		return false, fmt.Errorf("failed to read ledger: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == value {
			return true, nil
		}
	}
	return false, nil
}

// Add appends value to the ledger.
func (l *Ledger) Add(value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(value + "\n"); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// Reset truncates the ledger, forgetting all entries.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Truncate(l.path, 0); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	return nil
}

// Entries returns all recorded values in insertion order.
func (l *Ledger) Entries() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}
