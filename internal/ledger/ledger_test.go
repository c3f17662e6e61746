package ledger

import (
	"path/filepath"
	"testing"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(filepath.Join(t.TempDir(), "shared.txt"))
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	return l
}

func TestAddAndContains(t *testing.T) {
	l := newTestLedger(t)

	found, err := l.Contains("12.5")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if found {
		t.Error("empty ledger should not contain anything")
	}

	if err := l.Add("12.5"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	found, err = l.Contains("12.5")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !found {
		t.Error("added value should be found")
	}
}

func TestContainsExactMatchOnly(t *testing.T) {
	l := newTestLedger(t)
	if err := l.Add("12.5"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, value := range []string{"12", "2.5", "12.50", "112.5"} {
		found, err := l.Contains(value)
		if err != nil {
			t.Fatalf("Contains(%q) failed: %v", value, err)
		}
		if found {
			t.Errorf("Contains(%q) = true, want exact-line matching only", value)
		}
	}
}

func TestResetForgetsEntries(t *testing.T) {
	l := newTestLedger(t)
	for _, v := range []string{"10.1", "20.2", "30.3"} {
		if err := l.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := l.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	found, err := l.Contains("20.2")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if found {
		t.Error("reset ledger should be empty")
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries after reset, got %v", entries)
	}
}

func TestEntriesOrder(t *testing.T) {
	l := newTestLedger(t)
	values := []string{"5.0", "7.7", "9.9"}
	for _, v := range values {
		if err := l.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != len(values) {
		t.Fatalf("got %d entries, want %d", len(entries), len(values))
	}
	for i, v := range values {
		if entries[i] != v {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i], v)
		}
	}
}
