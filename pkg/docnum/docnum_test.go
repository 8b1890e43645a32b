package docnum

import (
	"testing"
	"time"
)

var day = time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)

func TestNext_FirstOfDay(t *testing.T) {
	got := Next(PrefixMaintenance, nil, day)
	if got != "MNT-230101-001" {
		t.Fatalf("unexpected doc number: %s", got)
	}
}

func TestNext_ContinuesSequence(t *testing.T) {
	existing := []string{"MNT-230101-001", "MNT-230101-003"}
	got := Next(PrefixMaintenance, existing, day)
	if got != "MNT-230101-004" {
		t.Fatalf("expected sequence to continue past the max, got %s", got)
	}
}

func TestNext_ScopesByPrefixAndDay(t *testing.T) {
	existing := []string{
		"REQ-230101-005",
		"MNT-221231-009",
		"MNT-230101-junk",
	}
	got := Next(PrefixMaintenance, existing, day)
	if got != "MNT-230101-001" {
		t.Fatalf("other prefixes, days and malformed codes must not participate, got %s", got)
	}
}

func TestNext_UnorderedInput(t *testing.T) {
	existing := []string{"LOAN-230101-002", "LOAN-230101-010", "LOAN-230101-001"}
	got := Next(PrefixLoan, existing, day)
	if got != "LOAN-230101-011" {
		t.Fatalf("unexpected doc number: %s", got)
	}
}
