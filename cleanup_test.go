package main

import (
	"testing"
)

func TestFindRemoteDuplicates(t *testing.T) {
	txns := []ledgerTxn{
		{ID: "a", Date: "2025-12-10", Amount: -19990},
		{ID: "b", Date: "2025-12-10", Amount: -19990},
		{ID: "c", Date: "2025-12-10", Amount: -19990},
		{ID: "d", Date: "2025-12-11", Amount: -19990},
		{ID: "e", Date: "2025-12-10", Amount: -5000},
	}

	dups := findRemoteDuplicates(txns)
	if len(dups) != 2 {
		t.Fatalf("got %d duplicates, want 2", len(dups))
	}
	// The first transaction per (amount, date) survives; fetch order decides.
	if dups[0].ID != "b" || dups[1].ID != "c" {
		t.Errorf("duplicates = %v, %v, want b, c", dups[0].ID, dups[1].ID)
	}
}

func TestFindRemoteDuplicatesNone(t *testing.T) {
	txns := []ledgerTxn{
		{ID: "a", Date: "2025-12-10", Amount: -19990},
		{ID: "b", Date: "2025-12-11", Amount: -19990},
	}
	if dups := findRemoteDuplicates(txns); len(dups) != 0 {
		t.Errorf("got %v, want none", dups)
	}
}
