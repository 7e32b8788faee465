package main

import (
	"testing"
)

func TestCategoryIndexLookup(t *testing.T) {
	records := []record{
		{Date: day(t, "2025-12-10"), Amount: -19990, Category: "Tech"},
		// Same amount months earlier, so -19990 is ambiguous for the
		// amount-only fallback.
		{Date: day(t, "2025-05-05"), Amount: -19990, Category: "Old Tech"},
		// Positive amounts get negated on indexing.
		{Date: day(t, "2025-11-01"), Amount: 5000, Category: "Groceries"},
		// Ambiguous amount: two dates share it.
		{Date: day(t, "2025-10-01"), Amount: -1999, Category: "Snacks"},
		{Date: day(t, "2025-10-20"), Amount: -1999, Category: "Coffee"},
		// No category, never indexed.
		{Date: day(t, "2025-09-01"), Amount: -7777},
		{Date: day(t, "2025-09-02"), Amount: -8888, Category: sentinel},
	}
	ix := buildCategoryIndex(records)

	if ix.len() != 5 {
		t.Fatalf("index size = %d, want 5", ix.len())
	}

	t.Run("exact", func(t *testing.T) {
		cat, ok := ix.lookup(day(t, "2025-12-10"), -19990)
		if !ok || cat != "Tech" {
			t.Errorf("lookup = %q, %v, want Tech", cat, ok)
		}
	})

	t.Run("negatedPositive", func(t *testing.T) {
		cat, ok := ix.lookup(day(t, "2025-11-01"), -5000)
		if !ok || cat != "Groceries" {
			t.Errorf("lookup = %q, %v, want Groceries", cat, ok)
		}
	})

	t.Run("withinTwoDays", func(t *testing.T) {
		// Ledger says the 12th, the order says the 10th.
		cat, ok := ix.lookup(day(t, "2025-12-12"), -19990)
		if !ok || cat != "Tech" {
			t.Errorf("lookup = %q, %v, want Tech", cat, ok)
		}
	})

	t.Run("beyondTwoDays", func(t *testing.T) {
		if _, ok := ix.lookup(day(t, "2025-12-15"), -19990); ok {
			t.Error("lookup matched five days out; tolerance is two")
		}
	})

	t.Run("uniqueAmountFallback", func(t *testing.T) {
		cat, ok := ix.lookup(day(t, "2025-01-01"), -5000)
		if !ok || cat != "Groceries" {
			t.Errorf("unique-amount fallback = %q, %v, want Groceries", cat, ok)
		}
	})

	t.Run("ambiguousAmountNeverGuesses", func(t *testing.T) {
		if cat, ok := ix.lookup(day(t, "2025-10-05"), -1999); ok {
			t.Errorf("ambiguous amount resolved to %q; must stay unmatched", cat)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, ok := ix.lookup(day(t, "2025-12-10"), -123); ok {
			t.Error("lookup matched a never-indexed amount")
		}
	})
}

func TestCategoryIndexFirstKeyWins(t *testing.T) {
	records := []record{
		{Date: day(t, "2025-12-10"), Amount: -19990, Category: "First"},
		{Date: day(t, "2025-12-10"), Amount: -19990, Category: "Second"},
	}
	ix := buildCategoryIndex(records)
	cat, ok := ix.lookup(day(t, "2025-12-10"), -19990)
	if !ok || cat != "First" {
		t.Errorf("lookup = %q, %v, want First", cat, ok)
	}
}
