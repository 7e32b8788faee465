package main

import (
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	tm, err := time.Parse(stamp, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return tm
}

func TestDedupe(t *testing.T) {
	records := []record{
		{Date: day(t, "2025-12-10"), Amount: -19990, Memo: "USB cable", Category: "Tech"},
		{Date: day(t, "2025-12-10"), Amount: -19990, Memo: "USB cable", Category: "Other"},
		{Date: day(t, "2025-12-10"), Amount: -19990, Memo: "different memo"},
		{Date: day(t, "2025-12-11"), Amount: -19990, Memo: "USB cable"},
	}

	out, dropped := dedupe(records)
	if len(out) != 3 || dropped != 1 {
		t.Fatalf("dedupe kept %d dropped %d, want 3 kept 1 dropped", len(out), dropped)
	}
	// First occurrence wins.
	if out[0].Category != "Tech" {
		t.Errorf("survivor category = %q, want Tech", out[0].Category)
	}

	// Running it again changes nothing.
	again, dropped := dedupe(out)
	if len(again) != 3 || dropped != 0 {
		t.Errorf("second dedupe kept %d dropped %d, want 3 kept 0 dropped", len(again), dropped)
	}
}

func TestDedupeLongMemoPrefix(t *testing.T) {
	long := make([]rune, dedupMemoLen)
	for i := range long {
		long[i] = 'a'
	}
	prefix := string(long)

	records := []record{
		{Date: day(t, "2025-12-10"), Amount: -5000, Memo: prefix + " tail one"},
		{Date: day(t, "2025-12-10"), Amount: -5000, Memo: prefix + " other tail"},
	}
	out, dropped := dedupe(records)
	if len(out) != 1 || dropped != 1 {
		t.Errorf("memos differing past the key prefix should collapse: kept %d dropped %d",
			len(out), dropped)
	}
}
