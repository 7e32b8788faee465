package main

import (
	"strings"
	"testing"
)

func TestFindColumn(t *testing.T) {
	t.Run("exactBeatsSubstring", func(t *testing.T) {
		// "order date" appears as a substring of index 0, exactly at index 2.
		headers := []string{"refund order date", "items", "Order Date"}
		got := findColumn(headers, dateColumns)
		if got != 2 {
			t.Errorf("findColumn = %d, want 2 (exact match should win over substring)", got)
		}
	})

	t.Run("candidateOrderBreaksTies", func(t *testing.T) {
		headers := []string{"total", "order total"}
		got := findColumn(headers, amountColumns)
		if got != 1 {
			t.Errorf("findColumn = %d, want 1 (earlier candidate wins)", got)
		}
	})

	t.Run("squashedSubstring", func(t *testing.T) {
		headers := []string{"something", "Order.Total (CAD)"}
		got := findColumn(headers, orderTotalColumns)
		if got != 1 {
			t.Errorf("findColumn = %d, want 1", got)
		}
	})

	t.Run("noMatch", func(t *testing.T) {
		if got := findColumn([]string{"a", "b"}, dateColumns); got != -1 {
			t.Errorf("findColumn = %d, want -1", got)
		}
	})
}

func TestResolveColumns(t *testing.T) {
	t.Run("canonicalHeaderResolves", func(t *testing.T) {
		cm, err := resolveColumns(canonicalHeader)
		if err != nil {
			t.Fatalf("resolveColumns(%v) error: %v", canonicalHeader, err)
		}
		if cm.date != 0 || cm.amount != 3 || cm.memo != 2 || cm.orderID != 5 {
			t.Errorf("resolveColumns = %+v, want date=0 amount=3 memo=2 orderID=5", cm)
		}
	})

	t.Run("amazonExportResolves", func(t *testing.T) {
		headers := []string{"order id", "order date", "order total", "items"}
		cm, err := resolveColumns(headers)
		if err != nil {
			t.Fatalf("resolveColumns error: %v", err)
		}
		if cm.date != 1 || cm.amount != 2 || cm.orderID != 0 {
			t.Errorf("resolveColumns = %+v, want date=1 amount=2 orderID=0", cm)
		}
	})

	t.Run("missingDateListsHeaders", func(t *testing.T) {
		headers := []string{"foo", "bar"}
		_, err := resolveColumns(headers)
		if err == nil {
			t.Fatal("resolveColumns should fail without date and amount columns")
		}
		if !strings.Contains(err.Error(), "foo") {
			t.Errorf("error %q should list the available headers", err.Error())
		}
	})
}
