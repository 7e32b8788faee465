package main

import (
	"time"
)

// Offsets tried when an exact (date, amount) lookup misses: bank posting
// dates commonly lag order dates by a day or two. The order is fixed and the
// first hit wins.
var dateOffsets = []int{-2, -1, 1, 2}

type matchKey struct {
	date   string
	amount int64
}

type dateCategory struct {
	date     string
	category string
}

// categoryIndex maps local CSV records to their categories for matching
// against the remote ledger. Only records with a usable (non-empty,
// non-sentinel) category contribute. The amount-only index exists for a
// last-resort fallback and is consulted only when an amount is unique
// across the whole dataset.
type categoryIndex struct {
	byKey    map[matchKey]string
	byAmount map[int64][]dateCategory
}

// buildCategoryIndex indexes records by (date, signed milliunits). Positive
// amounts are negated first: the ledger stores these purchases as outflows.
func buildCategoryIndex(records []record) *categoryIndex {
	ix := &categoryIndex{
		byKey:    make(map[matchKey]string),
		byAmount: make(map[int64][]dateCategory),
	}
	for _, r := range records {
		cat := r.Category
		if cat == "" || normalizeCategory(cat) == normalizeCategory(sentinel) {
			continue
		}
		amount := r.Amount
		if amount > 0 {
			amount = -amount
		}
		date := r.Date.Format(stamp)
		key := matchKey{date, amount}
		if _, dup := ix.byKey[key]; !dup {
			ix.byKey[key] = cat
		}
		ix.byAmount[amount] = append(ix.byAmount[amount], dateCategory{date, cat})
	}
	return ix
}

func (ix *categoryIndex) len() int { return len(ix.byKey) }

// lookup matches one ledger transaction: exact (date, amount), then the
// fixed date offsets, then the amount-only fallback when exactly one
// candidate carries that amount. An ambiguous amount is never resolved here;
// uniqueness standing in for correctness on the last step is a deliberate
// tradeoff carried over from the workflow this tool replaces.
func (ix *categoryIndex) lookup(date time.Time, amount int64) (string, bool) {
	if cat, ok := ix.byKey[matchKey{date.Format(stamp), amount}]; ok {
		return cat, true
	}
	for _, off := range dateOffsets {
		adj := date.AddDate(0, 0, off).Format(stamp)
		if cat, ok := ix.byKey[matchKey{adj, amount}]; ok {
			return cat, true
		}
	}
	if candidates := ix.byAmount[amount]; len(candidates) == 1 {
		return candidates[0].category, true
	}
	return "", false
}
