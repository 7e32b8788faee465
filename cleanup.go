package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type cleanupOpts struct {
	from, to time.Time
}

type remoteDupKey struct {
	amount int64
	date   string
}

// findRemoteDuplicates groups transactions sharing (amount, date) and
// returns everything after the first member of each group, preserving fetch
// order so the earliest listed transaction is the one retained.
func findRemoteDuplicates(txns []ledgerTxn) []ledgerTxn {
	byKey := make(map[remoteDupKey][]ledgerTxn)
	var order []remoteDupKey
	for _, t := range txns {
		key := remoteDupKey{t.Amount, t.Date}
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], t)
	}
	var dups []ledgerTxn
	for _, key := range order {
		if group := byKey[key]; len(group) > 1 {
			dups = append(dups, group[1:]...)
		}
	}
	return dups
}

// runCleanup treats the remote ledger itself as the dedup target: delete
// (amount, date) duplicates, then verify the survivors' categories with the
// AI and fix the ones it is confident are wrong.
func runCleanup(ctx context.Context, cfg *config, opts cleanupOpts) {
	requireLedger(cfg)

	client := newLedgerClient(cfg)
	groups, err := client.categories(ctx)
	checkf(err, "Error fetching categories")
	vocab := buildVocabulary(groups)
	fmt.Printf("Loaded %d categories from YNAB.\n", len(vocab.names))

	fetched, err := client.transactionsSince(ctx, cfg.AccountID, opts.from, opts.to)
	checkf(err, "Error fetching transactions")

	var txns []ledgerTxn
	for _, t := range fetched {
		d, ok := t.date()
		if !ok {
			continue
		}
		if d.Before(opts.from) || d.After(opts.to) {
			continue
		}
		txns = append(txns, t)
	}
	fmt.Printf("Found %d non-deleted transaction(s) in %s to %s.\n",
		len(txns), opts.from.Format(stamp), opts.to.Format(stamp))

	deleted := make(map[string]bool)
	for _, t := range findRemoteDuplicates(txns) {
		if err := client.deleteTransaction(ctx, t.ID); err != nil {
			warnc("Failed to delete %v: %v\n", t.ID, err)
			continue
		}
		deleted[t.ID] = true
		fmt.Printf("  Deleted duplicate: %s (%s %s)\n", t.ID, t.Date, milliToMajor(t.Amount))
	}
	if len(deleted) > 0 {
		fmt.Printf("Deleted %d duplicate(s).\n", len(deleted))
	}

	// Split transactions carry per-category sub-amounts and are not
	// second-guessed here.
	var items []verifyItem
	byID := make(map[string]ledgerTxn)
	for _, t := range txns {
		if deleted[t.ID] || strings.TrimSpace(t.CategoryName) == "Split" {
			continue
		}
		memo := t.Memo
		if strings.TrimSpace(memo) == "" {
			memo = t.PayeeName
		}
		items = append(items, verifyItem{ID: t.ID, Memo: memo, Category: t.CategoryName})
		byID[t.ID] = t
	}

	fmt.Printf("\nVerifying %d transaction categories with AI...\n", len(items))
	classify := newClassifier(cfg)
	if classify == nil {
		warnc("ANTHROPIC_API_KEY not set; skipping AI verification.\n")
	}
	fixes := verifyCategories(ctx, classify, items, vocab.names)

	var fixed, failed int
	for _, item := range items {
		newCat, ok := fixes[item.ID]
		if !ok || newCat == item.Category {
			continue
		}
		id, ok := vocab.id(newCat)
		if !ok {
			warnc("Category %q not found, skipping %v\n", newCat, item.ID)
			continue
		}
		t := byID[item.ID]
		if err := client.updateTransaction(ctx, t.ID, replacementFor(t, id)); err != nil {
			warnc("Failed to update %v: %v\n", t.ID, err)
			failed++
			continue
		}
		fixed++
		fmt.Printf("  Fixed: %q -> %q | %s\n", item.Category, newCat, truncate(item.Memo, 40))
	}

	fmt.Println()
	printCount("deleted", len(deleted))
	printCount("fixed", fixed)
	printCount("failed", failed)
	if fixed == 0 && failed == 0 {
		okc("All categories verified correct; no changes needed.\n")
	}
}
