package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

type applyOpts struct {
	csvFile        string
	since          time.Time
	review         bool
	bayesThreshold float64
}

// runApply walks the account's uncategorized transactions and assigns them
// categories: first from the CSV via (date, amount) matching, then from the
// local classifier and the AI path for unmatched transactions whose memos
// carry enough detail. Sparse memos are left alone and reported.
func runApply(ctx context.Context, cfg *config, opts applyOpts) {
	requireLedger(cfg)
	if _, err := os.Stat(opts.csvFile); err != nil {
		oerr(fmt.Sprintf("CSV not found: %v", opts.csvFile))
		os.Exit(1)
	}

	fmt.Printf("Loading categories from %v...\n", opts.csvFile)
	records, _, err := readTransactionsCSV(opts.csvFile)
	checkf(err, "Unable to parse %v", opts.csvFile)
	index := buildCategoryIndex(records)
	fmt.Printf("  Loaded %d (date, amount) -> category mappings\n", index.len())

	client := newLedgerClient(cfg)
	groups, err := client.categories(ctx)
	checkf(err, "Error fetching categories")
	vocab := buildVocabulary(groups)

	txns, err := client.transactionsSince(ctx, cfg.AccountID, opts.since, time.Time{})
	checkf(err, "Error fetching transactions")
	fmt.Printf("Found %d transactions in YNAB account.\n", len(txns))

	var uncategorized []ledgerTxn
	for _, t := range txns {
		name := strings.TrimSpace(t.CategoryName)
		if name == "" || name == sentinel {
			uncategorized = append(uncategorized, t)
		}
	}
	fmt.Printf("  %d are %s\n", len(uncategorized), sentinel)

	var updated, failed int
	var unmatched []ledgerTxn
	for _, t := range uncategorized {
		d, ok := t.date()
		if !ok {
			continue
		}
		cat, ok := index.lookup(d, t.Amount)
		if !ok {
			unmatched = append(unmatched, t)
			continue
		}
		id, ok := vocab.id(cat)
		if !ok {
			warnc("Category %q not in budget, skipping\n", cat)
			continue
		}
		if err := client.updateTransaction(ctx, t.ID, replacementFor(t, id)); err != nil {
			warnc("Failed to update %v: %v\n", t.ID, err)
			failed++
			continue
		}
		updated++
		fmt.Printf("  Updated: %s %s -> %s\n", t.Date, milliToMajor(t.Amount), cat)
	}

	// Unmatched transactions with real memos get a second chance through
	// the classifiers; the rest are only reported.
	var detailed, sparse []ledgerTxn
	for _, t := range unmatched {
		if detailedMemo(t.Memo) {
			detailed = append(detailed, t)
		} else {
			sparse = append(sparse, t)
		}
	}

	classified := classifyUnmatched(ctx, cfg, opts, txns, detailed, vocab)
	for i, t := range detailed {
		cat, ok := classified[i]
		if !ok || cat == sentinel {
			sparse = append(sparse, t)
			continue
		}
		id, ok := vocab.id(cat)
		if !ok {
			sparse = append(sparse, t)
			continue
		}
		if err := client.updateTransaction(ctx, t.ID, replacementFor(t, id)); err != nil {
			warnc("Failed to update %v: %v\n", t.ID, err)
			failed++
			continue
		}
		updated++
		fmt.Printf("  Classified: %s %s -> %s\n", t.Date, milliToMajor(t.Amount), cat)
	}

	if opts.review && len(sparse) > 0 {
		updated += reviewTransactions(ctx, client, sparse, vocab)
		sparse = nil
	}

	fmt.Println()
	printCount("updated", updated)
	printCount("failed", failed)
	printCount("unmatched", len(sparse))
	for _, t := range sparse {
		fmt.Printf("  no match: %s %s %s\n", t.Date, milliToMajor(t.Amount), truncate(t.Memo, 80))
	}
}

// classifyUnmatched maps detailed-memo transactions (by slice index) to a
// vocabulary category. The local classifier answers first when its
// confidence clears the threshold; everything else goes to the AI in
// batches. Missing entries mean no opinion.
func classifyUnmatched(ctx context.Context, cfg *config, opts applyOpts,
	trainingSet, detailed []ledgerTxn, vocab *vocabulary) map[int]string {

	out := make(map[int]string)
	if len(detailed) == 0 {
		return out
	}

	remaining := make([]int, 0, len(detailed))
	if mc := trainMemoClassifier(trainingSet); mc != nil && opts.bayesThreshold <= 1.0 {
		for i, t := range detailed {
			cat, conf := mc.predict(t.Memo)
			if conf >= opts.bayesThreshold {
				out[i] = resolveCategory(cat, vocab.names)
			} else {
				remaining = append(remaining, i)
			}
		}
		fmt.Printf("Local classifier resolved %d of %d unmatched.\n", len(out), len(detailed))
	} else {
		for i := range detailed {
			remaining = append(remaining, i)
		}
	}

	classify := newClassifier(cfg)
	if classify == nil || len(remaining) == 0 {
		return out
	}
	fmt.Printf("Running AI to categorize %d with detailed memos...\n", len(remaining))
	memos := make([]string, len(remaining))
	for j, i := range remaining {
		memos[j] = detailed[i].Memo
	}
	categories := classifyBatches(ctx, classify, memos, vocab.assignable(),
		applyBatchSize, applyPromptMemoLen)
	for j, i := range remaining {
		out[i] = categories[j]
	}
	return out
}
