package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
)

type convertOpts struct {
	input  string
	output string
	noAI   bool
}

// runConvert turns an Amazon order-history export into the canonical CSV:
// normalize, parse, dedupe, categorize, write, report. No remote mutation
// happens here, so a failed category fetch only downgrades categorization.
func runConvert(ctx context.Context, cfg *config, opts convertOpts) {
	if _, err := os.Stat(opts.input); err != nil {
		oerr(fmt.Sprintf("File not found: %v", opts.input))
		os.Exit(1)
	}

	records, dropped, err := readTransactionsCSV(opts.input)
	checkf(err, "Unable to parse %v", opts.input)

	// Zero-amount rows are noise from the export and are never imported.
	var zeros int
	kept := records[:0]
	for _, r := range records {
		if r.Amount == 0 {
			zeros++
			continue
		}
		kept = append(kept, r)
	}
	records = kept

	records, dups := dedupe(records)
	fmt.Printf("Parsed %d unique transactions.\n", len(records))

	vocab := convertVocabulary(ctx, cfg, opts)
	classify := newClassifier(cfg)
	if opts.noAI || classify == nil {
		if !opts.noAI {
			warnc("ANTHROPIC_API_KEY not set; all items will be %s.\n", sentinel)
		}
		for i := range records {
			records[i].Category = sentinel
		}
	} else {
		fmt.Println("Categorizing with AI (this may take a moment)...")
		memos := make([]string, len(records))
		for i, r := range records {
			memos[i] = r.Memo
		}
		categories := classifyBatches(ctx, classify, memos, vocab.names,
			convertBatchSize, convertPromptMemoLen)
		for i := range records {
			records[i].Category = categories[i]
		}
	}

	checkf(writeCanonicalCSV(opts.output, records), "Unable to write %v", opts.output)
	fmt.Printf("\nWrote %d transactions to %v\n", len(records), opts.output)

	printCount("parsed", len(records))
	printCount("dropped rows", dropped)
	printCount("zero amount", zeros)
	printCount("duplicates", dups)

	printCategoryBreakdown(records)
	fmt.Println("\nNext: review the CSV, edit Category if needed, then run:")
	fmt.Printf("  into-ynab import -csv %v\n", opts.output)
}

// convertVocabulary fetches the budget's category names when credentials are
// available. Convert never mutates the ledger, so any failure here degrades
// to a sentinel-only vocabulary instead of aborting.
func convertVocabulary(ctx context.Context, cfg *config, opts convertOpts) *vocabulary {
	fallback := &vocabulary{
		names:    []string{sentinel},
		idByName: map[string]string{"uncategorized": ""},
	}
	if opts.noAI {
		return fallback
	}
	if cfg.AccessToken == "" || cfg.BudgetID == "" {
		warnc("YNAB credentials not set; using default categories.\n")
		return fallback
	}
	fmt.Println("Fetching YNAB categories...")
	groups, err := newLedgerClient(cfg).categories(ctx)
	if err != nil {
		warnc("Could not fetch YNAB categories: %v\n", err)
		return fallback
	}
	vocab := buildVocabulary(groups)
	fmt.Printf("Found %d categories.\n", len(vocab.names))
	return vocab
}

func printCategoryBreakdown(records []record) {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	type catCount struct {
		name  string
		count int
	}
	sorted := make([]catCount, 0, len(counts))
	for name, n := range counts {
		sorted = append(sorted, catCount{name, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})

	fmt.Println("\nCategory breakdown:")
	for _, cc := range sorted {
		color.New(color.FgCyan).Printf("  %-40s", cc.name)
		fmt.Printf(" %d\n", cc.count)
	}
}
