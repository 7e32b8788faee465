package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

type importOpts struct {
	csvFile string
	within  int // duplicate window in days
}

// groupKeyFor buckets records into orders: the explicit order id when
// present, else a composite of date, amount and memo prefix so ungrouped
// rows stay singleton groups.
func groupKeyFor(r record) string {
	if r.OrderID != "" {
		return r.OrderID
	}
	return fmt.Sprintf("%s|%d|%s", r.Date.Format(stamp), r.Amount, truncate(r.Memo, 60))
}

// groupRecords preserves first-appearance order of groups and of rows
// within a group.
func groupRecords(records []record) [][]record {
	index := make(map[string]int)
	var groups [][]record
	for _, r := range records {
		key := groupKeyFor(r)
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], r)
		} else {
			index[key] = len(groups)
			groups = append(groups, []record{r})
		}
	}
	return groups
}

// buildImportTransaction folds one group into a single create request.
// Amounts are summed per resolved category id; one category yields a plain
// transaction, more than one yields a split with sub-amounts in category
// first-appearance order. Returns false for zero-total groups.
func buildImportTransaction(accountID string, rows []record,
	categoryIDFor func(record) string) (newTransaction, bool) {

	var total int64
	for _, r := range rows {
		total += r.Amount
	}
	if total == 0 {
		return newTransaction{}, false
	}

	perCategory := make(map[string]int64)
	var order []string
	for _, r := range rows {
		id := categoryIDFor(r)
		if _, seen := perCategory[id]; !seen {
			order = append(order, id)
		}
		perCategory[id] += r.Amount
	}

	first := rows[0]
	payee := strings.TrimSpace(first.Payee)
	if payee == "" {
		payee = defaultPayee
	}
	memo := truncate(first.Memo, memoMaxLen)

	txn := newTransaction{
		AccountID: accountID,
		Date:      first.Date.Format(stamp),
		Amount:    total,
		PayeeName: payee,
		Memo:      memo,
		Cleared:   "uncleared",
		Approved:  false,
		ImportID:  importID(total, first.Date),
	}
	if len(order) == 1 {
		txn.CategoryID = order[0]
		return txn, true
	}

	if memo == "" {
		memo = fmt.Sprintf("Order %s (split)", txn.Date)
	} else {
		memo += " (split)"
	}
	txn.Memo = truncate(memo, memoMaxLen)
	for _, id := range order {
		txn.Subtransactions = append(txn.Subtransactions, subTransaction{
			Amount:     perCategory[id],
			CategoryID: id,
		})
	}
	return txn, true
}

// existingAmountDates indexes remote transactions by amount for the
// duplicate window check.
func existingAmountDates(txns []ledgerTxn) map[int64][]time.Time {
	byAmount := make(map[int64][]time.Time)
	for _, t := range txns {
		d, ok := t.date()
		if !ok {
			continue
		}
		byAmount[t.Amount] = append(byAmount[t.Amount], d)
	}
	return byAmount
}

func isDuplicate(byAmount map[int64][]time.Time, date time.Time, amount int64, within int) bool {
	for _, d := range byAmount[amount] {
		diff := date.Sub(d)
		if diff < 0 {
			diff = -diff
		}
		if diff <= time.Duration(within)*24*time.Hour {
			return true
		}
	}
	return false
}

// runImport pushes the canonical CSV into the budget: group, window-dedupe
// against remote state, build single or split transactions, one idempotent
// create call, report.
func runImport(ctx context.Context, cfg *config, opts importOpts) {
	requireLedger(cfg)
	if _, err := os.Stat(opts.csvFile); err != nil {
		oerr(fmt.Sprintf("CSV file not found: %v", opts.csvFile))
		os.Exit(1)
	}

	records, dropped, err := readTransactionsCSV(opts.csvFile)
	checkf(err, "Unable to parse %v", opts.csvFile)

	// Everything imported here is spending on the card; a stray positive
	// row in the sheet is treated as its outflow.
	kept := records[:0]
	for _, r := range records {
		if r.Amount == 0 {
			continue
		}
		if r.Amount > 0 {
			r.Amount = -r.Amount
		}
		kept = append(kept, r)
	}
	records = kept
	if len(records) == 0 {
		fmt.Println("No transactions to import.")
		return
	}

	client := newLedgerClient(cfg)
	groups, err := client.categories(ctx)
	checkf(err, "Error fetching categories")
	vocab := buildVocabulary(groups)
	fmt.Println("Categories fetched successfully.")

	minDate := records[0].Date
	for _, r := range records {
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
	}

	byAmount := make(map[int64][]time.Time)
	since := minDate.AddDate(0, 0, -opts.within)
	existing, err := client.transactionsSince(ctx, cfg.AccountID, since, time.Time{})
	if err != nil {
		warnc("Could not fetch existing transactions for duplicate check: %v\n", err)
	} else {
		byAmount = existingAmountDates(existing)
		fmt.Printf("Loaded %d existing transaction(s) for duplicate check.\n", len(existing))
	}

	categoryIDFor := func(r record) string {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			name = cfg.PayeeCategories[strings.ToLower(strings.TrimSpace(r.Payee))]
			if name == "" {
				name = sentinel
			}
		}
		id, ok := vocab.id(name)
		if !ok {
			warnc("Category %q not found in budget. Leaving uncategorized.\n", name)
			return ""
		}
		return id
	}

	var toImport []newTransaction
	var skipped int
	for _, group := range groupRecords(records) {
		txn, ok := buildImportTransaction(cfg.AccountID, group, categoryIDFor)
		if !ok {
			continue
		}
		date, _ := time.Parse(stamp, txn.Date)
		if isDuplicate(byAmount, date, txn.Amount, opts.within) {
			skipped++
			continue
		}
		toImport = append(toImport, txn)
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d duplicate(s) (same amount, date within +/-%d days).\n",
			skipped, opts.within)
	}
	if len(toImport) == 0 {
		fmt.Println("No transactions to import.")
		return
	}

	created, dupIDs, err := client.createTransactions(ctx, toImport)
	checkf(err, "Error importing transactions")

	okc("Imported %d transaction(s).\n", created)
	printCount("created", created)
	printCount("duplicates", len(dupIDs))
	printCount("skipped", skipped)
	printCount("dropped rows", dropped)
}
