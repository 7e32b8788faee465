package main

type dedupKey struct {
	date   string
	amount int64
	memo   string
}

// dedupe collapses records sharing (date, amount, memo prefix); the first
// occurrence wins. The dropped count is reported in aggregate, never
// per record.
func dedupe(records []record) ([]record, int) {
	seen := make(map[dedupKey]bool, len(records))
	out := records[:0]
	for _, r := range records {
		key := dedupKey{r.Date.Format(stamp), r.Amount, truncate(r.Memo, dedupMemoLen)}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out, len(records) - len(out)
}
