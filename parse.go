package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	stamp = "2006-01-02"

	defaultPayee = "Amazon.ca"
	sentinel     = "Uncategorized"

	memoMaxLen    = 500 // stored memo
	dedupMemoLen  = 100 // memo prefix in the dedup key
	minDetailLen  = 30  // memos at or below this are too sparse for AI
	currencyCode  = "CAD"
)

// record is the canonical local transaction: date, signed milliunits
// (negative for outflows), bounded memo, opaque order id. Immutable after
// parsing except for the category.
type record struct {
	Date     time.Time
	Amount   int64 // milliunits
	Payee    string
	Memo     string
	Category string
	OrderID  string
}

// Date layouts tried in order, then regex extraction as a last resort.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var (
	isoDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	usDateRe  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, true
		}
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if tm, err := time.Parse(stamp, m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return tm, true
		}
	}
	if m := usDateRe.FindStringSubmatch(s); m != nil {
		if tm, err := time.Parse("1/2/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}

// parseAmount reads a major-unit amount string, tolerating thousands
// separators, a currency symbol and a trailing currency code.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), currencyCode))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func toMilliunits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
}

// milliToMajor renders signed milliunits as a major-unit decimal string.
func milliToMajor(m int64) string {
	return decimal.New(m, -3).String()
}

var refundWords = []string{"return", "refund", "reimbursement"}

func isRefundMemo(memo string) bool {
	lower := strings.ToLower(memo)
	for _, w := range refundWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// signedAmount applies the outflow convention: everything is an outflow
// (negated absolute value) unless the parsed value is strictly positive and
// the memo carries a refund keyword. This memo heuristic is a known
// approximation: a "return"-labeled charge that is genuinely negative stays
// an outflow.
func signedAmount(parsed decimal.Decimal, memo string) int64 {
	if parsed.IsZero() {
		return 0
	}
	if parsed.IsPositive() && isRefundMemo(memo) {
		return toMilliunits(parsed)
	}
	return -toMilliunits(parsed.Abs())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// parseRow turns one raw CSV row into a record. Rows with an unparseable
// date or amount are dropped, not fatal.
func parseRow(row []string, cm columnMap) (record, bool) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	date, ok := parseDate(field(cm.date))
	if !ok {
		return record{}, false
	}
	amt, ok := parseAmount(field(cm.amount))
	if !ok {
		return record{}, false
	}

	memo := truncate(strings.TrimSpace(field(cm.memo)), memoMaxLen)
	dateStr := date.Format(stamp)

	var orderID string
	if id := strings.TrimSpace(field(cm.orderID)); id != "" {
		orderID = id
	} else if cm.orderTotal >= 0 {
		if total, ok := parseAmount(field(cm.orderTotal)); ok {
			orderID = fmt.Sprintf("%s|%s", dateStr, total.String())
		}
	}

	r := record{
		Date:    date,
		Amount:  signedAmount(amt, memo),
		Payee:   defaultPayee,
		Memo:    memo,
		OrderID: orderID,
	}
	if r.Memo == "" {
		r.Memo = "Order " + dateStr
	}
	return r, true
}

// detailedMemo reports whether a memo carries enough text to be worth an AI
// classification call.
func detailedMemo(memo string) bool {
	return len(strings.TrimSpace(memo)) > minDetailLen
}
