package main

import (
	"strings"

	"github.com/pkg/errors"
)

// Candidate header names per logical field, in priority order. These cover
// the layouts the Amazon order-history extension has shipped over time, plus
// the canonical headers this tool writes itself so its own output round-trips.
var (
	dateColumns       = []string{"order.date", "order date", "order_date", "date", "order placed", "charged on"}
	amountColumns     = []string{"order.total", "order total", "order_total", "item total", "item.total", "total", "amount", "price"}
	memoColumns       = []string{"item.title", "item title", "item_title", "title", "product", "description", "item", "memo", "order.items"}
	orderIDColumns    = []string{"order id", "order number", "order_id", "orderid"}
	orderTotalColumns = []string{"order.total", "order total", "order_total"}
)

// columnMap is the schema decision for one file: header index per logical
// field, or -1 when the field did not resolve. It is frozen from the header
// row and applied to every data row.
type columnMap struct {
	date, amount, memo, orderID, orderTotal int
}

func squash(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, ".", "")
}

// findColumn returns the index of the first header matching a candidate:
// case-insensitive exact matches win over space/period-stripped substring
// matches, and candidate order decides ties within each pass.
func findColumn(headers []string, candidates []string) int {
	for _, c := range candidates {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i
			}
		}
	}
	for _, c := range candidates {
		cs := squash(c)
		for i, h := range headers {
			if strings.Contains(squash(h), cs) {
				return i
			}
		}
	}
	return -1
}

// resolveColumns maps the header row to logical fields. Date and amount are
// mandatory; failing to resolve either is a configuration error and the
// message lists what the file actually contains.
func resolveColumns(headers []string) (columnMap, error) {
	cm := columnMap{
		date:       findColumn(headers, dateColumns),
		amount:     findColumn(headers, amountColumns),
		memo:       findColumn(headers, memoColumns),
		orderID:    findColumn(headers, orderIDColumns),
		orderTotal: findColumn(headers, orderTotalColumns),
	}
	if cm.date < 0 || cm.amount < 0 {
		return cm, errors.Errorf(
			"could not find date and amount columns; available headers: %v", headers)
	}
	return cm, nil
}
