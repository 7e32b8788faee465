package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ynabBaseURL = "https://api.ynab.com/v1"

	// The service caps transaction listings at this many per response; a
	// short page means the listing is exhausted.
	ledgerPageSize = 500
)

// ledgerClient talks to the YNAB v1 REST API. It holds read snapshots and
// issues mutation requests; the remote service owns the authoritative copy.
type ledgerClient struct {
	http     *http.Client
	baseURL  string
	token    string
	budgetID string
}

func newLedgerClient(cfg *config) *ledgerClient {
	return &ledgerClient{
		http:     &http.Client{Timeout: 60 * time.Second},
		baseURL:  ynabBaseURL,
		token:    cfg.AccessToken,
		budgetID: cfg.BudgetID,
	}
}

// Wire types, decoded once at the response boundary. The API sends null for
// absent fields; those decode to Go zero values ("" / 0 / false), which are
// the documented defaults everywhere downstream.

type ledgerCategory struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hidden  bool   `json:"hidden"`
	Deleted bool   `json:"deleted"`
}

type ledgerCategoryGroup struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Hidden     bool             `json:"hidden"`
	Deleted    bool             `json:"deleted"`
	Categories []ledgerCategory `json:"categories"`
}

type subTransaction struct {
	Amount     int64  `json:"amount"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

type ledgerTxn struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"` // ISO YYYY-MM-DD
	Amount          int64            `json:"amount"`
	PayeeID         string           `json:"payee_id"`
	PayeeName       string           `json:"payee_name"`
	CategoryID      string           `json:"category_id"`
	CategoryName    string           `json:"category_name"`
	Memo            string           `json:"memo"`
	Cleared         string           `json:"cleared"`
	Approved        bool             `json:"approved"`
	FlagColor       string           `json:"flag_color"`
	Deleted         bool             `json:"deleted"`
	Subtransactions []subTransaction `json:"subtransactions"`
}

func (t ledgerTxn) date() (time.Time, bool) {
	if len(t.Date) < len(stamp) {
		return time.Time{}, false
	}
	tm, err := time.Parse(stamp, t.Date[:len(stamp)])
	return tm, err == nil
}

type newTransaction struct {
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeName       string           `json:"payee_name,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Cleared         string           `json:"cleared"`
	Approved        bool             `json:"approved"`
	ImportID        string           `json:"import_id"`
	Subtransactions []subTransaction `json:"subtransactions,omitempty"`
}

// existingTransaction is the full replacement record for updates. The zero
// value of CategoryID is omitted, which the service reads as "no category".
type existingTransaction struct {
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeID         string           `json:"payee_id,omitempty"`
	PayeeName       string           `json:"payee_name,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	Cleared         string           `json:"cleared,omitempty"`
	Approved        bool             `json:"approved"`
	FlagColor       string           `json:"flag_color,omitempty"`
	Subtransactions []subTransaction `json:"subtransactions,omitempty"`
}

// replacementFor builds the update payload that keeps every field of t
// except the category.
func replacementFor(t ledgerTxn, categoryID string) existingTransaction {
	return existingTransaction{
		AccountID:  t.AccountID,
		Date:       t.Date,
		Amount:     t.Amount,
		PayeeID:    t.PayeeID,
		PayeeName:  t.PayeeName,
		CategoryID: categoryID,
		Memo:       t.Memo,
		Cleared:    t.Cleared,
		Approved:   t.Approved,
		FlagColor:  t.FlagColor,
	}
}

func (c *ledgerClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "unable to encode request body")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "unable to build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "unable to read response of %s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("%s %s: %s: %s", method, path, resp.Status,
			strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "unable to decode response of %s %s", method, path)
}

// categories fetches all category groups of the budget.
func (c *ledgerClient) categories(ctx context.Context) ([]ledgerCategoryGroup, error) {
	var resp struct {
		Data struct {
			CategoryGroups []ledgerCategoryGroup `json:"category_groups"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/categories", c.budgetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.CategoryGroups, nil
}

// transactionsSince lists the account's non-deleted transactions from since
// onward, paging until a short page arrives or the latest seen date passes
// cutoff (when non-zero). The cursor always advances to the latest date plus
// one day so a service re-serving the same page cannot loop this forever.
func (c *ledgerClient) transactionsSince(ctx context.Context, accountID string,
	since, cutoff time.Time) ([]ledgerTxn, error) {

	var all []ledgerTxn
	cursor := since
	for {
		var resp struct {
			Data struct {
				Transactions []ledgerTxn `json:"transactions"`
			} `json:"data"`
		}
		path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions?since_date=%s",
			c.budgetID, accountID, cursor.Format(stamp))
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		page := resp.Data.Transactions

		var latest time.Time
		for _, t := range page {
			d, ok := t.date()
			if !ok {
				continue
			}
			if d.After(latest) {
				latest = d
			}
			if !t.Deleted {
				all = append(all, t)
			}
		}

		if len(page) < ledgerPageSize {
			break
		}
		if latest.IsZero() {
			break
		}
		if !cutoff.IsZero() && !latest.Before(cutoff) {
			break
		}
		cursor = latest.AddDate(0, 0, 1)
	}
	return all, nil
}

// createTransactions issues one idempotent batch create. The service dedupes
// on each transaction's import id and reports the ids it refused.
func (c *ledgerClient) createTransactions(ctx context.Context, txns []newTransaction) (int, []string, error) {
	body := struct {
		Transactions []newTransaction `json:"transactions"`
	}{Transactions: txns}
	var resp struct {
		Data struct {
			Transactions       []ledgerTxn `json:"transactions"`
			DuplicateImportIDs []string    `json:"duplicate_import_ids"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/budgets/%s/transactions", c.budgetID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return 0, nil, err
	}
	return len(resp.Data.Transactions), resp.Data.DuplicateImportIDs, nil
}

func (c *ledgerClient) updateTransaction(ctx context.Context, id string, txn existingTransaction) error {
	body := struct {
		Transaction existingTransaction `json:"transaction"`
	}{Transaction: txn}
	path := fmt.Sprintf("/budgets/%s/transactions/%s", c.budgetID, id)
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *ledgerClient) deleteTransaction(ctx context.Context, id string) error {
	path := fmt.Sprintf("/budgets/%s/transactions/%s", c.budgetID, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// importID builds the caller-side idempotency key for a created transaction,
// in the service's own import convention.
func importID(amount int64, date time.Time) string {
	return fmt.Sprintf("YNAB:%d:%s:1", amount, date.Format(stamp))
}

// vocabulary is the usable category set: display names plus a lookup of
// category ids keyed by lowercased name. The sentinel is always present;
// its id is empty, which serializes as "no category".
type vocabulary struct {
	names    []string
	idByName map[string]string
}

func buildVocabulary(groups []ledgerCategoryGroup) *vocabulary {
	v := &vocabulary{idByName: make(map[string]string)}
	for _, g := range groups {
		if g.Deleted || g.Hidden {
			continue
		}
		for _, cat := range g.Categories {
			if cat.Deleted || cat.Hidden {
				continue
			}
			v.names = append(v.names, cat.Name)
			v.idByName[strings.ToLower(cat.Name)] = cat.ID
		}
	}
	if _, ok := v.idByName[strings.ToLower(sentinel)]; !ok {
		v.names = append(v.names, sentinel)
		v.idByName[strings.ToLower(sentinel)] = ""
	}
	return v
}

func (v *vocabulary) id(name string) (string, bool) {
	id, ok := v.idByName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// assignable excludes the sentinel: it is a resolution fallback, not a
// category anyone asks the model to pick.
func (v *vocabulary) assignable() []string {
	out := make([]string, 0, len(v.names))
	for _, n := range v.names {
		if n == sentinel {
			continue
		}
		out = append(out, n)
	}
	return out
}
