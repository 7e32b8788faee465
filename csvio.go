package main

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Canonical CSV layout produced by convert and consumed by import and apply.
var canonicalHeader = []string{"Date", "Payee", "Memo", "Amount", "Category", "OrderId"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readTransactionsCSV reads any CSV with resolvable date and amount columns
// into canonical records. The schema is decided once from the header row.
// Rows that fail to parse are dropped and counted.
func readTransactionsCSV(path string) ([]record, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "unable to read %v", path)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "unable to read header row of %v", path)
	}
	cm, err := resolveColumns(headers)
	if err != nil {
		return nil, 0, err
	}
	categoryCol := findColumn(headers, []string{"category"})
	payeeCol := findColumn(headers, []string{"payee"})

	var records []record
	var dropped int
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}
		rec, ok := parseRow(row, cm)
		if !ok {
			dropped++
			continue
		}
		if categoryCol >= 0 && categoryCol < len(row) {
			rec.Category = strings.TrimSpace(row[categoryCol])
		}
		if payeeCol >= 0 && payeeCol < len(row) {
			if p := strings.TrimSpace(row[payeeCol]); p != "" {
				rec.Payee = p
			}
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

// writeCanonicalCSV writes records in the fixed canonical column order, with
// dates as ISO and amounts as signed major-unit decimals.
func writeCanonicalCSV(path string, records []record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %v", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(canonicalHeader); err != nil {
		return errors.Wrap(err, "unable to write header")
	}
	for _, r := range records {
		row := []string{
			r.Date.Format(stamp),
			r.Payee,
			r.Memo,
			milliToMajor(r.Amount),
			r.Category,
			r.OrderID,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "unable to write row")
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "unable to flush %v", path)
}
