// Package ingest turns uploaded CSV files into pending transactions.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
)

// ErrInvalidAmount is returned for amount cells that are not a number.
var ErrInvalidAmount = errors.New("invalid amount")

// RowError locates a malformed cell.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Row is one parsed CSV record.
type Row struct {
	Line         int
	Date         civil.Date
	Amount       decimal.Decimal
	Counterparty string
	Description  string
}

// Parsed is the outcome of reading one CSV file.
type Parsed struct {
	Rows      []Row
	TotalRows int // data rows in the file, including skipped ones
	Skipped   int // rows with no date or no amount
}

// ParseCSV reads a header-first CSV of expenses or sales. Required columns
// are date and amount; the counterparty column is vendor for expenses and
// customer for sales, falling back to description when absent or blank.
// Rows missing a date or amount are skipped. Any malformed cell fails the
// whole file.
func ParseCSV(r io.Reader, kind transaction.Kind) (*Parsed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := indexColumns(header)
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header is missing the %q column", required)
		}
	}

	counterpartyCol := "vendor"
	if kind == transaction.KindSale {
		counterpartyCol = "customer"
	}

	parsed := &Parsed{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if isBlank(record) {
			continue
		}
		parsed.TotalRows++

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		date, amount := get("date"), get("amount")
		if date == "" || amount == "" {
			parsed.Skipped++
			continue
		}

		when, err := ParseDate(date)
		if err != nil {
			return nil, &RowError{Line: line, Column: "date", Err: err}
		}

		value, err := ParseAmount(amount)
		if err != nil {
			return nil, &RowError{Line: line, Column: "amount", Err: err}
		}

		description := get("description")
		counterparty := get(counterpartyCol)
		if counterparty == "" {
			counterparty = description
		}

		parsed.Rows = append(parsed.Rows, Row{
			Line:         line,
			Date:         when,
			Amount:       value,
			Counterparty: counterparty,
			Description:  description,
		})
	}

	return parsed, nil
}

// ParseAmount reads a currency cell such as "1,234.50", "$12" or "(8.00)".
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = strings.NewReplacer("$", "", ",", "", " ", "").Replace(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
