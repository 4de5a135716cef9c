package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// dedupeKey identifies a transaction for import deduplication: a row whose
// (date, description, 2-decimal amount, account) already exists is skipped.
type dedupeKey struct {
	Date        string
	Description string
	Amount      float64
	Account     string
}

// ImportCSV bulk-imports transactions from a CSV file with the required
// columns date, description, category, account, amount (any order, extra
// columns ignored). The first malformed row aborts the call with an error
// naming its line number; rows accepted before it remain committed. Returns
// (imported, skipped).
func (s *FinanceService) ImportCSV(ctx context.Context, path string) (int, int, error) {
	handle, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, core.NotFound("file", path)
		}
		return 0, 0, fmt.Errorf("open csv: %w", err)
	}
	defer handle.Close()

	reader := csv.NewReader(handle)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, 0, core.Validationf("CSV missing required columns: account, amount, category, date, description")
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return 0, 0, err
	}

	existing, err := s.dedupeKeys(ctx)
	if err != nil {
		return 0, 0, err
	}

	imported, skipped := 0, 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return imported, skipped, core.Validationf("invalid row at line %d: %v", line, err)
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		dateText := field("date")
		if _, err := core.ParseDate(dateText); err != nil {
			return imported, skipped, core.Validationf("invalid row at line %d: %v", line, err)
		}

		description := field("description")
		category := field("category")
		account := field("account")
		if description == "" || category == "" || account == "" {
			return imported, skipped, core.Validationf("invalid row at line %d: empty text fields are not allowed", line)
		}

		amountDec, err := decimal.NewFromString(field("amount"))
		if err != nil {
			return imported, skipped, core.Validationf("invalid row at line %d: bad amount %q", line, field("amount"))
		}
		amount := amountDec.InexactFloat64()

		// The key must round the same float64 that gets stored, or a row
		// whose decimal and float roundings disagree would re-import as a
		// duplicate.
		key := dedupeKey{
			Date:        dateText,
			Description: description,
			Amount:      core.RoundCents(amount),
			Account:     account,
		}
		if _, dup := existing[key]; dup {
			skipped++
			continue
		}

		txType := core.Income
		if amount < 0 {
			txType = core.Expense
		}
		if _, err := s.AddTransaction(ctx, TransactionInput{
			Date:        dateText,
			Description: description,
			Category:    category,
			Account:     account,
			Type:        string(txType),
			Amount:      abs(amount),
		}); err != nil {
			return imported, skipped, fmt.Errorf("import row at line %d: %w", line, err)
		}

		existing[key] = struct{}{}
		imported++
	}

	slog.InfoContext(ctx, "CSV import finished",
		"path", path, "imported", imported, "skipped", skipped)
	return imported, skipped, nil
}

// mapColumns resolves the required column positions from the header row.
// Column names are case-sensitive; extra columns are ignored.
func mapColumns(header []string) (map[string]int, error) {
	required := []string{"date", "description", "category", "account", "amount"}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF") // tolerate a UTF-8 BOM
		}
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, core.Validationf("CSV missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

// dedupeKeys snapshots the live transaction log's dedup keys once, at the
// start of an import.
func (s *FinanceService) dedupeKeys(ctx context.Context) (map[dedupeKey]struct{}, error) {
	rows, err := s.store.Queries().DedupeRows(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[dedupeKey]struct{}, len(rows))
	for _, r := range rows {
		keys[dedupeKey{
			Date:        r.Date,
			Description: r.Description,
			Amount:      core.RoundCents(r.Amount),
			Account:     r.Account,
		}] = struct{}{}
	}
	return keys, nil
}
