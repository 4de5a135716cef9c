package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"findash/internal/core"
)

const txColumns = `id, date, description, category, account, amount, type`

// CreateTransaction inserts a transaction and returns its id.
func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions(date, description, category, account, amount, type)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		t.Date, t.Description, t.Category, t.Account, t.Amount, string(t.Type))
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

// UpdateTransaction overwrites all mutable fields of the row with the given id.
func (q *Queries) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, description = ?, category = ?, account = ?, amount = ?, type = ?
		 WHERE id = ?`,
		t.Date, t.Description, t.Category, t.Account, t.Amount, string(t.Type), id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// GetTransaction returns nil (no error) when the id does not exist.
func (q *Queries) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// ListTransactionsByMonth returns the month's transactions newest first
// (date DESC, id DESC), optionally narrowed by a case-insensitive substring
// search over description, category and account.
func (q *Queries) ListTransactionsByMonth(ctx context.Context, month, search string) ([]core.Transaction, error) {
	where := `WHERE substr(date, 1, 7) = ?`
	args := []any{month}
	if token := strings.TrimSpace(search); token != "" {
		where += ` AND (description LIKE ? OR category LIKE ? OR account LIKE ?)`
		like := "%" + token + "%"
		args = append(args, like, like, like)
	}

	return q.listTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions `+where+` ORDER BY date DESC, id DESC`, args...)
}

// ListRecentTransactions is ListTransactionsByMonth with a row limit. An
// empty month matches all months.
func (q *Queries) ListRecentTransactions(ctx context.Context, month, search string, limit int) ([]core.Transaction, error) {
	var conditions []string
	var args []any

	if month != "" {
		conditions = append(conditions, `substr(date, 1, 7) = ?`)
		args = append(args, month)
	}
	if token := strings.TrimSpace(search); token != "" {
		conditions = append(conditions, `(description LIKE ? OR category LIKE ? OR account LIKE ?)`)
		like := "%" + token + "%"
		args = append(args, like, like, like)
	}

	where := ""
	if len(conditions) > 0 {
		where = `WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)

	return q.listTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions `+where+` ORDER BY date DESC, id DESC LIMIT ?`, args...)
}

// DistinctMonths returns every month with at least one transaction, newest first.
func (q *Queries) DistinctMonths(ctx context.Context) ([]string, error) {
	return q.stringColumn(ctx,
		`SELECT DISTINCT substr(date, 1, 7) AS month FROM transactions ORDER BY month DESC`)
}

func (q *Queries) DistinctCategories(ctx context.Context) ([]string, error) {
	return q.stringColumn(ctx,
		`SELECT DISTINCT category FROM transactions ORDER BY category`)
}

func (q *Queries) DistinctAccounts(ctx context.Context) ([]string, error) {
	return q.stringColumn(ctx,
		`SELECT DISTINCT account FROM transactions ORDER BY account`)
}

// MonthlyIncomeExpense returns the month's income total and the absolute
// expense total. Both are 0 for a month with no transactions.
func (q *Queries) MonthlyIncomeExpense(ctx context.Context, month string) (income, expense float64, err error) {
	err = q.db.QueryRowContext(ctx,
		`SELECT
		    COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
		    COALESCE(SUM(CASE WHEN type = 'expense' THEN ABS(amount) ELSE 0 END), 0) AS expense
		 FROM transactions
		 WHERE substr(date, 1, 7) = ?`, month).
		Scan(&income, &expense)
	if err != nil {
		return 0, 0, fmt.Errorf("monthly income/expense: %w", err)
	}
	return income, expense, nil
}

// ExpenseByCategory returns absolute expense totals per category for the
// month, largest first.
func (q *Queries) ExpenseByCategory(ctx context.Context, month string) ([]core.CategorySpend, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category, ABS(SUM(amount)) AS spent
		 FROM transactions
		 WHERE substr(date, 1, 7) = ? AND type = 'expense'
		 GROUP BY category
		 ORDER BY spent DESC`, month)
	if err != nil {
		return nil, fmt.Errorf("expense by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySpend
	for rows.Next() {
		var cs core.CategorySpend
		if err := rows.Scan(&cs.Category, &cs.Spent); err != nil {
			return nil, fmt.Errorf("scan category spend: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// DedupeRow is the raw material for an import dedup key.
type DedupeRow struct {
	Date        string
	Description string
	Amount      float64
	Account     string
}

// DedupeRows returns (date, description, amount, account) for every stored
// transaction.
func (q *Queries) DedupeRows(ctx context.Context) ([]DedupeRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT date, description, amount, account FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("dedupe rows: %w", err)
	}
	defer rows.Close()

	var out []DedupeRow
	for rows.Next() {
		var d DedupeRow
		if err := rows.Scan(&d.Date, &d.Description, &d.Amount, &d.Account); err != nil {
			return nil, fmt.Errorf("scan dedupe row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Category, &t.Account, &t.Amount, &typ)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TxType(typ)
	return t, nil
}
