package storage

import (
	"context"
	"fmt"

	"findash/internal/core"
)

// UpsertBudget sets the planned amount for (month, category), replacing any
// existing row for the pair.
func (q *Queries) UpsertBudget(ctx context.Context, month, category string, planned float64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets(month, category, planned)
		 VALUES(?, ?, ?)
		 ON CONFLICT(month, category) DO UPDATE SET planned = excluded.planned`,
		month, category, planned)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// ListBudgetsByMonth returns the month's budgets ordered by category.
func (q *Queries) ListBudgetsByMonth(ctx context.Context, month string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, month, category, planned
		 FROM budgets
		 WHERE month = ?
		 ORDER BY category`, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Month, &b.Category, &b.Planned); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DistinctBudgetMonths returns every month with a budget, newest first.
func (q *Queries) DistinctBudgetMonths(ctx context.Context) ([]string, error) {
	return q.stringColumn(ctx, `SELECT DISTINCT month FROM budgets ORDER BY month DESC`)
}
