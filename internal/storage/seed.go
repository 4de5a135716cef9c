package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"findash/internal/core"
)

// SeedDemoData populates an empty store with representative demo data: four
// accounts, two months of transactions, matching budgets and one goal. A
// store that already has transactions is left alone.
func (s *Store) SeedDemoData(ctx context.Context, now time.Time) error {
	var txCount, goalCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&txCount); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goals`).Scan(&goalCount); err != nil {
		return fmt.Errorf("count goals: %w", err)
	}
	if txCount > 0 {
		return nil
	}

	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previous := current.AddDate(0, -1, 0)
	day := func(base time.Time, d int) string {
		return time.Date(base.Year(), base.Month(), d, 0, 0, 0, 0, time.UTC).Format(core.DateLayout)
	}

	return s.WithTx(ctx, func(q *Queries) error {
		accounts := []core.Account{
			{Name: "Checking", Kind: "Asset", Balance: 5300.00},
			{Name: "Savings", Kind: "Asset", Balance: 15000.00},
			{Name: "Brokerage", Kind: "Asset", Balance: 9200.00},
			{Name: "Credit Card", Kind: "Debt", Balance: 2200.00},
		}
		for _, a := range accounts {
			if _, err := q.db.ExecContext(ctx,
				`INSERT OR IGNORE INTO accounts(name, kind, balance) VALUES(?, ?, ?)`,
				a.Name, a.Kind, a.Balance); err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
		}

		txs := []core.Transaction{
			{Date: day(previous, 1), Description: "Salary", Category: "Income", Account: "Checking", Amount: 4200, Type: core.Income},
			{Date: day(previous, 3), Description: "Freelance Project", Category: "Income", Account: "Checking", Amount: 600, Type: core.Income},
			{Date: day(previous, 4), Description: "Monthly Rent", Category: "Housing", Account: "Checking", Amount: -1450, Type: core.Expense},
			{Date: day(previous, 6), Description: "Supermarket", Category: "Groceries", Account: "Checking", Amount: -320, Type: core.Expense},
			{Date: day(previous, 9), Description: "Electric + Internet", Category: "Utilities", Account: "Checking", Amount: -180, Type: core.Expense},
			{Date: day(previous, 11), Description: "Dinner with Friends", Category: "Dining", Account: "Checking", Amount: -140, Type: core.Expense},
			{Date: day(previous, 14), Description: "Gas", Category: "Transport", Account: "Checking", Amount: -90, Type: core.Expense},
			{Date: day(previous, 17), Description: "Gym Membership", Category: "Health", Account: "Checking", Amount: -55, Type: core.Expense},
			{Date: day(previous, 21), Description: "Streaming + Games", Category: "Entertainment", Account: "Checking", Amount: -120, Type: core.Expense},
			{Date: day(previous, 24), Description: "Index ETF Buy", Category: "Investments", Account: "Brokerage", Amount: -500, Type: core.Expense},
			{Date: day(current, 1), Description: "Salary", Category: "Income", Account: "Checking", Amount: 4200, Type: core.Income},
			{Date: day(current, 2), Description: "Quarterly Bonus", Category: "Income", Account: "Checking", Amount: 300, Type: core.Income},
			{Date: day(current, 4), Description: "Monthly Rent", Category: "Housing", Account: "Checking", Amount: -1450, Type: core.Expense},
			{Date: day(current, 5), Description: "Supermarket", Category: "Groceries", Account: "Checking", Amount: -340, Type: core.Expense},
			{Date: day(current, 7), Description: "Electric + Internet", Category: "Utilities", Account: "Checking", Amount: -170, Type: core.Expense},
			{Date: day(current, 10), Description: "Coffee + Lunch", Category: "Dining", Account: "Checking", Amount: -155, Type: core.Expense},
			{Date: day(current, 13), Description: "Fuel + Parking", Category: "Transport", Account: "Checking", Amount: -95, Type: core.Expense},
			{Date: day(current, 16), Description: "Subscriptions", Category: "Entertainment", Account: "Checking", Amount: -42, Type: core.Expense},
			{Date: day(current, 19), Description: "Pharmacy", Category: "Health", Account: "Checking", Amount: -110, Type: core.Expense},
			{Date: day(current, 23), Description: "Weekend Trip", Category: "Travel", Account: "Checking", Amount: -260, Type: core.Expense},
		}
		for _, t := range txs {
			if _, err := q.CreateTransaction(ctx, t); err != nil {
				return err
			}
		}

		curMonth := current.Format(core.MonthLayout)
		prevMonth := previous.Format(core.MonthLayout)
		budgets := []core.Budget{
			{Month: curMonth, Category: "Housing", Planned: 1500},
			{Month: curMonth, Category: "Groceries", Planned: 450},
			{Month: curMonth, Category: "Utilities", Planned: 250},
			{Month: curMonth, Category: "Dining", Planned: 220},
			{Month: curMonth, Category: "Transport", Planned: 180},
			{Month: curMonth, Category: "Entertainment", Planned: 160},
			{Month: prevMonth, Category: "Housing", Planned: 1500},
			{Month: prevMonth, Category: "Groceries", Planned: 420},
			{Month: prevMonth, Category: "Utilities", Planned: 240},
			{Month: prevMonth, Category: "Dining", Planned: 210},
			{Month: prevMonth, Category: "Transport", Planned: 170},
			{Month: prevMonth, Category: "Entertainment", Planned: 150},
		}
		for _, b := range budgets {
			if err := q.UpsertBudget(ctx, b.Month, b.Category, b.Planned); err != nil {
				return err
			}
		}

		if goalCount == 0 {
			goal := core.Goal{
				Name:     "Emergency Fund",
				Target:   20000,
				Current:  15000,
				Deadline: fmt.Sprintf("%d-12-31", now.Year()+1),
			}
			if _, err := q.CreateGoal(ctx, goal); err != nil {
				return err
			}
		}

		slog.InfoContext(ctx, "Seeded demo data",
			"accounts", len(accounts), "transactions", len(txs), "budgets", len(budgets))
		return nil
	})
}
