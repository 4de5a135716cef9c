package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ExportMonthlyReportCSV writes the month's dashboard metrics, accounts,
// budget rows, expense breakdown, goals and (optionally search-filtered)
// transactions as one labeled multi-section CSV document. Pure read path.
// The destination's extension is replaced with ".csv"; the final path is
// returned.
func (s *FinanceService) ExportMonthlyReportCSV(ctx context.Context, month, destination, search string) (string, error) {
	// Replace whatever extension the caller gave with ".csv".
	target := strings.TrimSuffix(destination, filepath.Ext(destination)) + ".csv"
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	metrics, err := s.DashboardMetrics(ctx, month)
	if err != nil {
		return "", err
	}
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return "", err
	}
	goals, err := s.Goals(ctx)
	if err != nil {
		return "", err
	}
	goalsSummary, err := s.GoalsSummary(ctx)
	if err != nil {
		return "", err
	}
	budgetRows, err := s.BudgetRows(ctx, month)
	if err != nil {
		return "", err
	}
	expenseRows, err := s.ExpenseBreakdown(ctx, month)
	if err != nil {
		return "", err
	}
	transactions, err := s.Transactions(ctx, month, search)
	if err != nil {
		return "", err
	}

	handle, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer handle.Close()

	w := csv.NewWriter(handle)

	searchLabel := search
	if searchLabel == "" {
		searchLabel = "(none)"
	}
	w.Write([]string{"Personal Finance Dashboard Report"})
	w.Write([]string{"Generated At", time.Now().Format("2006-01-02 15:04:05")})
	w.Write([]string{"Month", month})
	w.Write([]string{"Search", searchLabel})
	w.Write([]string{})

	w.Write([]string{"KPIs"})
	w.Write([]string{"Net Worth", num(metrics.NetWorth)})
	w.Write([]string{"Monthly Income", num(metrics.Income)})
	w.Write([]string{"Monthly Expense", num(metrics.Expense)})
	w.Write([]string{"Monthly Cashflow", num(metrics.MonthlyCashflow)})
	w.Write([]string{"Savings Rate", num(metrics.SavingsRate)})
	w.Write([]string{"Budget Planned", num(metrics.BudgetPlanned)})
	w.Write([]string{"Budget Spent", num(metrics.BudgetSpent)})
	w.Write([]string{"Budget Remaining", num(metrics.BudgetRemaining)})
	w.Write([]string{})

	w.Write([]string{"Accounts"})
	w.Write([]string{"Name", "Kind", "Balance"})
	for _, a := range accounts {
		w.Write([]string{a.Name, a.Kind, num(a.Balance)})
	}
	w.Write([]string{})

	w.Write([]string{"Budgets"})
	w.Write([]string{"Category", "Planned", "Actual", "Remaining", "Utilization"})
	for _, r := range budgetRows {
		w.Write([]string{r.Category, num(r.Planned), num(r.Actual), num(r.Remaining), num(r.Utilization)})
	}
	w.Write([]string{})

	w.Write([]string{"Expense Breakdown"})
	w.Write([]string{"Category", "Spent"})
	for _, r := range expenseRows {
		w.Write([]string{r.Category, num(r.Spent)})
	}
	w.Write([]string{})

	w.Write([]string{"Goals Summary"})
	w.Write([]string{"Total Current", num(goalsSummary.TotalCurrent)})
	w.Write([]string{"Total Target", num(goalsSummary.TotalTarget)})
	w.Write([]string{"Remaining", num(goalsSummary.Remaining)})
	w.Write([]string{"Progress", num(goalsSummary.Progress)})
	w.Write([]string{})

	w.Write([]string{"Goals"})
	w.Write([]string{"Name", "Current", "Target", "Deadline"})
	for _, g := range goals {
		w.Write([]string{g.Name, num(g.Current), num(g.Target), g.Deadline})
	}
	w.Write([]string{})

	w.Write([]string{"Transactions"})
	w.Write([]string{"Date", "Description", "Category", "Account", "Type", "Amount"})
	for _, t := range transactions {
		w.Write([]string{t.Date, t.Description, t.Category, t.Account, string(t.Type), num(t.Amount)})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := handle.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		"month", month, "path", target, "transactions", len(transactions))
	return target, nil
}

// num formats a float compactly, without trailing zero padding.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
