package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"findash/internal/core"
)

// AvailableMonths is the union of months that have transactions, months that
// have budgets, the last six calendar months and the current month, sorted
// newest first. The UI month picker never starts empty because of the
// calendar fallback.
func (s *FinanceService) AvailableMonths(ctx context.Context) ([]string, error) {
	q := s.store.Queries()

	txMonths, err := q.DistinctMonths(ctx)
	if err != nil {
		return nil, err
	}
	budgetMonths, err := q.DistinctBudgetMonths(ctx)
	if err != nil {
		return nil, err
	}

	now := core.CurrentMonth(time.Now())
	recent, err := core.LastNMonths(now, 6)
	if err != nil {
		return nil, err
	}

	months := sortedUnion(txMonths, budgetMonths, recent, []string{now})
	// Newest first
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}

// MonthlyIncomeExpense returns the month's income total and absolute expense
// total, both 0 when the month is empty.
func (s *FinanceService) MonthlyIncomeExpense(ctx context.Context, month string) (float64, float64, error) {
	return s.store.Queries().MonthlyIncomeExpense(ctx, month)
}

// DashboardMetrics computes the KPI block for a month: net worth over all
// accounts, the month's cashflow figures and the budget totals.
func (s *FinanceService) DashboardMetrics(ctx context.Context, month string) (core.DashboardMetrics, error) {
	q := s.store.Queries()

	accounts, err := q.ListAccounts(ctx)
	if err != nil {
		return core.DashboardMetrics{}, err
	}
	var assets, debts float64
	for _, a := range accounts {
		if core.ClassifyKind(a.Kind) == core.ClassLiability {
			debts += abs(a.Balance)
		} else {
			assets += a.Balance
		}
	}

	income, expense, err := q.MonthlyIncomeExpense(ctx, month)
	if err != nil {
		return core.DashboardMetrics{}, err
	}
	cashflow := income - expense
	savingsRate := 0.0
	if income > 0 {
		savingsRate = cashflow / income
	}

	rows, err := s.BudgetRows(ctx, month)
	if err != nil {
		return core.DashboardMetrics{}, err
	}
	var planned, actual float64
	for _, r := range rows {
		planned += r.Planned
		actual += r.Actual
	}
	budgetPct := 0.0
	if planned > 0 {
		budgetPct = actual / planned
	}

	return core.DashboardMetrics{
		NetWorth:        assets - debts,
		MonthlyCashflow: cashflow,
		Income:          income,
		Expense:         expense,
		SavingsRate:     savingsRate,
		BudgetPlanned:   planned,
		BudgetSpent:     actual,
		BudgetRemaining: planned - actual,
		BudgetPct:       budgetPct,
	}, nil
}

// BudgetRows joins the month's planned budgets with its actual expense
// breakdown. Categories appearing on either side make a row (outer join
// semantics), sorted by category name.
func (s *FinanceService) BudgetRows(ctx context.Context, month string) ([]core.BudgetRow, error) {
	q := s.store.Queries()

	budgets, err := q.ListBudgetsByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	spends, err := q.ExpenseByCategory(ctx, month)
	if err != nil {
		return nil, err
	}

	planned := make(map[string]float64, len(budgets))
	for _, b := range budgets {
		planned[b.Category] = b.Planned
	}
	actual := make(map[string]float64, len(spends))
	for _, cs := range spends {
		actual[cs.Category] = cs.Spent
	}

	categories := make([]string, 0, len(planned)+len(actual))
	seen := make(map[string]struct{})
	for c := range planned {
		categories = append(categories, c)
		seen[c] = struct{}{}
	}
	for c := range actual {
		if _, ok := seen[c]; !ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	rows := make([]core.BudgetRow, 0, len(categories))
	for _, c := range categories {
		p := planned[c]
		a := actual[c]
		utilization := 0.0
		if p > 0 {
			utilization = a / p
		}
		rows = append(rows, core.BudgetRow{
			Category:    c,
			Planned:     p,
			Actual:      a,
			Remaining:   p - a,
			Utilization: utilization,
		})
	}
	return rows, nil
}

// ExpenseBreakdown returns absolute spend per category for a month, largest
// first.
func (s *FinanceService) ExpenseBreakdown(ctx context.Context, month string) ([]core.CategorySpend, error) {
	return s.store.Queries().ExpenseByCategory(ctx, month)
}

// CashflowOverTime computes income/expense/net for the n months ending at
// the selected month (inclusive), in chronological order.
func (s *FinanceService) CashflowOverTime(ctx context.Context, selectedMonth string, months int) ([]core.CashflowPoint, error) {
	period, err := core.LastNMonths(selectedMonth, months)
	if err != nil {
		return nil, err
	}

	points := make([]core.CashflowPoint, 0, len(period))
	for _, month := range period {
		income, expense, err := s.MonthlyIncomeExpense(ctx, month)
		if err != nil {
			return nil, fmt.Errorf("cashflow for %s: %w", month, err)
		}
		points = append(points, core.CashflowPoint{
			Month:   month,
			Income:  income,
			Expense: expense,
			Net:     income - expense,
		})
	}
	return points, nil
}

// NetWorthOverTime reconstructs net worth per month by anchoring the current
// net worth at the window's end and walking backward through cumulative
// cashflow. Balance changes made outside the transaction stream are not
// visible to this reconstruction and will skew older points.
func (s *FinanceService) NetWorthOverTime(ctx context.Context, selectedMonth string, months int) ([]core.NetWorthPoint, error) {
	cashflow, err := s.CashflowOverTime(ctx, selectedMonth, months)
	if err != nil {
		return nil, err
	}
	metrics, err := s.DashboardMetrics(ctx, selectedMonth)
	if err != nil {
		return nil, err
	}

	var windowNet float64
	for _, p := range cashflow {
		windowNet += p.Net
	}
	rolling := metrics.NetWorth - windowNet

	points := make([]core.NetWorthPoint, 0, len(cashflow))
	for _, p := range cashflow {
		rolling += p.Net
		points = append(points, core.NetWorthPoint{Month: p.Month, Value: rolling})
	}
	return points, nil
}

// GoalsSummary sums current and target over every goal.
func (s *FinanceService) GoalsSummary(ctx context.Context) (core.GoalsSummary, error) {
	goals, err := s.Goals(ctx)
	if err != nil {
		return core.GoalsSummary{}, err
	}

	var summary core.GoalsSummary
	for _, g := range goals {
		summary.TotalTarget += g.Target
		summary.TotalCurrent += g.Current
	}
	summary.Remaining = summary.TotalTarget - summary.TotalCurrent
	if summary.TotalTarget > 0 {
		summary.Progress = summary.TotalCurrent / summary.TotalTarget
	}
	return summary, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
