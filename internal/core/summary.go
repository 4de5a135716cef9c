package core

// DashboardMetrics is the KPI block for one month.
type DashboardMetrics struct {
	NetWorth        float64
	MonthlyCashflow float64
	Income          float64
	Expense         float64
	SavingsRate     float64
	BudgetPlanned   float64
	BudgetSpent     float64
	BudgetRemaining float64
	BudgetPct       float64
}

// BudgetRow compares planned vs. actual spend for one category in one month.
// Categories with a budget but no spend, or spend but no budget, both appear.
type BudgetRow struct {
	Category    string
	Planned     float64
	Actual      float64
	Remaining   float64
	Utilization float64
}

// CashflowPoint is one month of the cashflow series.
type CashflowPoint struct {
	Month   string
	Income  float64
	Expense float64
	Net     float64
}

// NetWorthPoint is one month of the reconstructed net-worth series.
type NetWorthPoint struct {
	Month string
	Value float64
}

// CategorySpend is one category's absolute expense total for a month.
type CategorySpend struct {
	Category string
	Spent    float64
}

// GoalsSummary sums progress across all goals.
type GoalsSummary struct {
	TotalTarget  float64
	TotalCurrent float64
	Remaining    float64
	Progress     float64
}
