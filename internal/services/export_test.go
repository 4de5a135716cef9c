package services

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportMonthlyReportCSV(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)
	seedAccount(t, svc, "Credit Card", "Debt", 500)

	_, err := svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-05", Description: "Salary", Category: "Income", Account: "Checking", Type: "income", Amount: 4000})
	require.NoError(t, err)
	_, err = svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-06", Description: "Supermarket", Category: "Groceries", Account: "Checking", Type: "expense", Amount: 150})
	require.NoError(t, err)
	require.NoError(t, svc.SetBudget(ctx, "2024-01", "Groceries", 400))
	_, err = svc.AddGoal(ctx, GoalInput{Name: "Emergency Fund", Target: 20000, Current: 5000})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "report") // suffix gets forced
	path, err := svc.ExportMonthlyReportCSV(ctx, "2024-01", dest, "")
	require.NoError(t, err)
	require.Equal(t, dest+".csv", path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	for _, section := range []string{
		"Personal Finance Dashboard Report",
		"KPIs", "Accounts", "Budgets", "Expense Breakdown",
		"Goals Summary", "Goals", "Transactions",
	} {
		require.Contains(t, content, section)
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	requireRow := func(want []string) {
		for _, rec := range records {
			if len(rec) != len(want) {
				continue
			}
			match := true
			for i := range rec {
				if rec[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		t.Fatalf("report missing row %v", want)
	}

	requireRow([]string{"Search", "(none)"})
	requireRow([]string{"Net Worth", "4350"}) // 1000+4000-150 checking, -500 debt
	requireRow([]string{"Checking", "Asset", "4850"})
	requireRow([]string{"Groceries", "400", "150", "250", "0.375"})
	requireRow([]string{"Emergency Fund", "5000", "20000", ""})
	requireRow([]string{"2024-01-05", "Salary", "Income", "Checking", "income", "4000"})
}

func TestExportReplacesDestinationExtension(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	dir := t.TempDir()

	path, err := svc.ExportMonthlyReportCSV(ctx, "2024-01", filepath.Join(dir, "report.txt"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "report.csv"), path)

	path, err = svc.ExportMonthlyReportCSV(ctx, "2024-01", filepath.Join(dir, "report.csv"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "report.csv"), path)
}

func TestExportReportSearchFilterAppliesToTransactionsOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-05", Description: "Salary", Category: "Income", Account: "Checking", Type: "income", Amount: 4000})
	require.NoError(t, err)
	_, err = svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-06", Description: "Supermarket", Category: "Groceries", Account: "Checking", Type: "expense", Amount: 150})
	require.NoError(t, err)

	path, err := svc.ExportMonthlyReportCSV(ctx, "2024-01", filepath.Join(t.TempDir(), "report.csv"), "super")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// The transaction section is filtered; the expense breakdown is not
	require.Contains(t, string(content), "Supermarket")
	require.NotContains(t, string(content), "2024-01-05,Salary")
	require.Contains(t, string(content), "Search,super")
}
