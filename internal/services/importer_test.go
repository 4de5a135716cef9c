package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"findash/internal/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSVTwiceDeduplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := writeCSV(t, `date,description,category,account,amount
2024-01-05,Salary,Income,Checking,4200.00
2024-01-06,Supermarket,Groceries,Checking,-320.50
2024-01-09,Dinner,Dining,Checking,-45.00
`)

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 3, imported)
	require.Equal(t, 0, skipped)

	imported, skipped, err = svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 0, imported)
	require.Equal(t, 3, skipped)

	// Balances applied exactly once
	require.InDelta(t, 4200-320.50-45, accountBalance(t, svc, "Checking"), 1e-9)

	txs, err := svc.Transactions(ctx, "2024-01", "")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, core.Income, txs[2].Type)  // 4200 on the 5th
	require.Equal(t, core.Expense, txs[1].Type) // -320.50 on the 6th
	require.InDelta(t, -320.50, txs[1].Amount, 1e-9)
}

func TestImportCSVDedupHandlesSubCentAmounts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// 1.005 sits just below the half cent as a float64; the dedup key must
	// round the stored value, not the exact decimal, or the second import
	// would not recognize the row.
	path := writeCSV(t, `date,description,category,account,amount
2024-01-05,Fuel,Transport,Checking,1.005
`)

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Equal(t, 0, skipped)

	imported, skipped, err = svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 0, imported)
	require.Equal(t, 1, skipped)
}

func TestImportCSVDedupWithinSingleCall(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := writeCSV(t, `date,description,category,account,amount
2024-01-05,Coffee,Dining,Checking,-4.50
2024-01-05,Coffee,Dining,Checking,-4.50
`)

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Equal(t, 1, skipped)
}

func TestImportCSVColumnOrderAndExtras(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := writeCSV(t, `note,amount,account,category,description,date
ignored,-12.00,Checking,Dining,Lunch,2024-02-01
`)

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Equal(t, 0, skipped)

	txs, err := svc.Transactions(ctx, "2024-02", "")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "Lunch", txs[0].Description)
	require.InDelta(t, -12, txs[0].Amount, 1e-9)
}

func TestImportCSVMissingColumns(t *testing.T) {
	svc := newTestService(t)
	path := writeCSV(t, "date,description,amount\n2024-01-05,Salary,100\n")

	_, _, err := svc.ImportCSV(context.Background(), path)
	require.True(t, core.IsValidation(err), "expected validation error, got %v", err)
	require.ErrorContains(t, err, "account")
	require.ErrorContains(t, err, "category")
}

func TestImportCSVFailsFastOnMalformedRowButKeepsPriorRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := writeCSV(t, `date,description,category,account,amount
2024-01-05,Salary,Income,Checking,4200.00
not-a-date,Broken,Misc,Checking,-1.00
2024-01-09,Never Reached,Dining,Checking,-45.00
`)

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.Error(t, err)
	require.True(t, core.IsValidation(err))
	require.ErrorContains(t, err, "line 3")
	require.Equal(t, 1, imported)
	require.Equal(t, 0, skipped)

	// The row accepted before the failure stays committed, with its balance
	txs, err := svc.Transactions(ctx, "2024-01", "")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.InDelta(t, 4200, accountBalance(t, svc, "Checking"), 1e-9)
}

func TestImportCSVRejectsEmptyTextFields(t *testing.T) {
	svc := newTestService(t)
	path := writeCSV(t, `date,description,category,account,amount
2024-01-05,,Income,Checking,100
`)

	_, _, err := svc.ImportCSV(context.Background(), path)
	require.True(t, core.IsValidation(err))
	require.ErrorContains(t, err, "line 2")
}

func TestImportCSVMissingFile(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.ImportCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.True(t, core.IsNotFound(err), "expected NotFoundError, got %v", err)
}

func TestImportCSVToleratesBOM(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := writeCSV(t, "\uFEFFdate,description,category,account,amount\n2024-01-05,Salary,Income,Checking,100\n")

	imported, skipped, err := svc.ImportCSV(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Equal(t, 0, skipped)
}
