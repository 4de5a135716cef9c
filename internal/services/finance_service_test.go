package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"findash/internal/core"
	"findash/internal/storage"
)

func newTestService(t *testing.T) *FinanceService {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "finance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewFinanceService(store)
}

// seedAccount creates an account with an opening balance, the way first-run
// setup would.
func seedAccount(t *testing.T, svc *FinanceService, name, kind string, balance float64) {
	t.Helper()
	ctx := context.Background()
	q := svc.store.Queries()
	require.NoError(t, q.EnsureAccount(ctx, name, kind))
	require.NoError(t, q.AdjustBalance(ctx, name, balance))
}

func accountBalance(t *testing.T, svc *FinanceService, name string) float64 {
	t.Helper()
	accounts, err := svc.Accounts(context.Background())
	require.NoError(t, err)
	for _, a := range accounts {
		if a.Name == name {
			return a.Balance
		}
	}
	t.Fatalf("account %q not found", name)
	return 0
}

func TestAddThenDeleteTransactionRestoresBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)

	id, err := svc.AddTransaction(ctx, TransactionInput{
		Date:        "2024-01-05",
		Description: "Pay",
		Category:    "Income",
		Account:     "Checking",
		Type:        "income",
		Amount:      500,
	})
	require.NoError(t, err)
	require.InDelta(t, 1500, accountBalance(t, svc, "Checking"), 1e-9)

	require.NoError(t, svc.DeleteTransaction(ctx, id))
	require.InDelta(t, 1000, accountBalance(t, svc, "Checking"), 1e-9)
}

func TestAddTransactionNormalization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Blank fields fall back to sentinels, the expense amount is stored
	// negative regardless of input sign, and the account is provisioned
	// as an asset with a zero opening balance.
	id, err := svc.AddTransaction(ctx, TransactionInput{
		Date:   "2024-02-10",
		Type:   " EXPENSE ",
		Amount: 75,
	})
	require.NoError(t, err)

	txs, err := svc.Transactions(ctx, "2024-02", "")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, id, txs[0].ID)
	require.Equal(t, "Untitled", txs[0].Description)
	require.Equal(t, "Uncategorized", txs[0].Category)
	require.Equal(t, "Cash", txs[0].Account)
	require.Equal(t, core.Expense, txs[0].Type)
	require.InDelta(t, -75, txs[0].Amount, 1e-9)

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "Cash", accounts[0].Name)
	require.Equal(t, "Asset", accounts[0].Kind)
	require.InDelta(t, -75, accounts[0].Balance, 1e-9)
}

func TestAddTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-05", Type: "transfer", Amount: 10})
	require.True(t, core.IsValidation(err), "bad type should be a validation error, got %v", err)

	_, err = svc.AddTransaction(ctx, TransactionInput{Date: "05/01/2024", Type: "income", Amount: 10})
	require.True(t, core.IsValidation(err), "bad date should be a validation error, got %v", err)

	// Nothing committed, no account provisioned
	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestUpdateTransactionSameAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)

	id, err := svc.AddTransaction(ctx, TransactionInput{
		Date: "2024-01-05", Description: "Groceries", Category: "Groceries",
		Account: "Checking", Type: "expense", Amount: 100,
	})
	require.NoError(t, err)
	require.InDelta(t, 900, accountBalance(t, svc, "Checking"), 1e-9)

	require.NoError(t, svc.UpdateTransaction(ctx, id, TransactionInput{
		Date: "2024-01-06", Description: "Groceries", Category: "Groceries",
		Account: "Checking", Type: "expense", Amount: 250,
	}))
	require.InDelta(t, 750, accountBalance(t, svc, "Checking"), 1e-9)
}

func TestUpdateTransactionMovesBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)
	seedAccount(t, svc, "Savings", "Asset", 5000)

	id, err := svc.AddTransaction(ctx, TransactionInput{
		Date: "2024-01-05", Description: "Deposit", Category: "Income",
		Account: "Checking", Type: "income", Amount: 300,
	})
	require.NoError(t, err)
	require.InDelta(t, 1300, accountBalance(t, svc, "Checking"), 1e-9)

	require.NoError(t, svc.UpdateTransaction(ctx, id, TransactionInput{
		Date: "2024-01-05", Description: "Deposit", Category: "Income",
		Account: "Savings", Type: "income", Amount: 450,
	}))

	// Old account back to its seed, new one up by exactly the new amount
	require.InDelta(t, 1000, accountBalance(t, svc, "Checking"), 1e-9)
	require.InDelta(t, 5450, accountBalance(t, svc, "Savings"), 1e-9)
}

func TestUpdateTransactionTypeFlip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)

	id, err := svc.AddTransaction(ctx, TransactionInput{
		Date: "2024-01-05", Description: "Refund", Category: "Shopping",
		Account: "Checking", Type: "expense", Amount: 80,
	})
	require.NoError(t, err)
	require.InDelta(t, 920, accountBalance(t, svc, "Checking"), 1e-9)

	require.NoError(t, svc.UpdateTransaction(ctx, id, TransactionInput{
		Date: "2024-01-05", Description: "Refund", Category: "Shopping",
		Account: "Checking", Type: "income", Amount: 80,
	}))
	require.InDelta(t, 1080, accountBalance(t, svc, "Checking"), 1e-9)
}

func TestUpdateMissingTransactionIsNotFound(t *testing.T) {
	svc := newTestService(t)
	err := svc.UpdateTransaction(context.Background(), 9999, TransactionInput{
		Date: "2024-01-05", Type: "income", Amount: 10,
	})
	require.True(t, core.IsNotFound(err), "expected NotFoundError, got %v", err)
}

func TestDeleteMissingTransactionIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedAccount(t, svc, "Checking", "Asset", 1000)

	require.NoError(t, svc.DeleteTransaction(ctx, 9999))
	require.InDelta(t, 1000, accountBalance(t, svc, "Checking"), 1e-9)
}

// The central invariant: after any sequence of mutations, every account's
// balance equals its opening balance plus the signed sum of the transactions
// referencing it.
func TestBalanceInvariantUnderMixedMutations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seeds := map[string]float64{"Checking": 1000, "Savings": 5000}
	seedAccount(t, svc, "Checking", "Asset", seeds["Checking"])
	seedAccount(t, svc, "Savings", "Asset", seeds["Savings"])

	id1, err := svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-02", Description: "Salary", Category: "Income", Account: "Checking", Type: "income", Amount: 4000})
	require.NoError(t, err)
	id2, err := svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-03", Description: "Rent", Category: "Housing", Account: "Checking", Type: "expense", Amount: 1400})
	require.NoError(t, err)
	_, err = svc.AddTransaction(ctx, TransactionInput{Date: "2024-01-04", Description: "Transfer in", Category: "Income", Account: "Savings", Type: "income", Amount: 500})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTransaction(ctx, id2, TransactionInput{Date: "2024-01-03", Description: "Rent", Category: "Housing", Account: "Savings", Type: "expense", Amount: 1500}))
	require.NoError(t, svc.DeleteTransaction(ctx, id1))

	sums := map[string]float64{}
	txs, err := svc.Transactions(ctx, "2024-01", "")
	require.NoError(t, err)
	for _, tx := range txs {
		sums[tx.Account] += tx.Amount
	}

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	for _, a := range accounts {
		require.InDelta(t, seeds[a.Name]+sums[a.Name], a.Balance, 1e-9,
			"account %s violates the balance invariant", a.Name)
	}
}

func TestSetBudgetValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.True(t, core.IsValidation(svc.SetBudget(ctx, "2024-01", "Groceries", -5)))
	require.True(t, core.IsValidation(svc.SetBudget(ctx, "2024-01", "   ", 100)))
	require.True(t, core.IsValidation(svc.SetBudget(ctx, "January", "Groceries", 100)))
	require.NoError(t, svc.SetBudget(ctx, "2024-01", "Groceries", 400))

	// Upsert replaces the planned amount for the same (month, category)
	require.NoError(t, svc.SetBudget(ctx, "2024-01", "Groceries", 450))
	rows, err := svc.BudgetRows(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 450, rows[0].Planned, 1e-9)
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddGoal(ctx, GoalInput{Name: "", Target: 100})
	require.True(t, core.IsValidation(err))
	_, err = svc.AddGoal(ctx, GoalInput{Name: "Car", Target: 0})
	require.True(t, core.IsValidation(err))
	_, err = svc.AddGoal(ctx, GoalInput{Name: "Car", Target: 100, Current: -1})
	require.True(t, core.IsValidation(err))
	_, err = svc.AddGoal(ctx, GoalInput{Name: "Car", Target: 100, Deadline: "soon"})
	require.True(t, core.IsValidation(err))

	id, err := svc.AddGoal(ctx, GoalInput{Name: "Emergency Fund", Target: 20000, Current: 15000, Deadline: "2025-12-31"})
	require.NoError(t, err)
	id2, err := svc.AddGoal(ctx, GoalInput{Name: "Vacation", Target: 3000, Current: 500})
	require.NoError(t, err)

	goals, err := svc.Goals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	// Most recently created first
	require.Equal(t, id2, goals[0].ID)
	require.Equal(t, "", goals[0].Deadline)
	require.Equal(t, "2025-12-31", goals[1].Deadline)

	summary, err := svc.GoalsSummary(ctx)
	require.NoError(t, err)
	require.InDelta(t, 23000, summary.TotalTarget, 1e-9)
	require.InDelta(t, 15500, summary.TotalCurrent, 1e-9)
	require.InDelta(t, 15500.0/23000.0, summary.Progress, 1e-9)

	require.True(t, core.IsNotFound(svc.UpdateGoal(ctx, 9999, GoalInput{Name: "x", Target: 1})))
	require.NoError(t, svc.UpdateGoal(ctx, id, GoalInput{Name: "Emergency Fund", Target: 25000, Current: 16000}))
	require.NoError(t, svc.DeleteGoal(ctx, id2))
	require.NoError(t, svc.DeleteGoal(ctx, id2)) // idempotent

	goals, err = svc.Goals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.InDelta(t, 25000, goals[0].Target, 1e-9)
}

func TestGoalsSummaryEmpty(t *testing.T) {
	svc := newTestService(t)
	summary, err := svc.GoalsSummary(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Progress)
	require.Zero(t, summary.TotalTarget)
}
