package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"findash/internal/core"
	"findash/internal/storage"
)

// FinanceService is the ledger engine. It owns the rule that an account's
// balance equals its opening balance plus the signed sum of every
// transaction posted against it, and keeps that invariant under every
// mutation path by pairing each record write with its balance delta inside
// one unit of work.
type FinanceService struct {
	store *storage.Store
}

func NewFinanceService(store *storage.Store) *FinanceService {
	return &FinanceService{store: store}
}

// TransactionInput carries the caller-supplied fields of a transaction
// before normalization.
type TransactionInput struct {
	Date        string
	Description string
	Category    string
	Account     string
	Type        string
	Amount      float64
}

// normalize validates and normalizes the input: the type is lowercased and
// checked, the amount abs'd and re-signed by type, blank text fields fall
// back to their sentinels, and the date must be strict ISO.
func (in TransactionInput) normalize() (core.Transaction, error) {
	txType, err := core.ParseTxType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := core.ParseDate(in.Date); err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Date:        in.Date,
		Description: fallback(in.Description, core.DefaultDescription),
		Category:    fallback(in.Category, core.DefaultCategory),
		Account:     fallback(in.Account, core.DefaultAccount),
		Amount:      core.SignAmount(txType, in.Amount),
		Type:        txType,
	}, nil
}

// AddTransaction persists a transaction and applies its signed amount to the
// target account, creating the account if this is its first reference. Both
// writes commit or neither does.
func (s *FinanceService) AddTransaction(ctx context.Context, in TransactionInput) (int64, error) {
	t, err := in.normalize()
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		id, err = q.CreateTransaction(ctx, t)
		if err != nil {
			return err
		}
		return q.AdjustBalance(ctx, t.Account, t.Amount)
	})
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", id, "account", t.Account, "amount", t.Amount, "type", string(t.Type))
	return id, nil
}

// UpdateTransaction rewrites the transaction and compensates balances: a
// single delta when the account is unchanged, otherwise the old amount comes
// off the old account and the full new amount goes onto the new one.
func (s *FinanceService) UpdateTransaction(ctx context.Context, id int64, in TransactionInput) error {
	t, err := in.normalize()
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return core.NotFound("transaction", fmt.Sprint(id))
		}

		if err := q.UpdateTransaction(ctx, id, t); err != nil {
			return err
		}

		if old.Account == t.Account {
			return q.AdjustBalance(ctx, t.Account, t.Amount-old.Amount)
		}
		if err := q.AdjustBalance(ctx, old.Account, -old.Amount); err != nil {
			return err
		}
		return q.AdjustBalance(ctx, t.Account, t.Amount)
	})
	if err != nil {
		if core.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("update transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id, "account", t.Account, "amount", t.Amount)
	return nil
}

// DeleteTransaction removes the record and backs its amount out of the
// account balance. Deleting an id that does not exist is a no-op, not an
// error.
func (s *FinanceService) DeleteTransaction(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if err := q.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return q.AdjustBalance(ctx, existing.Account, -existing.Amount)
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// Transactions lists the month's transactions, newest first, optionally
// filtered by search.
func (s *FinanceService) Transactions(ctx context.Context, month, search string) ([]core.Transaction, error) {
	return s.store.Queries().ListTransactionsByMonth(ctx, month, search)
}

// RecentTransactions is Transactions with a row limit.
func (s *FinanceService) RecentTransactions(ctx context.Context, month, search string, limit int) ([]core.Transaction, error) {
	return s.store.Queries().ListRecentTransactions(ctx, month, search, limit)
}

// Accounts lists all accounts ordered by kind then name.
func (s *FinanceService) Accounts(ctx context.Context) ([]core.Account, error) {
	return s.store.Queries().ListAccounts(ctx)
}

// Categories lists every category seen in the transaction log.
func (s *FinanceService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Queries().DistinctCategories(ctx)
}

// AccountNames merges account-table names with any account name referenced
// by a transaction, sorted alphabetically.
func (s *FinanceService) AccountNames(ctx context.Context) ([]string, error) {
	q := s.store.Queries()
	fromAccounts, err := q.ListAccountNames(ctx)
	if err != nil {
		return nil, err
	}
	fromTxs, err := q.DistinctAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return sortedUnion(fromAccounts, fromTxs), nil
}

// SetBudget upserts the planned amount for (month, category).
func (s *FinanceService) SetBudget(ctx context.Context, month, category string, planned float64) error {
	if planned < 0 {
		return core.Validationf("budget amount cannot be negative")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return core.Validationf("category is required")
	}
	if _, err := core.ParseMonth(month); err != nil {
		return err
	}

	if err := s.store.Queries().UpsertBudget(ctx, month, category, planned); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set", "month", month, "category", category, "planned", planned)
	return nil
}

// GoalInput carries caller-supplied goal fields.
type GoalInput struct {
	Name     string
	Target   float64
	Current  float64
	Deadline string // optional, "YYYY-MM-DD" when set
}

func (in GoalInput) normalize() (core.Goal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Goal{}, core.Validationf("goal name is required")
	}
	if in.Target <= 0 {
		return core.Goal{}, core.Validationf("target must be greater than zero")
	}
	if in.Current < 0 {
		return core.Goal{}, core.Validationf("current amount cannot be negative")
	}
	deadline := strings.TrimSpace(in.Deadline)
	if deadline != "" {
		if _, err := core.ParseDate(deadline); err != nil {
			return core.Goal{}, err
		}
	}
	return core.Goal{Name: name, Target: in.Target, Current: in.Current, Deadline: deadline}, nil
}

// AddGoal creates a savings goal and returns its id.
func (s *FinanceService) AddGoal(ctx context.Context, in GoalInput) (int64, error) {
	g, err := in.normalize()
	if err != nil {
		return 0, err
	}
	id, err := s.store.Queries().CreateGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("add goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal added", "id", id, "name", g.Name, "target", g.Target)
	return id, nil
}

// UpdateGoal rewrites a goal; a missing id is an error, unlike delete.
func (s *FinanceService) UpdateGoal(ctx context.Context, id int64, in GoalInput) error {
	g, err := in.normalize()
	if err != nil {
		return err
	}

	q := s.store.Queries()
	existing, err := q.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return core.NotFound("goal", fmt.Sprint(id))
	}
	if err := q.UpdateGoal(ctx, id, g); err != nil {
		return fmt.Errorf("update goal %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Goal updated", "id", id, "name", g.Name)
	return nil
}

// DeleteGoal removes a goal; a missing id is a no-op.
func (s *FinanceService) DeleteGoal(ctx context.Context, id int64) error {
	if err := s.store.Queries().DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// Goals lists all goals, most recently created first.
func (s *FinanceService) Goals(ctx context.Context) ([]core.Goal, error) {
	return s.store.Queries().ListGoals(ctx)
}

// BackupDatabase snapshots the store to dest and returns the path written.
func (s *FinanceService) BackupDatabase(ctx context.Context, dest string) (string, error) {
	return s.store.Backup(ctx, dest)
}

// RestoreDatabase replaces the live store with the backup at src.
func (s *FinanceService) RestoreDatabase(ctx context.Context, src string) error {
	return s.store.Restore(ctx, src)
}

// DatabasePath reports where the store lives on disk.
func (s *FinanceService) DatabasePath() string {
	return s.store.Path()
}

func fallback(s, def string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return def
}

func sortedUnion(lists ...[]string) []string {
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, s := range list {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
