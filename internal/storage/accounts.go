package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"findash/internal/core"
)

// ListAccounts returns all accounts ordered by kind then name.
func (q *Queries) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, kind, balance FROM accounts ORDER BY kind, name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAccountNames returns account names in alphabetical order.
func (q *Queries) ListAccountNames(ctx context.Context) ([]string, error) {
	return q.stringColumn(ctx, `SELECT name FROM accounts ORDER BY name`)
}

// GetAccountByName returns nil (no error) when no account has that name.
func (q *Queries) GetAccountByName(ctx context.Context, name string) (*core.Account, error) {
	var a core.Account
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, kind, balance FROM accounts WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &a.Kind, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return &a, nil
}

// EnsureAccount creates the account with a zero balance if it does not exist
// yet. The conflict clause makes concurrent provisioning of the same name a
// no-op, so this is safe to run inside any unit of work.
func (q *Queries) EnsureAccount(ctx context.Context, name, kind string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts(name, kind, balance) VALUES(?, ?, 0)
		 ON CONFLICT(name) DO NOTHING`, name, kind)
	if err != nil {
		return fmt.Errorf("ensure account: %w", err)
	}
	return nil
}

// AdjustBalance applies a signed delta to the named account's balance,
// provisioning the account first if needed.
func (q *Queries) AdjustBalance(ctx context.Context, name string, delta float64) error {
	if err := q.EnsureAccount(ctx, name, core.DefaultAccountKind); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE name = ?`, delta, name)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}

func (q *Queries) stringColumn(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, rows.Err()
}
