package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"findash/internal/core"
)

// CreateGoal inserts a goal and returns its id. An empty deadline is stored
// as NULL.
func (q *Queries) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO goals(name, target, current, deadline) VALUES(?, ?, ?, ?)`,
		g.Name, g.Target, g.Current, nullableString(g.Deadline))
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal id: %w", err)
	}
	return id, nil
}

func (q *Queries) UpdateGoal(ctx context.Context, id int64, g core.Goal) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target = ?, current = ?, deadline = ? WHERE id = ?`,
		g.Name, g.Target, g.Current, nullableString(g.Deadline), id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

func (q *Queries) DeleteGoal(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// GetGoal returns nil (no error) when the id does not exist.
func (q *Queries) GetGoal(ctx context.Context, id int64) (*core.Goal, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, name, target, current, deadline FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

// ListGoals returns all goals, most recently created first.
func (q *Queries) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, target, current, deadline FROM goals ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var g core.Goal
	var deadline sql.NullString
	if err := row.Scan(&g.ID, &g.Name, &g.Target, &g.Current, &deadline); err != nil {
		return core.Goal{}, err
	}
	g.Deadline = deadline.String
	return g, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
