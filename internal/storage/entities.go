package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"financas/internal/core"
)

// ListAccounts returns accounts ordered by name.
func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, balance, currency, created_at, updated_at FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a                    core.Account
			accType              string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&a.ID, &a.Name, &accType, &a.Balance, &a.Currency, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(accType)
		a.CreatedAt = parseTimestamp(createdAt)
		a.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) InsertAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	a.ID = uuid.NewString()
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO accounts (id, name, type, balance, currency) VALUES (?, ?, ?, ?, ?) RETURNING created_at, updated_at"),
		a.ID, a.Name, string(a.Type), a.Balance, a.Currency).Scan(&createdAt, &updatedAt)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	a.UpdatedAt = parseTimestamp(updatedAt)
	return a, nil
}

// ListGoals returns goals with the nearest deadline first; goals without a
// deadline come last.
func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, target_amount, current_amount, deadline, status, created_at, updated_at FROM goals "+
			"ORDER BY CASE WHEN deadline = '' THEN 1 ELSE 0 END, deadline, name")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g                    core.Goal
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Status = core.GoalStatus(status)
		g.CreatedAt = parseTimestamp(createdAt)
		g.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	g.ID = uuid.NewString()
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO goals (id, name, target_amount, current_amount, deadline, status) VALUES (?, ?, ?, ?, ?, ?) RETURNING created_at, updated_at"),
		g.ID, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, string(g.Status)).Scan(&createdAt, &updatedAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.CreatedAt = parseTimestamp(createdAt)
	g.UpdatedAt = parseTimestamp(updatedAt)
	return g, nil
}

func (r *Repository) ListCompanies(ctx context.Context) ([]core.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, category, contact, notes, created_at, updated_at FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []core.Company
	for rows.Next() {
		var (
			c                    core.Company
			createdAt, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Contact, &c.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.CreatedAt = parseTimestamp(createdAt)
		c.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) InsertCompany(ctx context.Context, c core.Company) (core.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Company{}, err
	}

	c.ID = uuid.NewString()
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO companies (id, name, category, contact, notes) VALUES (?, ?, ?, ?, ?) RETURNING created_at, updated_at"),
		c.ID, c.Name, c.Category, c.Contact, c.Notes).Scan(&createdAt, &updatedAt)
	if err != nil {
		return core.Company{}, fmt.Errorf("insert company: %w", err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return c, nil
}
