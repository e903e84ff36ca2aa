// Package sqlite serves the ledger from a SQLite database. The default DSN
// is an in-memory shared-cache database seeded from the sample dataset at
// startup, so nothing survives a restart.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"parishfinance/internal/core"
	"parishfinance/internal/sample"

	_ "modernc.org/sqlite"
)

const DefaultDSN = "file:parish?mode=memory&cache=shared"

type Store struct {
	db *sql.DB
}

// Open connects to dsn, applies migrations and seeds the sample dataset
// when the ledger is empty.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Shared-cache memory databases lock per connection; one is enough for a read-mostly ledger.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := New(db)
	seeded, err := s.SeedIfEmpty(ctx, sample.Load())
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "SQLite ledger ready", "dsn", dsn, "seeded", seeded)

	return s, nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SeedIfEmpty inserts ds when the income table has no rows. It reports
// whether anything was inserted.
func (s *Store) SeedIfEmpty(ctx context.Context, ds sample.Dataset) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM income_entries`).Scan(&n); err != nil {
		return false, fmt.Errorf("count income entries: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Seed(ctx, ds); err != nil {
		return false, err
	}
	return true, nil
}

// Seed inserts ds in a single transaction.
func (s *Store) Seed(ctx context.Context, ds sample.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for i, name := range ds.Categories.Income {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (kind, name, position) VALUES ('income', ?, ?)`, name, i); err != nil {
			return fmt.Errorf("seed income category %q: %w", name, err)
		}
	}
	for i, name := range ds.Categories.Expense {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories (kind, name, position) VALUES ('expense', ?, ?)`, name, i); err != nil {
			return fmt.Errorf("seed expense category %q: %w", name, err)
		}
	}
	for _, e := range ds.Income {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO income_entries (id, entry_date, category, source, amount_cents, description, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Date.ISO(), e.Category, e.Source, e.Amount.Cents, e.Description, e.CreatedBy); err != nil {
			return fmt.Errorf("seed income %d: %w", e.ID, err)
		}
	}
	for _, e := range ds.Expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_entries (id, entry_date, category, vendor, amount_cents, description, status, created_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Date.ISO(), e.Category, e.Vendor, e.Amount.Cents, e.Description, string(e.Status), e.CreatedBy); err != nil {
			return fmt.Errorf("seed expense %d: %w", e.ID, err)
		}
	}
	for _, d := range ds.Donors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO donors (id, name, email, phone, address, join_date, total_donations_cents, last_donation, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, d.Email, d.Phone, d.Address, d.JoinDate.ISO(), d.TotalDonations.Cents, d.LastDonation.ISO(), string(d.Status)); err != nil {
			return fmt.Errorf("seed donor %d: %w", d.ID, err)
		}
	}
	for _, u := range ds.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, role, status) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.Name, u.Email, u.Role, string(u.Status)); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	for _, m := range ds.Months {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO month_totals (month, income_cents, expenses_cents) VALUES (?, ?, ?)`,
			m.Month.ISO(), m.Income.Cents, m.Expenses.Cents); err != nil {
			return fmt.Errorf("seed month %s: %w", m.Month.ISO(), err)
		}
	}
	h := ds.Highlights
	for key, value := range map[string]float64{
		"registered_donors":   float64(h.RegisteredDonors),
		"income_change_pct":   h.IncomeChangePct,
		"expenses_change_pct": h.ExpensesChangePct,
		"net_change_pct":      h.NetChangePct,
		"donors_change_pct":   h.DonorsChangePct,
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO highlights (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("seed highlight %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func (s *Store) ListIncome(ctx context.Context) ([]core.IncomeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_date, category, source, amount_cents, description, created_by
		   FROM income_entries ORDER BY entry_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeEntry
	for rows.Next() {
		var (
			e    core.IncomeEntry
			date string
		)
		if err := rows.Scan(&e.ID, &date, &e.Category, &e.Source, &e.Amount.Cents, &e.Description, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("income %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income: %w", err)
	}
	return out, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entry_date, category, vendor, amount_cents, description, status, created_by
		   FROM expense_entries ORDER BY entry_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		var (
			e            core.ExpenseEntry
			date, status string
		)
		if err := rows.Scan(&e.ID, &date, &e.Category, &e.Vendor, &e.Amount.Cents, &e.Description, &status, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		if e.Status, err = core.ParseExpenseStatus(status); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Store) ListDonors(ctx context.Context) ([]core.Donor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, address, join_date, total_donations_cents, last_donation, status
		   FROM donors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query donors: %w", err)
	}
	defer rows.Close()

	var out []core.Donor
	for rows.Next() {
		var (
			d                      core.Donor
			joined, last, status string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Address, &joined, &d.TotalDonations.Cents, &last, &status); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		if d.JoinDate, err = parseDate(joined); err != nil {
			return nil, fmt.Errorf("donor %d join date: %w", d.ID, err)
		}
		if d.LastDonation, err = parseDate(last); err != nil {
			return nil, fmt.Errorf("donor %d last donation: %w", d.ID, err)
		}
		if d.Status, err = core.ParseDonorStatus(status); err != nil {
			return nil, fmt.Errorf("donor %d: %w", d.ID, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donors: %w", err)
	}
	return out, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, status FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var (
			u      core.User
			status string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &status); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.Status, err = core.ParseUserStatus(status); err != nil {
			return nil, fmt.Errorf("user %d: %w", u.ID, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *Store) Categories(ctx context.Context) (core.Categories, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, name FROM categories ORDER BY kind, position`)
	if err != nil {
		return core.Categories{}, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats core.Categories
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			return core.Categories{}, fmt.Errorf("scan category: %w", err)
		}
		switch kind {
		case "income":
			cats.Income = append(cats.Income, name)
		case "expense":
			cats.Expense = append(cats.Expense, name)
		}
	}
	if err := rows.Err(); err != nil {
		return core.Categories{}, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

func (s *Store) MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month, income_cents, expenses_cents FROM month_totals ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("query month totals: %w", err)
	}
	defer rows.Close()

	var out []core.MonthTotal
	for rows.Next() {
		var (
			m     core.MonthTotal
			month string
		)
		if err := rows.Scan(&month, &m.Income.Cents, &m.Expenses.Cents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		if m.Month, err = parseDate(month); err != nil {
			return nil, fmt.Errorf("month total %s: %w", month, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month totals: %w", err)
	}
	return out, nil
}

func (s *Store) Highlights(ctx context.Context) (core.Highlights, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM highlights`)
	if err != nil {
		return core.Highlights{}, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()

	var h core.Highlights
	for rows.Next() {
		var (
			key   string
			value float64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return core.Highlights{}, fmt.Errorf("scan highlight: %w", err)
		}
		switch key {
		case "registered_donors":
			h.RegisteredDonors = int(value)
		case "income_change_pct":
			h.IncomeChangePct = value
		case "expenses_change_pct":
			h.ExpensesChangePct = value
		case "net_change_pct":
			h.NetChangePct = value
		case "donors_change_pct":
			h.DonorsChangePct = value
		}
	}
	if err := rows.Err(); err != nil {
		return core.Highlights{}, fmt.Errorf("iterate highlights: %w", err)
	}
	return h, nil
}

// parseDate accepts an empty string as the zero date.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
