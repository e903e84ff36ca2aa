package memory

import (
	"context"
	"strings"
	"sync"

	"parishfinance/internal/core"
	"parishfinance/internal/sample"
)

// Store serves the ledger from slices held in memory.
type Store struct {
	mu         sync.RWMutex
	categories core.Categories
	income     []core.IncomeEntry
	expenses   []core.ExpenseEntry
	donors     []core.Donor
	users      []core.User
	months     []core.MonthTotal
	highlights core.Highlights
}

// New builds a store from ds. Category lists are trimmed and de-duplicated.
func New(ds sample.Dataset) *Store {
	return &Store{
		categories: core.Categories{
			Income:  dedupe(ds.Categories.Income),
			Expense: dedupe(ds.Categories.Expense),
		},
		income:     ds.Income,
		expenses:   ds.Expenses,
		donors:     ds.Donors,
		users:      ds.Users,
		months:     ds.Months,
		highlights: ds.Highlights,
	}
}

// NewSeeded builds a store from the bundled sample dataset.
func NewSeeded() *Store {
	return New(sample.Load())
}

func (s *Store) ListIncome(_ context.Context) ([]core.IncomeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.IncomeEntry(nil), s.income...), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ExpenseEntry(nil), s.expenses...), nil
}

func (s *Store) ListDonors(_ context.Context) ([]core.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Donor(nil), s.donors...), nil
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.User(nil), s.users...), nil
}

// Categories returns income and expense categories.
func (s *Store) Categories(_ context.Context) (core.Categories, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Categories{
		Income:  append([]string(nil), s.categories.Income...),
		Expense: append([]string(nil), s.categories.Expense...),
	}, nil
}

func (s *Store) MonthlyTotals(_ context.Context) ([]core.MonthTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.MonthTotal(nil), s.months...), nil
}

func (s *Store) Highlights(_ context.Context) (core.Highlights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlights, nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
