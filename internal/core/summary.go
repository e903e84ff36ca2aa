package core

import "sort"

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
	Count  int
}

// Series is one chart line: a label per point and a value in whole dollars.
type Series struct {
	Name   string
	Labels []string
	Values []int64
}

// StatCard is one headline figure on the dashboard. Favorable decides the
// colour of the month-over-month change.
type StatCard struct {
	Title     string
	Value     string
	ChangePct float64
	Favorable bool
	Icon      string
}

// Transaction is an income or expense line in the recent activity list.
type Transaction struct {
	Date   Date
	Label  string
	Amount Money
	Income bool
}

// Dashboard groups the headline figures and the chart series.
type Dashboard struct {
	Cards    []StatCard
	Income   Series
	Expenses Series
	Net      Series
}

// DonorSummary holds the figures shown above the donors table.
type DonorSummary struct {
	Total          int
	Active         int
	TotalDonations Money
	Average        Money
}

func SumIncome(entries []IncomeEntry) Money {
	var total int64
	for _, e := range entries {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}

func SumExpenses(entries []ExpenseEntry) Money {
	var total int64
	for _, e := range entries {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}

// CountByExpenseStatus counts expenses per status.
func CountByExpenseStatus(entries []ExpenseEntry) map[ExpenseStatus]int {
	out := make(map[ExpenseStatus]int, 3)
	for _, e := range entries {
		out[e.Status]++
	}
	return out
}

// SummarizeDonors totals donations and averages them over all donors.
func SummarizeDonors(donors []Donor) DonorSummary {
	s := DonorSummary{Total: len(donors)}
	for _, d := range donors {
		if d.Status == DonorActive {
			s.Active++
		}
		s.TotalDonations.Cents += d.TotalDonations.Cents
	}
	if s.Total > 0 {
		s.Average.Cents = s.TotalDonations.Cents / int64(s.Total)
	}
	return s
}

// IncomeByCategory aggregates income, largest amount first.
func IncomeByCategory(entries []IncomeEntry) []CategoryAmount {
	acc := map[string]*CategoryAmount{}
	for _, e := range entries {
		add(acc, e.Category, e.Amount.Cents)
	}
	return sortedAmounts(acc)
}

// ExpensesByCategory aggregates expenses, largest amount first.
func ExpensesByCategory(entries []ExpenseEntry) []CategoryAmount {
	acc := map[string]*CategoryAmount{}
	for _, e := range entries {
		add(acc, e.Category, e.Amount.Cents)
	}
	return sortedAmounts(acc)
}

func add(acc map[string]*CategoryAmount, name string, cents int64) {
	ca, ok := acc[name]
	if !ok {
		ca = &CategoryAmount{Name: name}
		acc[name] = ca
	}
	ca.Amount.Cents += cents
	ca.Count++
}

func sortedAmounts(acc map[string]*CategoryAmount) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(acc))
	for _, ca := range acc {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FilterIncome keeps entries dated within [from, to].
func FilterIncome(entries []IncomeEntry, from, to Date) []IncomeEntry {
	var out []IncomeEntry
	for _, e := range entries {
		if e.Date.Within(from, to) {
			out = append(out, e)
		}
	}
	return out
}

// FilterExpenses keeps entries dated within [from, to].
func FilterExpenses(entries []ExpenseEntry, from, to Date) []ExpenseEntry {
	var out []ExpenseEntry
	for _, e := range entries {
		if e.Date.Within(from, to) {
			out = append(out, e)
		}
	}
	return out
}

// Difference subtracts b from a point by point. Labels come from a.
func Difference(name string, a, b Series) Series {
	out := Series{Name: name, Labels: append([]string(nil), a.Labels...)}
	for i, v := range a.Values {
		var w int64
		if i < len(b.Values) {
			w = b.Values[i]
		}
		out.Values = append(out.Values, v-w)
	}
	return out
}

// RecentTransactions merges income and expenses, newest first, and keeps n.
func RecentTransactions(income []IncomeEntry, expenses []ExpenseEntry, n int) []Transaction {
	out := make([]Transaction, 0, len(income)+len(expenses))
	for _, e := range income {
		out = append(out, Transaction{Date: e.Date, Label: e.Category, Amount: e.Amount, Income: true})
	}
	for _, e := range expenses {
		out = append(out, Transaction{Date: e.Date, Label: e.Category, Amount: e.Amount})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Sum adds all values of the series.
func (s Series) Sum() int64 {
	var total int64
	for _, v := range s.Values {
		total += v
	}
	return total
}
