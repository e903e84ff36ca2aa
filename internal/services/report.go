package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"parishfinance/internal/cache"
	"parishfinance/internal/core"
	"parishfinance/internal/metrics"
	"parishfinance/internal/ports"
	"parishfinance/internal/shell"
)

var ErrInvalidRange = errors.New("report start date is after end date")

// Default reporting window, matching the bundled ledger.
var (
	DefaultFrom = core.NewDate(2025, 1, 1)
	DefaultTo   = core.NewDate(2025, 6, 30)
)

const recentTransactionCount = 5

// Report is a generated financial report. Series values are whole dollars.
// The ledger keeps monthly totals, so every figure covers whole months:
// PeriodFrom and PeriodTo widen From and To to month boundaries.
type Report struct {
	Kind               string
	Title              string
	From               core.Date
	To                 core.Date
	PeriodFrom         core.Date
	PeriodTo           core.Date
	TotalIncome        core.Money
	TotalExpenses      core.Money
	Income             core.Series
	Expenses           core.Series
	Net                core.Series
	IncomeByCategory   []core.CategoryAmount
	ExpensesByCategory []core.CategoryAmount
}

func (r Report) NetTotal() core.Money {
	return core.Money{Cents: r.TotalIncome.Cents - r.TotalExpenses.Cents}
}

// Overview is everything the dashboard renders.
type Overview struct {
	core.Dashboard
	ExpenseBreakdown []core.CategoryAmount
	Recent           []core.Transaction
}

// ReportService builds reports and the dashboard from the ledger. Results
// are cached; concurrent misses for the same key share one build.
type ReportService struct {
	ledger    ports.LedgerReader
	reports   *cache.LRUCache[Report]
	overviews *cache.LRUCache[Overview]
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewReportService(ledger ports.LedgerReader, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		ledger:    ledger,
		reports:   cache.NewLRUCache[Report](64, ttl),
		overviews: cache.NewLRUCache[Overview](1, ttl),
		metrics:   m,
		logger:    logger,
	}
}

// RegisterCaches adds the service's caches to a cleanup manager.
func (s *ReportService) RegisterCaches(m *cache.Manager) {
	m.Register("reports", s.reports)
	m.Register("overview", s.overviews)
}

// Title is the heading for a report kind.
func Title(kind string) string {
	return shell.Title(kind) + " Financial Report"
}

// Build generates the report of the given kind. Zero dates select the
// default window; only custom reports honour caller-supplied dates.
func (s *ReportService) Build(ctx context.Context, kind string, from, to core.Date) (Report, error) {
	switch kind {
	case shell.ReportMonthly, shell.ReportQuarterly, shell.ReportAnnual:
		from, to = DefaultFrom, DefaultTo
	case shell.ReportCustom:
		if from.IsZero() {
			from = DefaultFrom
		}
		if to.IsZero() {
			to = DefaultTo
		}
	default:
		return Report{}, fmt.Errorf("unknown report kind %q", kind)
	}
	if from.After(to.Time) {
		return Report{}, ErrInvalidRange
	}

	key := kind + "|" + from.ISO() + "|" + to.ISO()
	if r, ok := s.reports.Get(key); ok {
		s.metrics.CacheLookup(true)
		return r, nil
	}
	s.metrics.CacheLookup(false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		r, err := s.build(ctx, kind, from, to)
		if err != nil {
			return Report{}, err
		}
		s.reports.Set(key, r)
		return r, nil
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

type ledgerSnapshot struct {
	months     []core.MonthTotal
	income     []core.IncomeEntry
	expenses   []core.ExpenseEntry
	highlights core.Highlights
}

func (s *ReportService) snapshot(ctx context.Context) (ledgerSnapshot, error) {
	var snap ledgerSnapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.months, err = s.ledger.MonthlyTotals(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.income, err = s.ledger.ListIncome(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.expenses, err = s.ledger.ListExpenses(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.highlights, err = s.ledger.Highlights(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledgerSnapshot{}, fmt.Errorf("read ledger: %w", err)
	}
	return snap, nil
}

func (s *ReportService) build(ctx context.Context, kind string, from, to core.Date) (Report, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return Report{}, err
	}

	start, end := monthStart(from), monthEnd(to)
	var months []core.MonthTotal
	for _, m := range snap.months {
		if m.Month.Within(start, end) {
			months = append(months, m)
		}
	}

	r := Report{
		Kind:               kind,
		Title:              Title(kind),
		From:               from,
		To:                 to,
		PeriodFrom:         start,
		PeriodTo:           end,
		IncomeByCategory:   core.IncomeByCategory(core.FilterIncome(snap.income, start, end)),
		ExpensesByCategory: core.ExpensesByCategory(core.FilterExpenses(snap.expenses, start, end)),
	}
	for _, m := range months {
		r.TotalIncome.Cents += m.Income.Cents
		r.TotalExpenses.Cents += m.Expenses.Cents
	}

	labels, income, expenses := bucket(kind, months)
	r.Income = core.Series{Name: "Income", Labels: labels, Values: income}
	r.Expenses = core.Series{Name: "Expenses", Labels: labels, Values: expenses}
	r.Net = core.Difference("Net", r.Income, r.Expenses)

	s.logger.DebugContext(ctx, "Report built", "kind", kind, "from", from.ISO(), "to", to.ISO(), "months", len(months))
	return r, nil
}

// bucket groups month totals into chart points for the report kind.
func bucket(kind string, months []core.MonthTotal) (labels []string, income, expenses []int64) {
	keyOf := func(m core.MonthTotal) string {
		switch kind {
		case shell.ReportQuarterly:
			return "Q" + strconv.Itoa((m.Month.Month()-1)/3+1) + " " + strconv.Itoa(m.Month.Year())
		case shell.ReportAnnual:
			return strconv.Itoa(m.Month.Year())
		case shell.ReportCustom:
			return m.Month.Format("Jan 2006")
		default:
			return m.Month.Format("Jan")
		}
	}

	index := map[string]int{}
	for _, m := range months {
		k := keyOf(m)
		i, ok := index[k]
		if !ok {
			i = len(labels)
			index[k] = i
			labels = append(labels, k)
			income = append(income, 0)
			expenses = append(expenses, 0)
		}
		income[i] += m.Income.Cents / 100
		expenses[i] += m.Expenses.Cents / 100
	}
	return labels, income, expenses
}

func monthStart(d core.Date) core.Date {
	return core.NewDate(d.Year(), d.Month(), 1)
}

// monthEnd is the last day of d's month.
func monthEnd(d core.Date) core.Date {
	return core.NewDate(d.Year(), d.Month()+1, 0)
}

// Overview builds the dashboard figures.
func (s *ReportService) Overview(ctx context.Context) (Overview, error) {
	const key = "dashboard"
	if o, ok := s.overviews.Get(key); ok {
		s.metrics.CacheLookup(true)
		return o, nil
	}
	s.metrics.CacheLookup(false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		snap, err := s.snapshot(ctx)
		if err != nil {
			return Overview{}, err
		}
		o := buildOverview(snap)
		s.overviews.Set(key, o)
		return o, nil
	})
	if err != nil {
		return Overview{}, err
	}
	return v.(Overview), nil
}

func buildOverview(snap ledgerSnapshot) Overview {
	labels, income, expenses := bucket(shell.ReportMonthly, snap.months)
	incomeSeries := core.Series{Name: "Income", Labels: labels, Values: income}
	expenseSeries := core.Series{Name: "Expenses", Labels: labels, Values: expenses}
	net := core.Difference("Net", incomeSeries, expenseSeries)

	var totalIncome, totalExpenses int64
	for _, m := range snap.months {
		totalIncome += m.Income.Cents
		totalExpenses += m.Expenses.Cents
	}
	h := snap.highlights

	return Overview{
		Dashboard: core.Dashboard{
			Cards: []core.StatCard{
				{Title: "Total Income", Value: core.FormatUSDWhole(totalIncome), ChangePct: h.IncomeChangePct, Favorable: h.IncomeChangePct >= 0, Icon: "bi-cash-stack"},
				{Title: "Total Expenses", Value: core.FormatUSDWhole(totalExpenses), ChangePct: h.ExpensesChangePct, Favorable: h.ExpensesChangePct <= 0, Icon: "bi-credit-card"},
				{Title: "Net", Value: core.FormatUSDWhole(totalIncome - totalExpenses), ChangePct: h.NetChangePct, Favorable: h.NetChangePct >= 0, Icon: "bi-wallet2"},
				{Title: "Total Donors", Value: strconv.Itoa(h.RegisteredDonors), ChangePct: h.DonorsChangePct, Favorable: h.DonorsChangePct >= 0, Icon: "bi-people"},
			},
			Income:   incomeSeries,
			Expenses: expenseSeries,
			Net:      net,
		},
		ExpenseBreakdown: core.ExpensesByCategory(snap.expenses),
		Recent:           core.RecentTransactions(snap.income, snap.expenses, recentTransactionCount),
	}
}
