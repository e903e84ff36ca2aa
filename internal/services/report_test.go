package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parishfinance/internal/core"
	"parishfinance/internal/metrics"
	"parishfinance/internal/ports"
	"parishfinance/internal/shell"
	"parishfinance/internal/storage/memory"
)

// countingLedger counts MonthlyTotals calls and can fail on demand.
type countingLedger struct {
	ports.LedgerReader
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (c *countingLedger) MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.LedgerReader.MonthlyTotals(ctx)
}

func newReportService(ledger ports.LedgerReader) *ReportService {
	return NewReportService(ledger, time.Minute, metrics.New(), nil)
}

func TestReportService_Monthly(t *testing.T) {
	r, err := newReportService(memory.NewSeeded()).Build(context.Background(), shell.ReportMonthly, core.Date{}, core.Date{})
	require.NoError(t, err)

	assert.Equal(t, "Monthly Financial Report", r.Title)
	assert.Equal(t, DefaultFrom, r.From)
	assert.Equal(t, DefaultTo, r.To)
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, r.Income.Labels)
	assert.Equal(t, []int64{12500, 13200, 15000, 14200, 16500, 17800}, r.Income.Values)
	assert.Equal(t, int64(8920000), r.TotalIncome.Cents)
	assert.Equal(t, int64(6160000), r.TotalExpenses.Cents)
	assert.Equal(t, int64(2760000), r.NetTotal().Cents)
	assert.Equal(t, int64(4000), r.Net.Values[0])

	require.NotEmpty(t, r.IncomeByCategory)
	assert.Equal(t, "Sunday Collection", r.IncomeByCategory[0].Name)
	assert.Equal(t, int64(621000), r.IncomeByCategory[0].Amount.Cents)
}

func TestReportService_Quarterly(t *testing.T) {
	r, err := newReportService(memory.NewSeeded()).Build(context.Background(), shell.ReportQuarterly, core.Date{}, core.Date{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1 2025", "Q2 2025"}, r.Income.Labels)
	assert.Equal(t, []int64{40700, 48500}, r.Income.Values)
	assert.Equal(t, []int64{27500, 34100}, r.Expenses.Values)
}

func TestReportService_Annual(t *testing.T) {
	r, err := newReportService(memory.NewSeeded()).Build(context.Background(), shell.ReportAnnual, core.NewDate(2020, 1, 1), core.NewDate(2020, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, DefaultFrom, r.From, "annual ignores caller dates")
	assert.Equal(t, []string{"2025"}, r.Income.Labels)
	assert.Equal(t, []int64{89200}, r.Income.Values)
}

func TestReportService_CustomRange(t *testing.T) {
	r, err := newReportService(memory.NewSeeded()).Build(context.Background(), shell.ReportCustom, core.NewDate(2025, 5, 15), core.NewDate(2025, 6, 10))
	require.NoError(t, err)

	assert.Equal(t, "Custom Financial Report", r.Title)
	assert.Equal(t, []string{"May 2025", "Jun 2025"}, r.Income.Labels)
	assert.Equal(t, int64(1650000+1780000), r.TotalIncome.Cents)
	assert.Equal(t, core.NewDate(2025, 5, 1), r.PeriodFrom)
	assert.Equal(t, core.NewDate(2025, 6, 30), r.PeriodTo)

	// The breakdown covers the same whole months as the totals.
	var cats []string
	for _, c := range r.ExpensesByCategory {
		cats = append(cats, c.Name)
	}
	assert.ElementsMatch(t, []string{"Utilities", "Staff Salaries", "Maintenance", "Office Supplies", "Ministry Activities"}, cats)
}

func TestMonthEnd(t *testing.T) {
	assert.Equal(t, core.NewDate(2025, 2, 28), monthEnd(core.NewDate(2025, 2, 10)))
	assert.Equal(t, core.NewDate(2024, 2, 29), monthEnd(core.NewDate(2024, 2, 1)))
	assert.Equal(t, core.NewDate(2025, 12, 31), monthEnd(core.NewDate(2025, 12, 31)))
}

func TestReportService_Errors(t *testing.T) {
	svc := newReportService(memory.NewSeeded())

	_, err := svc.Build(context.Background(), "weekly", core.Date{}, core.Date{})
	assert.Error(t, err)

	_, err = svc.Build(context.Background(), shell.ReportCustom, core.NewDate(2025, 6, 1), core.NewDate(2025, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)

	failing := &countingLedger{LedgerReader: memory.NewSeeded(), err: errors.New("disk gone")}
	_, err = newReportService(failing).Build(context.Background(), shell.ReportMonthly, core.Date{}, core.Date{})
	assert.ErrorContains(t, err, "read ledger")
}

func TestReportService_CachesAndCoalesces(t *testing.T) {
	ledger := &countingLedger{LedgerReader: memory.NewSeeded(), delay: 20 * time.Millisecond}
	svc := newReportService(ledger)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Build(context.Background(), shell.ReportMonthly, core.Date{}, core.Date{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := svc.Build(context.Background(), shell.ReportMonthly, core.Date{}, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), ledger.calls.Load())
}

func TestReportService_Overview(t *testing.T) {
	svc := newReportService(memory.NewSeeded())

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, o.Cards, 4)
	assert.Equal(t, "Total Income", o.Cards[0].Title)
	assert.Equal(t, "$89,200", o.Cards[0].Value)
	assert.Equal(t, 8.1, o.Cards[0].ChangePct)
	assert.Equal(t, "$61,600", o.Cards[1].Value)
	assert.False(t, o.Cards[1].Favorable)
	assert.Equal(t, "$27,600", o.Cards[2].Value)
	assert.Equal(t, "242", o.Cards[3].Value)

	assert.Len(t, o.Income.Values, 6)
	assert.Len(t, o.Net.Values, 6)
	require.Len(t, o.Recent, 5)
	assert.Equal(t, core.NewDate(2025, 6, 25), o.Recent[0].Date)
	assert.True(t, o.Recent[0].Income)
	assert.Equal(t, "Staff Salaries", o.ExpenseBreakdown[0].Name)

	again, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, o.Cards, again.Cards)
}
