package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parishfinance/internal/core"
	"parishfinance/internal/ports"
	"parishfinance/internal/sample"
)

var _ ports.LedgerReader = (*Store)(nil)

func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), memoryDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_SeedsSampleData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	income, err := s.ListIncome(ctx)
	require.NoError(t, err)
	require.Len(t, income, 5)
	assert.Equal(t, core.NewDate(2025, 6, 25), income[0].Date)
	assert.Equal(t, int64(324000), income[0].Amount.Cents)
	assert.Equal(t, int64(5), income[4].ID)

	expenses, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 5)
	assert.Equal(t, "City Power & Water", expenses[0].Vendor)
	assert.Equal(t, core.ExpensePending, expenses[4].Status)

	donors, err := s.ListDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 5)
	assert.Equal(t, core.DonorInactive, donors[4].Status)
	assert.Equal(t, core.NewDate(2023, 2, 15), donors[0].JoinDate)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample.Load().Categories, cats)
}

func TestOpen_MonthlyTotalsAndHighlights(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	months, err := s.MonthlyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, months, 6)
	assert.Equal(t, 1, months[0].Month.Month())
	assert.Equal(t, int64(1780000), months[5].Income.Cents)

	var income, expenses int64
	for _, m := range months {
		income += m.Income.Cents
		expenses += m.Expenses.Cents
	}
	assert.Equal(t, int64(8920000), income)
	assert.Equal(t, int64(6160000), expenses)

	h, err := s.Highlights(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample.Load().Highlights, h)
}

func TestSeedIfEmpty_SkipsPopulatedLedger(t *testing.T) {
	s := openTestStore(t)

	seeded, err := s.SeedIfEmpty(context.Background(), sample.Load())
	require.NoError(t, err)
	assert.False(t, seeded)

	income, err := s.ListIncome(context.Background())
	require.NoError(t, err)
	assert.Len(t, income, 5)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, RunMigrations(memoryDSN(t)))
	require.NoError(t, s.Ping(context.Background()))
}

func TestListIncome_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, entry_date").WillReturnError(errors.New("disk I/O error"))

	_, err = New(db).ListIncome(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query income")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpenses_RejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "entry_date", "category", "vendor", "amount_cents", "description", "status", "created_by"}).
		AddRow(1, "2025-06-22", "Utilities", "City", 84500, "bill", "lost", "John Doe")
	mock.ExpectQuery("FROM expense_entries").WillReturnRows(rows)

	_, err = New(db).ListExpenses(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDonors_BadDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "join_date", "total_donations_cents", "last_donation", "status"}).
		AddRow(1, "Ann", "", "", "", "15/02/2023", 100, "", "active")
	mock.ExpectQuery("FROM donors").WillReturnRows(rows)

	_, err = New(db).ListDonors(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join date")
}

func TestHighlights_IgnoresUnknownKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("registered_donors", 10.0).
		AddRow("net_change_pct", -1.5).
		AddRow("legacy", 99.0)
	mock.ExpectQuery("FROM highlights").WillReturnRows(rows)

	h, err := New(db).Highlights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Highlights{RegisteredDonors: 10, NetChangePct: -1.5}, h)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = New(db).Seed(context.Background(), sample.Load())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed income category")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedIfEmpty_CountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("no such table"))

	seeded, err := New(db).SeedIfEmpty(context.Background(), sample.Load())
	require.Error(t, err)
	assert.False(t, seeded)
}
