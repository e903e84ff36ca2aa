// Package ports declares the interfaces between the console and its
// storage and delivery adapters.
package ports

import (
	"context"

	"parishfinance/internal/core"
)

type (
	IncomeLister interface {
		ListIncome(ctx context.Context) ([]core.IncomeEntry, error)
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error)
	}

	DonorLister interface {
		ListDonors(ctx context.Context) ([]core.Donor, error)
	}

	UserLister interface {
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	CategoryReader interface {
		Categories(ctx context.Context) (core.Categories, error)
	}

	// DashboardReader provides the monthly totals behind the charts.
	DashboardReader interface {
		MonthlyTotals(ctx context.Context) ([]core.MonthTotal, error)
		Highlights(ctx context.Context) (core.Highlights, error)
	}

	// LedgerReader is the full read side a backend provides.
	LedgerReader interface {
		IncomeLister
		ExpenseLister
		DonorLister
		UserLister
		CategoryReader
		DashboardReader
	}

	// SubmissionSink receives form submissions. Implementations do not
	// mutate the ledger.
	SubmissionSink interface {
		Deliver(ctx context.Context, s core.Submission) error
	}
)
