package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"

	DonorActive   DonorStatus = "active"
	DonorInactive DonorStatus = "inactive"

	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type (
	ExpenseStatus string
	DonorStatus   string
	UserStatus    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	IncomeEntry struct {
		ID          int64
		Date        Date
		Category    string
		Source      string
		Amount      Money
		Description string
		CreatedBy   string
	}

	ExpenseEntry struct {
		ID          int64
		Date        Date
		Category    string
		Vendor      string
		Amount      Money
		Description string
		Status      ExpenseStatus
		CreatedBy   string
	}

	Donor struct {
		ID             int64
		Name           string
		Email          string
		Phone          string
		Address        string
		JoinDate       Date
		TotalDonations Money
		LastDonation   Date
		Status         DonorStatus
	}

	User struct {
		ID     int64
		Name   string
		Email  string
		Role   string
		Status UserStatus
	}

	// Categories are the fixed income and expense category lists.
	Categories struct {
		Income  []string
		Expense []string
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Within reports whether d falls in [from, to], both inclusive.
func (d Date) Within(from, to Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func ParseExpenseStatus(s string) (ExpenseStatus, error) {
	switch st := ExpenseStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ExpensePending, ExpenseApproved, ExpenseRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func ParseDonorStatus(s string) (DonorStatus, error) {
	switch st := DonorStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case DonorActive, DonorInactive:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case UserActive, UserInactive:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// MonthTotal is the income and expense total booked in one month.
type MonthTotal struct {
	Month    Date
	Income   Money
	Expenses Money
}

// Net is income minus expenses for the month.
func (m MonthTotal) Net() Money {
	return Money{Cents: m.Income.Cents - m.Expenses.Cents}
}

// Highlights are dashboard figures that are not derived from the ledger.
type Highlights struct {
	RegisteredDonors  int
	IncomeChangePct   float64
	ExpensesChangePct float64
	NetChangePct      float64
	DonorsChangePct   float64
}
