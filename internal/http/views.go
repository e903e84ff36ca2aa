package http

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"parishfinance/internal/core"
	"parishfinance/internal/services"
	"parishfinance/internal/shell"
)

// PageData is what the layout needs plus the view's own Content.
type PageData struct {
	OrgName  string
	Title    string
	Route    shell.Route
	Identity shell.Identity
	Sidebar  shell.SidebarState
	Menu     []shell.MenuItem
	Content  any
}

// LoginView backs the login page. Email is echoed back after a failed try.
type LoginView struct {
	OrgName string
	Email   string
	Error   string
}

type DashboardView struct {
	services.Overview
}

type IncomeView struct {
	Entries     []core.IncomeEntry
	Total       core.Money
	TopCategory string
	Latest      core.Date
	Categories  []string
}

type ExpensesView struct {
	Entries     []core.ExpenseEntry
	Total       core.Money
	TopCategory string
	Pending     int
	Categories  []string
}

type DonorsView struct {
	Donors  []core.Donor
	Summary core.DonorSummary
}

type ReportsView struct {
	Kinds  []string
	Report services.Report
	Range  DateRange
	Error  string
}

type SettingsView struct {
	Section    string
	Sections   []string
	Identity   shell.Identity
	Categories core.Categories
	Users      []core.User
}

// viewTitles are the page headings.
var viewTitles = map[shell.View]string{
	shell.ViewDashboard: "Dashboard",
	shell.ViewIncome:    "Income Management",
	shell.ViewExpenses:  "Expense Management",
	shell.ViewDonors:    "Donor Management",
	shell.ViewReports:   "Reports",
	shell.ViewSettings:  "Settings",
	shell.ViewNotFound:  "Page Not Found",
}

// loadContent fetches what route's view displays. Independent reads run
// concurrently.
func (s *Server) loadContent(ctx context.Context, route shell.Route, st shell.State, query url.Values) (any, error) {
	switch route.View {
	case shell.ViewDashboard:
		o, err := s.reports.Overview(ctx)
		if err != nil {
			return nil, err
		}
		return DashboardView{Overview: o}, nil

	case shell.ViewIncome:
		var v IncomeView
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			v.Entries, err = s.ledger.ListIncome(gctx)
			return err
		})
		g.Go(func() error {
			cats, err := s.ledger.Categories(gctx)
			v.Categories = cats.Income
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load income view: %w", err)
		}
		v.Total = core.SumIncome(v.Entries)
		if by := core.IncomeByCategory(v.Entries); len(by) > 0 {
			v.TopCategory = by[0].Name
		}
		if len(v.Entries) > 0 {
			v.Latest = v.Entries[0].Date
		}
		return v, nil

	case shell.ViewExpenses:
		var v ExpensesView
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			v.Entries, err = s.ledger.ListExpenses(gctx)
			return err
		})
		g.Go(func() error {
			cats, err := s.ledger.Categories(gctx)
			v.Categories = cats.Expense
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load expenses view: %w", err)
		}
		v.Total = core.SumExpenses(v.Entries)
		if by := core.ExpensesByCategory(v.Entries); len(by) > 0 {
			v.TopCategory = by[0].Name
		}
		v.Pending = core.CountByExpenseStatus(v.Entries)[core.ExpensePending]
		return v, nil

	case shell.ViewDonors:
		donors, err := s.ledger.ListDonors(ctx)
		if err != nil {
			return nil, fmt.Errorf("load donors view: %w", err)
		}
		return DonorsView{Donors: donors, Summary: core.SummarizeDonors(donors)}, nil

	case shell.ViewReports:
		v := ReportsView{Kinds: shell.ReportKinds()}
		dr, err := ParseDateRange(query)
		if err != nil {
			v.Error = "Dates must use the YYYY-MM-DD format."
			dr = DateRange{}
		}
		r, err := s.reports.Build(ctx, route.Sub, dr.From, dr.To)
		if errors.Is(err, services.ErrInvalidRange) {
			v.Error = "The start date must not be after the end date."
			dr = DateRange{}
			r, err = s.reports.Build(ctx, route.Sub, dr.From, dr.To)
		}
		if err != nil {
			return nil, err
		}
		v.Report, v.Range = r, dr
		return v, nil

	case shell.ViewSettings:
		v := SettingsView{Section: route.Sub, Sections: shell.SettingsSections(), Identity: st.Session.Identity}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			v.Categories, err = s.ledger.Categories(gctx)
			return err
		})
		g.Go(func() (err error) {
			v.Users, err = s.ledger.ListUsers(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load settings view: %w", err)
		}
		return v, nil
	}
	return nil, nil
}

// pageData assembles the layout data for route.
func (s *Server) pageData(route shell.Route, st shell.State, content any) PageData {
	title := viewTitles[route.View]
	if route.View == shell.ViewReports {
		title = services.Title(route.Sub)
	}
	return PageData{
		OrgName:  s.orgName,
		Title:    title,
		Route:    route,
		Identity: st.Session.Identity,
		Sidebar:  st.Sidebar,
		Menu:     shell.Menu(st.Sidebar, route),
		Content:  content,
	}
}
