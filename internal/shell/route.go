// Package shell holds the navigation state of the console: who is signed in,
// how the sidebar looks and which view a path resolves to.
//
// Everything here is pure. The HTTP layer loads a State from the session
// store, applies one of these operations and saves it back.
package shell

import (
	"strings"
)

// View identifies one top-level screen.
type View string

const (
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
	ViewIncome    View = "income"
	ViewExpenses  View = "expenses"
	ViewReports   View = "reports"
	ViewDonors    View = "donors"
	ViewSettings  View = "settings"
	ViewNotFound  View = "not-found"
)

// Report sub-selectors.
const (
	ReportMonthly   = "monthly"
	ReportQuarterly = "quarterly"
	ReportAnnual    = "annual"
	ReportCustom    = "custom"
)

// Settings sub-selectors.
const (
	SettingsProfile    = "profile"
	SettingsCategories = "categories"
	SettingsUsers      = "users"
)

var (
	reportKinds      = []string{ReportMonthly, ReportQuarterly, ReportAnnual, ReportCustom}
	settingsSections = []string{SettingsProfile, SettingsCategories, SettingsUsers}
)

// ReportKinds returns the report sub-selectors in display order.
func ReportKinds() []string {
	return append([]string(nil), reportKinds...)
}

// SettingsSections returns the settings sub-selectors in display order.
func SettingsSections() []string {
	return append([]string(nil), settingsSections...)
}

// Route is the outcome of resolving a path. Sub is only set for reports and settings.
type Route struct {
	View View
	Sub  string
}

// Path returns the canonical URL path for the route.
func (r Route) Path() string {
	switch r.View {
	case ViewDashboard:
		return "/"
	case ViewLogin:
		return "/login"
	case ViewReports, ViewSettings:
		if r.Sub == "" {
			return "/" + string(r.View)
		}
		return "/" + string(r.View) + "/" + r.Sub
	case ViewNotFound:
		return ""
	default:
		return "/" + string(r.View)
	}
}

// Resolve maps a path and the authentication flag to the view to display.
// Unauthenticated callers always get the login view; unknown paths get not-found.
func Resolve(path string, authenticated bool) Route {
	if !authenticated {
		return Route{View: ViewLogin}
	}

	segments := splitPath(path)
	if len(segments) == 0 {
		return Route{View: ViewDashboard}
	}

	switch segments[0] {
	case "dashboard":
		if len(segments) == 1 {
			return Route{View: ViewDashboard}
		}
	case "income":
		if len(segments) == 1 {
			return Route{View: ViewIncome}
		}
	case "expenses":
		if len(segments) == 1 {
			return Route{View: ViewExpenses}
		}
	case "donors":
		if len(segments) == 1 {
			return Route{View: ViewDonors}
		}
	case "reports":
		return Route{View: ViewReports, Sub: pickSub(segments[1:], reportKinds)}
	case "settings":
		return Route{View: ViewSettings, Sub: pickSub(segments[1:], settingsSections)}
	}

	return Route{View: ViewNotFound}
}

// pickSub returns the first trailing segment when it names a known
// sub-selector, otherwise the first entry of known.
func pickSub(rest []string, known []string) string {
	if len(rest) > 0 {
		for _, k := range known {
			if rest[0] == k {
				return k
			}
		}
	}
	return known[0]
}

func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		segments = append(segments, strings.ToLower(s))
	}
	return segments
}
