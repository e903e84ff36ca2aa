package shell

import "strings"

// MenuItem is one sidebar entry. Items with a Group expand into Children.
type MenuItem struct {
	Label    string
	Href     string
	Icon     string
	Group    Group
	Active   bool
	Open     bool
	Children []MenuItem
}

// Menu builds the sidebar entries for the current route and sidebar state.
func Menu(sidebar SidebarState, current Route) []MenuItem {
	items := []MenuItem{
		{Label: "Dashboard", Href: "/", Icon: "bi-speedometer2", Active: current.View == ViewDashboard},
		{Label: "Income", Href: "/income", Icon: "bi-cash-coin", Active: current.View == ViewIncome},
		{Label: "Expenses", Href: "/expenses", Icon: "bi-receipt", Active: current.View == ViewExpenses},
		groupItem("Reports", "bi-bar-chart", GroupReports, ViewReports, reportKinds, sidebar, current),
		{Label: "Donors", Href: "/donors", Icon: "bi-people", Active: current.View == ViewDonors},
		groupItem("Settings", "bi-gear", GroupSettings, ViewSettings, settingsSections, sidebar, current),
	}
	return items
}

func groupItem(label, icon string, g Group, v View, subs []string, sidebar SidebarState, current Route) MenuItem {
	item := MenuItem{
		Label:  label,
		Href:   "/" + string(v),
		Icon:   icon,
		Group:  g,
		Active: current.View == v,
		Open:   sidebar.IsOpen(g),
	}
	for _, sub := range subs {
		item.Children = append(item.Children, MenuItem{
			Label:  Title(sub),
			Href:   Route{View: v, Sub: sub}.Path(),
			Active: current.View == v && current.Sub == sub,
		})
	}
	return item
}

// Title upper-cases the first letter of a sub-selector for display.
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
