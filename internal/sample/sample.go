// Package sample holds the fixed dataset the console ships with. Both
// storage backends are seeded from it; nothing is ever written back.
package sample

import "parishfinance/internal/core"

func d(y, m, day int) core.Date { return core.NewDate(y, m, day) }

func usd(dollars int64) core.Money { return core.Money{Cents: dollars * 100} }

// Dataset is everything a backend needs to answer ledger reads.
type Dataset struct {
	Categories core.Categories
	Income     []core.IncomeEntry
	Expenses   []core.ExpenseEntry
	Donors     []core.Donor
	Users      []core.User
	Months     []core.MonthTotal
	Highlights core.Highlights
}

// Load returns a fresh copy of the dataset; callers may mutate it.
func Load() Dataset {
	return Dataset{
		Categories: core.Categories{
			Income: []string{
				"Sunday Collection", "Special Collection", "Donations", "Building Fund",
				"Mission Fund", "Youth Ministry", "Events", "Other",
			},
			Expense: []string{
				"Utilities", "Maintenance", "Staff Salaries", "Office Supplies",
				"Ministry Activities", "Events", "Charitable Giving", "Education", "Other",
			},
		},
		Income: []core.IncomeEntry{
			{ID: 1, Date: d(2025, 6, 25), Category: "Sunday Collection", Source: "Weekly Mass", Amount: usd(3240), Description: "Regular Sunday collection", CreatedBy: "John Doe"},
			{ID: 2, Date: d(2025, 6, 20), Category: "Donations", Source: "Anonymous Donor", Amount: usd(1500), Description: "Special donation for parish activities", CreatedBy: "John Doe"},
			{ID: 3, Date: d(2025, 6, 12), Category: "Building Fund", Source: "Parish Fundraiser", Amount: usd(950), Description: "Funds collected during summer fundraiser", CreatedBy: "Sarah Johnson"},
			{ID: 4, Date: d(2025, 6, 6), Category: "Sunday Collection", Source: "Weekly Mass", Amount: usd(2970), Description: "Regular Sunday collection", CreatedBy: "John Doe"},
			{ID: 5, Date: d(2025, 6, 1), Category: "Youth Ministry", Source: "Youth Event", Amount: usd(580), Description: "Proceeds from youth ministry bake sale", CreatedBy: "Sarah Johnson"},
		},
		Expenses: []core.ExpenseEntry{
			{ID: 1, Date: d(2025, 6, 22), Category: "Utilities", Vendor: "City Power & Water", Amount: usd(845), Description: "Monthly utility bill", Status: core.ExpenseApproved, CreatedBy: "Sarah Johnson"},
			{ID: 2, Date: d(2025, 6, 15), Category: "Staff Salaries", Vendor: "Payroll", Amount: usd(2780), Description: "Staff salaries for June", Status: core.ExpenseApproved, CreatedBy: "John Doe"},
			{ID: 3, Date: d(2025, 6, 10), Category: "Maintenance", Vendor: "City Landscaping", Amount: usd(350), Description: "Monthly grounds maintenance", Status: core.ExpenseApproved, CreatedBy: "Sarah Johnson"},
			{ID: 4, Date: d(2025, 6, 8), Category: "Office Supplies", Vendor: "Office Depot", Amount: usd(125), Description: "Printer paper and ink", Status: core.ExpenseApproved, CreatedBy: "Sarah Johnson"},
			{ID: 5, Date: d(2025, 6, 5), Category: "Ministry Activities", Vendor: "Parish Youth Group", Amount: usd(250), Description: "Youth retreat supplies", Status: core.ExpensePending, CreatedBy: "John Doe"},
		},
		Donors: []core.Donor{
			{ID: 1, Name: "Michael Johnson", Email: "michael.johnson@example.com", Phone: "(555) 123-4567", Address: "123 Main St, Anytown, CA 90210", JoinDate: d(2023, 2, 15), TotalDonations: usd(2850), LastDonation: d(2025, 6, 18), Status: core.DonorActive},
			{ID: 2, Name: "Sarah Williams", Email: "sarah.williams@example.com", Phone: "(555) 234-5678", Address: "456 Oak Dr, Somewhere, CA 90211", JoinDate: d(2022, 7, 20), TotalDonations: usd(5620), LastDonation: d(2025, 6, 20), Status: core.DonorActive},
			{ID: 3, Name: "Robert Davis", Email: "robert.davis@example.com", Phone: "(555) 345-6789", Address: "789 Pine Ave, Elsewhere, CA 90212", JoinDate: d(2021, 11, 5), TotalDonations: usd(7840), LastDonation: d(2025, 6, 15), Status: core.DonorActive},
			{ID: 4, Name: "Jennifer Martinez", Email: "jennifer.martinez@example.com", Phone: "(555) 456-7890", Address: "101 Cedar Blvd, Nowhere, CA 90213", JoinDate: d(2024, 1, 10), TotalDonations: usd(1200), LastDonation: d(2025, 6, 12), Status: core.DonorActive},
			{ID: 5, Name: "David Thompson", Email: "david.thompson@example.com", Phone: "(555) 567-8901", Address: "234 Elm St, Anyplace, CA 90214", JoinDate: d(2023, 9, 22), TotalDonations: usd(3450), LastDonation: d(2025, 5, 28), Status: core.DonorInactive},
		},
		Users: []core.User{
			{ID: 1, Name: "John Doe", Email: "john.doe@parish.org", Role: "Administrator", Status: core.UserActive},
			{ID: 2, Name: "Sarah Johnson", Email: "sarah.johnson@parish.org", Role: "Treasurer", Status: core.UserActive},
			{ID: 3, Name: "Michael Smith", Email: "michael.smith@parish.org", Role: "Staff", Status: core.UserActive},
			{ID: 4, Name: "Lisa Brown", Email: "lisa.brown@parish.org", Role: "Staff", Status: core.UserInactive},
		},
		Months: []core.MonthTotal{
			{Month: d(2025, 1, 1), Income: usd(12500), Expenses: usd(8500)},
			{Month: d(2025, 2, 1), Income: usd(13200), Expenses: usd(9200)},
			{Month: d(2025, 3, 1), Income: usd(15000), Expenses: usd(9800)},
			{Month: d(2025, 4, 1), Income: usd(14200), Expenses: usd(10500)},
			{Month: d(2025, 5, 1), Income: usd(16500), Expenses: usd(11200)},
			{Month: d(2025, 6, 1), Income: usd(17800), Expenses: usd(12400)},
		},
		Highlights: core.Highlights{
			RegisteredDonors:  242,
			IncomeChangePct:   8.1,
			ExpensesChangePct: 10.7,
			NetChangePct:      2.3,
			DonorsChangePct:   4.6,
		},
	}
}
