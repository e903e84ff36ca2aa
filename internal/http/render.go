package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"parishfinance/internal/core"
	"parishfinance/internal/shell"
)

// Template names that are not full layout pages.
const (
	tmplLayout  = "layout"
	tmplLogin   = "login"
	tmplSidebar = "sidebar"
)

// layoutFiles are shared by every console page.
var layoutFiles = []string{"templates/layout.html", "templates/sidebar.html"}

// pageFiles maps each view to the template file that defines its content.
var pageFiles = map[shell.View]string{
	shell.ViewDashboard: "templates/dashboard.html",
	shell.ViewIncome:    "templates/income.html",
	shell.ViewExpenses:  "templates/expenses.html",
	shell.ViewDonors:    "templates/donors.html",
	shell.ViewReports:   "templates/reports.html",
	shell.ViewSettings:  "templates/settings.html",
	shell.ViewNotFound:  "templates/not_found.html",
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	base  *template.Template
	pages map[shell.View]*template.Template
	login *template.Template
}

// NewRenderer parses every template in fsys. A missing or broken
// template fails here rather than on first request.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("").Funcs(templateFuncs()).ParseFS(fsys, layoutFiles...)
	if err != nil {
		return nil, fmt.Errorf("parse layout templates: %w", err)
	}

	r := &Renderer{base: base, pages: make(map[shell.View]*template.Template, len(pageFiles))}
	for view, file := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", view, err)
		}
		if _, err := clone.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[view] = clone
	}

	r.login, err = template.New("").Funcs(templateFuncs()).ParseFS(fsys, "templates/login.html")
	if err != nil {
		return nil, fmt.Errorf("parse login template: %w", err)
	}
	return r, nil
}

// Page renders a console view inside the layout.
func (r *Renderer) Page(w http.ResponseWriter, status int, view shell.View, data PageData) error {
	t, ok := r.pages[view]
	if !ok {
		return fmt.Errorf("no template for view %q", view)
	}
	return execute(w, status, t, tmplLayout, data)
}

// Login renders the standalone login page.
func (r *Renderer) Login(w http.ResponseWriter, status int, data LoginView) error {
	return execute(w, status, r.login, tmplLogin, data)
}

// Sidebar renders just the sidebar, for htmx swaps after a toggle.
func (r *Renderer) Sidebar(w http.ResponseWriter, data PageData) error {
	return execute(w, http.StatusOK, r.base, tmplSidebar, data)
}

// execute renders into a buffer first so a template error never leaves a
// half-written page behind a 200.
func execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"usd":   func(m core.Money) string { return m.String() },
		"date":  formatDate,
		"iso":   func(d core.Date) string { return d.ISO() },
		"pct":   formatChange,
		"json":  toJSON,
		"chart": chartData,
		"share": shareData,
		"title": shell.Title,
		"count": func(n int) string { return humanize.Comma(int64(n)) },
	}
}

// formatDate renders "Jun 25, 2025"; the zero date renders empty.
func formatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

// formatChange renders a signed percentage such as "+8.1%".
func formatChange(p float64) string {
	s := strconv.FormatFloat(p, 'f', 1, 64)
	if p >= 0 {
		s = "+" + s
	}
	return s + "%"
}

// toJSON feeds chart data attributes. html/template escapes the result
// for the attribute context.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type chartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type chartPayload struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

// chartData encodes series sharing the first one's labels for Chart.js.
func chartData(series ...core.Series) (string, error) {
	var p chartPayload
	for i, s := range series {
		if i == 0 {
			p.Labels = s.Labels
		}
		ds := chartDataset{Label: s.Name, Data: make([]float64, len(s.Values))}
		for j, v := range s.Values {
			ds.Data[j] = float64(v)
		}
		p.Datasets = append(p.Datasets, ds)
	}
	return toJSON(p)
}

// shareData encodes a category breakdown in dollars for a doughnut chart.
func shareData(amounts []core.CategoryAmount) (string, error) {
	p := chartPayload{Datasets: []chartDataset{{Label: "Amount"}}}
	for _, a := range amounts {
		p.Labels = append(p.Labels, a.Name)
		p.Datasets[0].Data = append(p.Datasets[0].Data, a.Amount.Dollars())
	}
	return toJSON(p)
}
