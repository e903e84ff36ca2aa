package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	applog "parishfinance/internal/log"
	"parishfinance/internal/session"
	"parishfinance/internal/shell"
)

// handlePage resolves the path against the session and renders the view.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h := session.FromContext(ctx)
	route := s.gate.Render(h.State, r.URL.Path)

	applog.FromContext(ctx).DebugContext(ctx, "Route resolved",
		applog.NewFields().WithRoute(string(route.View), route.Sub).WithOperation(applog.OpResolve).ToSlice()...)

	if route.View == shell.ViewLogin {
		http.Redirect(w, r, route.Path(), http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	if route.View == shell.ViewNotFound {
		status = http.StatusNotFound
	}

	content, err := s.loadContent(ctx, route, h.State, r.URL.Query())
	if err != nil {
		s.logger.ErrorContext(ctx, "Loading view data failed",
			applog.NewFields().WithRoute(string(route.View), route.Sub).WithError(err).ToSlice()...)
		InternalServerError("The page could not be loaded. Please try again.").Write(w)
		return
	}

	if err := s.renderer.Page(w, status, route.View, s.pageData(route, h.State, content)); err != nil {
		s.renderFailed(w, r, err)
	}
}

func (s *Server) handleToggleCollapse(w http.ResponseWriter, r *http.Request) {
	h := session.FromContext(r.Context())
	h.State.Sidebar.ToggleCollapsed()
	s.metrics.SidebarToggle("collapse")
	s.saveSidebar(w, r, h)
}

func (s *Server) handleToggleGroup(w http.ResponseWriter, r *http.Request) {
	g, err := shell.ParseGroup(chi.URLParam(r, "group"))
	if errors.Is(err, shell.ErrUnknownGroup) {
		NotFoundError("Unknown menu group.").Write(w)
		return
	}

	h := session.FromContext(r.Context())
	h.State.Sidebar.ToggleGroup(g)
	s.metrics.SidebarToggle(string(g))
	s.saveSidebar(w, r, h)
}

// saveSidebar persists the toggled state and answers with the sidebar
// partial for the page the toggle came from.
func (s *Server) saveSidebar(w http.ResponseWriter, r *http.Request, h *session.Handle) {
	ctx := r.Context()
	if err := s.sessions.Save(w, r, h); err != nil {
		s.logger.ErrorContext(ctx, "Session save failed", applog.FieldOperation, applog.OpToggle, applog.FieldError, err)
		InternalServerError("Could not save the menu state.").Write(w)
		return
	}

	sb := h.State.Sidebar
	applog.FromContext(ctx).DebugContext(ctx, "Sidebar toggled",
		applog.FieldCollapsed, sb.Collapsed, applog.FieldGroup, string(sb.ActiveGroup), applog.FieldOperation, applog.OpToggle)

	// htmx sends the page URL so active links stay highlighted.
	route := s.gate.Render(h.State, currentPath(r))
	NewHTMXResponse().TriggerSidebarChanged(sb.Collapsed, string(sb.ActiveGroup)).WriteHeaders(w)
	if err := s.renderer.Sidebar(w, s.pageData(route, h.State, nil)); err != nil {
		s.renderFailed(w, r, err)
	}
}

// currentPath is the path of the page that issued an htmx request.
func currentPath(r *http.Request) string {
	if u := r.Header.Get("HX-Current-URL"); u != "" {
		if parsed, err := r.URL.Parse(u); err == nil {
			return parsed.Path
		}
	}
	return "/"
}
