package http

import (
	"errors"
	"net/http"

	applog "parishfinance/internal/log"
	"parishfinance/internal/metrics"
	"parishfinance/internal/session"
	"parishfinance/internal/shell"
)

// Messages shown on the login page.
const (
	msgMissingCredentials = "Please enter both email and password"
	msgLoginFailed        = "Invalid credentials. Please try again."
	msgLoginUnreadable    = "The sign-in request could not be read. Please try again."
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h := session.FromContext(r.Context())
	if h.State.Session.Authenticated {
		http.Redirect(w, r, shell.Route{View: shell.ViewDashboard}.Path(), http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, LoginView{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.metrics.Login(metrics.LoginInvalid)
		if isHTMX(r) {
			BadRequestError(msgLoginUnreadable).Write(w)
			return
		}
		s.renderLogin(w, r, http.StatusBadRequest, LoginView{Error: msgLoginUnreadable})
		return
	}
	creds := ParseCredentials(p)

	h := session.FromContext(ctx)
	route, err := s.gate.Login(ctx, &h.State, creds)
	s.structured.LogLogin(ctx, creds.Email, err)
	switch {
	case errors.Is(err, shell.ErrMissingCredentials):
		s.metrics.Login(metrics.LoginInvalid)
		s.renderLogin(w, r, http.StatusUnprocessableEntity, LoginView{Email: creds.Email, Error: msgMissingCredentials})
		return
	case err != nil:
		s.metrics.Login(metrics.LoginFailed)
		s.renderLogin(w, r, http.StatusUnauthorized, LoginView{Email: creds.Email, Error: msgLoginFailed})
		return
	}

	// New id on every privilege change.
	if err := s.sessions.Renew(w, r, h); err != nil {
		s.logger.ErrorContext(ctx, "Session save failed", applog.FieldOperation, applog.OpLogin, applog.FieldError, err)
		s.metrics.Login(metrics.LoginFailed)
		s.renderLogin(w, r, http.StatusInternalServerError, LoginView{Email: creds.Email, Error: msgLoginFailed})
		return
	}
	s.metrics.Login(metrics.LoginSuccess)
	s.redirect(w, r, route.Path())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h := session.FromContext(ctx)
	email := h.State.Session.Identity.Email

	s.gate.Logout(&h.State)
	if err := s.sessions.Renew(w, r, h); err != nil {
		s.logger.ErrorContext(ctx, "Session save failed", applog.FieldOperation, applog.OpLogout, applog.FieldError, err)
	}
	s.logger.InfoContext(ctx, "Logged out", applog.FieldUser, email, applog.FieldOperation, applog.OpLogout)
	s.redirect(w, r, shell.Route{View: shell.ViewLogin}.Path())
}

// requireAuth turns away unauthenticated requests. htmx callers are sent
// to the login page; others get a plain 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).State.Session.Authenticated {
			resp := UnauthorizedError("Your session has ended. Please sign in again.")
			if isHTMX(r) {
				resp.Redirect(shell.Route{View: shell.ViewLogin}.Path())
			}
			resp.Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redirect navigates to url: HX-Redirect for htmx, 303 otherwise.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, v LoginView) {
	v.OrgName = s.orgName
	if err := s.renderer.Login(w, status, v); err != nil {
		s.renderFailed(w, r, err)
	}
}

// renderFailed logs a template failure and answers 500.
func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "Template execution failed",
		applog.FieldOperation, applog.OpRender,
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err)
	InternalServerError("Something went wrong while rendering this page.").Write(w)
}
