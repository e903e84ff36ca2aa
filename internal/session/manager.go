package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"parishfinance/internal/shell"
)

const DefaultCookieName = "parish_session"

type contextKey struct{}

// Handle is the session attached to one request. Handlers mutate State
// and call Manager.Save to persist it.
type Handle struct {
	ID    string
	State shell.State
}

// FromContext returns the request's session handle. Requests that did not
// pass through Middleware get a fresh unauthenticated handle.
func FromContext(ctx context.Context) *Handle {
	if h, ok := ctx.Value(contextKey{}).(*Handle); ok {
		return h
	}
	return &Handle{}
}

// WithHandle attaches h to ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, contextKey{}, h)
}

type Options struct {
	TTL        time.Duration
	Secure     bool
	CookieName string
}

type Manager struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, opts: opts, logger: logger}
}

// Middleware loads the session named by the cookie into the request
// context and slides its expiry. Unknown or expired cookies yield an
// empty handle.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := &Handle{}
		if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
			st, err := m.load(r.Context(), c.Value)
			switch {
			case err == nil:
				h.ID, h.State = c.Value, st
				m.setCookie(w, h.ID)
			case errors.Is(err, ErrSessionNotFound):
				m.clearCookie(w)
			default:
				m.logger.WarnContext(r.Context(), "Session load failed", "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), h)))
	})
}

// load reads the session and extends it by the configured TTL.
func (m *Manager) load(ctx context.Context, id string) (shell.State, error) {
	st, err := m.store.Load(ctx, id)
	if err != nil {
		return shell.State{}, err
	}
	if err := m.store.Touch(ctx, id, m.opts.TTL); err != nil {
		return shell.State{}, err
	}
	return st, nil
}

// Save persists h, issuing an id and cookie if it has none yet.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, h *Handle) error {
	if h.ID == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		h.ID = id
	}
	if err := m.store.Save(r.Context(), h.ID, h.State, m.opts.TTL); err != nil {
		return err
	}
	m.setCookie(w, h.ID)
	return nil
}

// Renew moves h to a new id, dropping the old one. Called whenever the
// authentication level changes.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request, h *Handle) error {
	if h.ID != "" {
		if err := m.store.Delete(r.Context(), h.ID); err != nil {
			m.logger.WarnContext(r.Context(), "Old session delete failed", "error", err)
		}
		h.ID = ""
	}
	return m.Save(w, r, h)
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
