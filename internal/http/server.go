package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"parishfinance/internal/core"
	applog "parishfinance/internal/log"
	"parishfinance/internal/metrics"
	"parishfinance/internal/middleware/ratelimit"
	"parishfinance/internal/middleware/security"
	"parishfinance/internal/middleware/trace"
	"parishfinance/internal/ports"
	"parishfinance/internal/services"
	"parishfinance/internal/session"
	"parishfinance/internal/shell"
	appweb "parishfinance/web"
)

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(context.Context) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Ledger      ports.LedgerReader
	Reports     *services.ReportService
	Submissions *services.SubmissionService
	Gate        *shell.Gate
	Sessions    *session.Manager
	Metrics     *metrics.Metrics
	Logger      *applog.Logger
	Checks      []ReadinessCheck

	OrgName            string
	RateLimitPerMinute int

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
}

type Server struct {
	http.Server

	renderer    *Renderer
	ledger      ports.LedgerReader
	reports     *services.ReportService
	submissions *services.SubmissionService
	gate        *shell.Gate
	sessions    *session.Manager
	metrics     *metrics.Metrics
	logger      *applog.Logger
	structured  *applog.StructuredLogger
	limiter     *ratelimit.Limiter
	checks      []ReadinessCheck
	orgName     string
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer parses templates and builds the router. It fails when a
// required dependency or template is missing.
func NewServer(addr string, deps Deps) (*Server, error) {
	switch {
	case deps.Ledger == nil:
		return nil, errors.New("ledger reader is required")
	case deps.Reports == nil:
		return nil, errors.New("report service is required")
	case deps.Submissions == nil:
		return nil, errors.New("submission service is required")
	case deps.Gate == nil:
		return nil, errors.New("session gate is required")
	case deps.Sessions == nil:
		return nil, errors.New("session manager is required")
	}
	if deps.Logger == nil {
		deps.Logger = applog.Discard()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Templates == nil {
		deps.Templates = appweb.TemplatesFS
	}
	if deps.Static == nil {
		deps.Static = appweb.StaticFS
	}
	if deps.OrgName == "" {
		deps.OrgName = "Parish Finance"
	}

	renderer, err := NewRenderer(deps.Templates)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(deps.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	logger := deps.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		renderer:    renderer,
		ledger:      deps.Ledger,
		reports:     deps.Reports,
		submissions: deps.Submissions,
		gate:        deps.Gate,
		sessions:    deps.Sessions,
		metrics:     deps.Metrics,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
		checks:      deps.Checks,
		orgName:     deps.OrgName,
		started:     time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
			OnLimited:         deps.Metrics.RateLimited,
		}),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(static),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(static fs.FS) http.Handler {
	detector := security.NewDetector(s.logger)
	tracer := trace.NewMiddleware(detector.ExtractClientIP, s.metrics, s.logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	r := chi.NewRouter()
	r.MethodNotAllowed(s.handleMethodNotAllowed(r))
	r.Use(middleware.Recoverer)
	r.Use(tracer.Handler)
	r.Use(headers.Middleware)
	r.Use(detector.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(s.sessions.Middleware)
		r.Use(applog.ComponentMiddleware(applog.ComponentShell))

		r.Get("/login", s.handleLoginPage)
		r.With(limit).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/ui/sidebar/collapse", s.handleToggleCollapse)
			r.Post("/ui/sidebar/groups/{group}", s.handleToggleGroup)

			r.With(limit).Post("/income", s.handleSubmit(core.KindIncome))
			r.With(limit).Post("/expenses", s.handleSubmit(core.KindExpense))
			r.With(limit).Post("/donors", s.handleSubmit(core.KindDonor))
			r.With(limit).Post("/reports/generate", s.handleSubmit(core.KindReport))
			r.With(limit).Post("/settings/profile", s.handleSubmit(core.KindProfile))
			r.With(limit).Post("/settings/users", s.handleSubmit(core.KindUser))
		})

		r.Get("/", s.handlePage)
		r.Get("/*", s.handlePage)
	})

	return r
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path, applog.FieldMethod, r.Method)
	TooManyRequestsError("Too many requests. Please wait a moment and try again.").
		TriggerErrorNotification("Too many requests. Please wait a moment and try again.").
		Write(w)
}

// routeMethods are the methods the console registers routes for.
var routeMethods = []string{http.MethodGet, http.MethodPost}

// handleMethodNotAllowed answers 405 listing the methods registered for the path.
func (s *Server) handleMethodNotAllowed(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, m := range routeMethods {
			if routes.Match(chi.NewRouteContext(), m, r.URL.Path) {
				allowed = append(allowed, m)
			}
		}
		MethodNotAllowedError(strings.Join(allowed, ", ")).Write(w)
	}
}
