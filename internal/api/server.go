// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the composition root for the chi router: the JSON API under
    /api/v1, the infrastructure probes, and the guarded admin pages.
  - Only this package and the cmd binaries import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/courtside/internal/auth"
	"github.com/taibuivan/courtside/internal/guard"
	"github.com/taibuivan/courtside/internal/platform/config"
	"github.com/taibuivan/courtside/internal/platform/constants"
	"github.com/taibuivan/courtside/internal/platform/metrics"
	"github.com/taibuivan/courtside/internal/platform/middleware"
	"github.com/taibuivan/courtside/internal/prefs"
	"github.com/taibuivan/courtside/internal/reconcile"
	"github.com/taibuivan/courtside/internal/roster"
	"github.com/taibuivan/courtside/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups everything the router mounts.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	Metrics   *metrics.Metrics
	Sessions  *session.Manager
	Auth      *auth.Handler
	Roster    *roster.Handler
	Reconcile *reconcile.Handler
	Prefs     *prefs.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds the rate limiter cleanup loops.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()
	guardOptions := guard.Options{LoginPath: cfg.LoginPath, LandingPath: cfg.LandingPath}

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.NewRateLimiter(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst).Handler)
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// Everything below carries a browser session.
	r.Group(func(app chi.Router) {
		app.Use(h.Sessions.Bind)

		// # Application API
		app.Route("/api/v1", func(api chi.Router) {
			loginLimiter := middleware.NewRateLimiter(ctx, constants.LoginRateLimitRPS, constants.LoginRateLimitBurst)
			api.Route("/auth", func(r chi.Router) {
				h.Auth.RegisterRoutes(r, loginLimiter.Handler)
			})
			api.Route("/prefs", h.Prefs.RegisterRoutes)

			h.Roster.RegisterRoutes(api)

			api.Route("/reconciliacion", func(r chi.Router) {
				r.Use(guard.Require(guard.RuleFor(guard.SectionReconciliation), guardOptions))
				h.Reconcile.RegisterRoutes(r)
			})
		})

		mountPages(app, cfg.StaticDir, guardOptions)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Admin Pages

// mountPages guards the single-page application routes. Files that exist in
// the static directory are served to anyone, so the login page can load its
// bundle. Only the index.html fallback is guarded: section pages check the
// same rule as their API, other paths only require a session, and the login
// page is always reachable.
func mountPages(router chi.Router, staticDir string, opts guard.Options) {
	site := newStaticSite(staticDir)

	router.Get(opts.LoginPath, site.index.ServeHTTP)

	for _, section := range guard.Sections() {
		page := site.page(guard.Require(guard.RuleFor(section), opts))
		router.Get("/"+string(section), page)
		router.Get("/"+string(section)+"/*", page)
	}

	router.Get("/*", site.page(guard.Require(guard.Authenticated, opts)))
}

type staticSite struct {
	dir   string
	files http.Handler
	index http.Handler
}

// newStaticSite serves files from dir and falls back to index.html so client
// side routing works. Without a directory every path answers 404.
func newStaticSite(dir string) *staticSite {
	if dir == "" {
		return &staticSite{files: http.NotFoundHandler(), index: http.NotFoundHandler()}
	}

	index := filepath.Join(dir, "index.html")
	return &staticSite{
		dir:   dir,
		files: http.FileServer(http.Dir(dir)),
		index: http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			http.ServeFile(writer, request, index)
		}),
	}
}

// exists reports whether the request path names a regular file other than
// the index document.
func (site *staticSite) exists(path string) bool {
	if site.dir == "" {
		return false
	}
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	if clean == "/index.html" {
		return false
	}
	info, err := os.Stat(filepath.Join(site.dir, clean))
	return err == nil && !info.IsDir()
}

// page serves an existing asset directly and sends everything else through
// require before the index fallback.
func (site *staticSite) page(require func(http.Handler) http.Handler) http.HandlerFunc {
	guarded := require(site.index)
	return func(writer http.ResponseWriter, request *http.Request) {
		if site.exists(request.URL.Path) {
			site.files.ServeHTTP(writer, request)
			return
		}
		guarded.ServeHTTP(writer, request)
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
