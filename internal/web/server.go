// Package web provides the HTTP server and handlers for the file converter UI.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/fileconv/internal/config"
	"github.com/JonMunkholm/fileconv/internal/core"
	"github.com/JonMunkholm/fileconv/internal/metrics"
	mw "github.com/JonMunkholm/fileconv/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the file converter.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	metrics  *metrics.Metrics
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server
	limiters []*mw.RateLimiter
}

// NewServer creates a Server. m may be nil when metrics are disabled.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		metrics:  m,
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	general := s.rateLimit("general", s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
	upload := s.rateLimit("upload", s.cfg.Rate.Upload, max(1, s.cfg.Rate.Upload/2))

	s.router.Group(func(r chi.Router) {
		r.Use(general)

		// Pages
		r.Get("/", s.handleIndex)
		r.With(upload).Post("/upload", s.handleUpload)
		r.Get("/batch/{batchID}", s.handleBatchPage)

		// API
		r.Route("/api", func(r chi.Router) {
			r.With(upload).Post("/files", s.handleAPIUpload)
			r.Get("/batches/{batchID}", s.handleAPIBatch)
			r.Post("/batches/{batchID}/pipeline", s.handleAPIBatchPipeline)

			r.Route("/files/{fileID}", func(r chi.Router) {
				r.Get("/", s.handleAPIFile)
				r.Delete("/", s.handleAPIDelete)
				r.Post("/pipeline", s.handlePipeline)
				r.Get("/download", s.handleDownload)
				r.Get("/charts/{chart}.svg", s.handleChart)
			})
		})
	})
}

// rateLimit returns a per-IP limiter middleware, or a pass-through when rate
// limiting is disabled.
func (s *Server) rateLimit(name string, perMinute, burst int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled || perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := mw.NewRateLimiter(name, perMinute, burst, s.respondError)
	if s.metrics != nil {
		l.OnLimit = s.metrics.RateLimited
	}
	s.limiters = append(s.limiters, l)
	return l.Handler
}

// Start begins listening for HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	srv := s.cfg.Server
	s.server = &http.Server{
		Addr:         srv.Addr(),
		Handler:      s.router,
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
		IdleTimeout:  srv.IdleTimeout,
	}

	slog.Info("starting server", "addr", srv.Addr())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and its rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
