// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the Kinora HTTP server: the middleware chain, the
health and metrics endpoints, and the /api/v1 route groups.

	/health /ready /metrics     operational endpoints
	/api/v1/auth                admin login, current identity
	/api/v1/movies              public catalog, admin mutations
	/api/v1/admin               dashboard stats, manual flush
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/kinora/internal/admin"
	"github.com/taibuivan/kinora/internal/core/movie"
	"github.com/taibuivan/kinora/internal/platform/apperr"
	"github.com/taibuivan/kinora/internal/platform/config"
	"github.com/taibuivan/kinora/internal/platform/constants"
	"github.com/taibuivan/kinora/internal/platform/middleware"
	"github.com/taibuivan/kinora/internal/platform/respond"
)

// Server owns the router and the underlying [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers collects everything NewServer mounts.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 only when every check passes.
	Readiness http.HandlerFunc

	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics http.Handler

	// Observer records per-route HTTP metrics; nil disables them.
	Observer middleware.HTTPObserver

	// Admin handles the admin sign-in routes.
	Admin *admin.Handler

	// Movie serves the catalog and the admin dashboard.
	Movie *movie.Handler
}

// NewServer builds the router. ctx bounds background work started by the
// middleware, such as the rate limiter's idle sweeper.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// CORS runs before Authenticate so browsers can read 401 bodies.
	// TrustedProxyPrefixes was checked by config.Validate.
	trusted, _ := cfg.TrustedProxyPrefixes()

	r.Use(middleware.RealIP(trusted))
	r.Use(middleware.RequestID())
	if h.Observer != nil {
		r.Use(middleware.Metrics(h.Observer))
	}
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.CORS(cfg, cfg.AllowedOriginSuffix))
	r.Use(middleware.Authenticate(verifier))
	r.Use(chimw.CleanPath)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})
	r.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		respond.JSON(writer, http.StatusMethodNotAllowed, respond.ErrorEnvelope{
			Error: "Method not allowed",
			Code:  "METHOD_NOT_ALLOWED",
		})
	})

	// # Health
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	// # API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Admin.Routes())
		api.Mount("/movies", h.Movie.Routes())
		api.Mount("/admin", h.Movie.AdminRoutes())
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

// ListenAndServe blocks until the server stops. After Shutdown it returns
// [http.ErrServerClosed].
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
