package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/auth"
)

// Pinger reports backend connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router assembles the HTTP surface: the /api routes, health and metrics.
type Router struct {
	authHandler     *AuthHandler
	userHandler     *UserHandler
	blogHandler     *BlogHandler
	taxonomyHandler *TaxonomyHandler
	contactHandler  *ContactHandler
	authMiddleware  *auth.Middleware
	metrics         *Metrics
	db              Pinger
	maxBodySize     int64
	rateLimit       RateLimit
	logger          zerolog.Logger
}

// RateLimit configures the per-IP limiter on the auth routes.
type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// RouterConfig contains the router dependencies.
type RouterConfig struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	BlogHandler     *BlogHandler
	TaxonomyHandler *TaxonomyHandler
	ContactHandler  *ContactHandler
	AuthMiddleware  *auth.Middleware
	Metrics         *Metrics
	DB              Pinger
	MaxBodySize     int64
	RateLimit       RateLimit
	Logger          zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		authHandler:     cfg.AuthHandler,
		userHandler:     cfg.UserHandler,
		blogHandler:     cfg.BlogHandler,
		taxonomyHandler: cfg.TaxonomyHandler,
		contactHandler:  cfg.ContactHandler,
		authMiddleware:  cfg.AuthMiddleware,
		metrics:         cfg.Metrics,
		db:              cfg.DB,
		maxBodySize:     cfg.MaxBodySize,
		rateLimit:       cfg.RateLimit,
		logger:          cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	if rt.maxBodySize > 0 {
		r.Use(rt.limitBody)
	}

	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		// Auth routes are the brute-force target, so they carry the limiter.
		api.Group(func(g chi.Router) {
			if rt.rateLimit.Enabled {
				g.Use(httprate.LimitByIP(rt.rateLimit.Requests, rt.rateLimit.Window))
			}
			rt.authHandler.RegisterRoutes(g)
		})

		rt.userHandler.RegisterRoutes(api, rt.authMiddleware)
		rt.blogHandler.RegisterRoutes(api, rt.authMiddleware)
		rt.taxonomyHandler.RegisterRoutes(api, rt.authMiddleware)
		rt.contactHandler.RegisterRoutes(api)
	})

	return r
}

// handleHealth reports service and database health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.db.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// limitBody caps the request body size.
func (rt *Router) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxBodySize)
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured line per request.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
