package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check in /health.
const healthCheckTimeout = 3 * time.Second

// Rate limit scopes keep per-IP buckets separate for each public route.
const (
	scopeDeviceCode = "device_code"
	scopeLogin      = "login"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device-facing pairing endpoint. state and packaging may arrive as
	// query parameters or as a form body.
	r.Route("/v1/device", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware(scopeDeviceCode))
		r.Get("/code", s.handleDeviceCode)
		r.Post("/code", s.handleDeviceCode)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.With(s.rateLimitMiddleware(scopeLogin)).Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Put("/account/password", s.handleChangePassword)
		})
	})

	return r
}

// healthResponse is the body of GET /api/v1/health.
type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// handleHealth checks the cache and database and reports 503 when either fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.version, Checks: map[string]string{}}

	check := func(name string, hc HealthChecker) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := hc.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "component", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "unavailable"
			return
		}
		resp.Checks[name] = "ok"
	}

	check("cache", s.cache)
	if s.db != nil {
		check("database", s.db)
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
