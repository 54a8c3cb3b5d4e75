// Package httptransport assembles the HTTP surface: probes, metrics and the
// authenticated API routes.
package httptransport

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycore/internal/platform/logger"
	"kycore/pkg/platform/httputil"
	"kycore/pkg/platform/middleware/auth"
	"kycore/pkg/platform/middleware/request"
)

// Routes is implemented by feature handlers.
type Routes interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger   *logger.Logger
	JWT      auth.JWTValidator
	Gatherer prometheus.Gatherer
	Health   map[string]HealthCheck
	// Middleware runs after authentication, in order, for every feature route.
	Middleware []func(http.Handler) http.Handler
	Routes     []Routes
}

// NewRouter wires the probes outside the request context and every feature route
// inside it.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Scope(d.Logger))
		r.Use(auth.Authenticate(d.JWT, d.Logger))
		r.Use(d.Middleware...)
		for _, routes := range d.Routes {
			routes.Register(r)
		}
	})
	return r
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func readiness(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := readinessResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
