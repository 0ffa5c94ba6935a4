// Package http assembles the service router: domain handlers plus the
// unauthenticated operational endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medledger/pkg/platform/httputil"
)

// Registerer is implemented by domain handlers that mount their own routes.
type Registerer interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router holds everything the HTTP surface needs.
type Router struct {
	logger   *slog.Logger
	handlers []Registerer
	checks   map[string]HealthChecker
}

// NewRouter builds a Router over the given domain handlers.
func NewRouter(logger *slog.Logger, handlers ...Registerer) *Router {
	return &Router{
		logger:   logger,
		handlers: handlers,
		checks:   make(map[string]HealthChecker),
	}
}

// Add appends a domain handler; it is registered when Handler is built.
func (rt *Router) Add(h Registerer) {
	rt.handlers = append(rt.handlers, h)
}

// AddHealthCheck registers a named dependency probe for /healthz.
func (rt *Router) AddHealthCheck(name string, check HealthChecker) {
	rt.checks[name] = check
}

// Handler materializes the chi mux. Operational endpoints are mounted outside
// the authenticated middleware chains the domain handlers install.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range rt.handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(rt.checks) > 0 {
		resp.Checks = make(map[string]string, len(rt.checks))
	}
	for name, check := range rt.checks {
		if err := check.Health(ctx); err != nil {
			rt.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err.Error())
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
