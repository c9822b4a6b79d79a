// Package httptransport assembles the HTTP surface of the registry.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proofregistry/internal/platform/metrics"
	"proofregistry/internal/platform/middleware"
	"proofregistry/internal/registry/handler"
	"proofregistry/pkg/platform/httputil"
	"proofregistry/pkg/platform/middleware/auth"
	"proofregistry/pkg/platform/middleware/request"
	"proofregistry/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router wires together.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Validator auth.TokenValidator
	Registry  handler.Service
	Health    map[string]HealthCheck
}

// NewRouter wires all public endpoints. Registry writes require a bearer
// token; /healthz and /metrics are unauthenticated.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(d.Metrics))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", healthHandler(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	var requireCaller func(http.Handler) http.Handler
	if d.Validator != nil {
		requireCaller = auth.RequireCaller(d.Validator, logger)
	}
	handler.New(d.Registry, logger, requireCaller).Register(r)

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
