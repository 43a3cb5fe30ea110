// Package httptransport assembles the service's HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	entityhandler "sanctionwatch/internal/entity/handler"
	synchandler "sanctionwatch/internal/sync/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Entities *entityhandler.Handler
	Sync     *synchandler.Handler
	Logger   *slog.Logger
}

// NewRouter builds the full route tree: the API under /api, liveness
// under /healthz, and Prometheus metrics under /metrics.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api", func(api chi.Router) {
		deps.Entities.Register(api)
		deps.Sync.Register(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
