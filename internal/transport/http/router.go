package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/platform/metrics"
	"storefront/internal/platform/middleware"
	"storefront/internal/presence"
	"storefront/internal/transport/http/shared"
	dErrors "storefront/pkg/domain-errors"
)

// Registrar is implemented by feature handlers that mount routes.
type Registrar interface {
	Register(r chi.Router)
}

// Deps wires the router. The websocket handler is mounted outside the API
// middleware chain: it must not inherit timeouts or response wrapping.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Catalog   Registrar
	Account   Registrar
	Purchase  Registrar
	Websocket http.Handler
	Presence  *presence.Service
	Validator middleware.JWTValidator

	// Health probes a backing dependency. Optional; when nil the health
	// endpoint reports ok unconditionally.
	Health func(ctx context.Context) error
}

// NewRouter assembles all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	api := chi.NewRouter()
	api.Use(middleware.Recovery(d.Logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger)
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.Latency(d.Metrics))

	d.Catalog.Register(api)
	d.Account.Register(api)
	d.Purchase.Register(api)

	// Admin surface sits behind the token interface; identity contents are
	// owned by the external auth collaborator.
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth(d.Validator, d.Logger))
		admin.Get("/admin/stats", handleAdminStats(d.Presence))
	})

	r.Mount("/api", api)
	r.Get("/ws", d.Websocket.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(d.Health))

	return r
}

func handleHealth(probe func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe != nil {
			if err := probe(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminStats(p *presence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !middleware.IsAdmin(r.Context()) {
			shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access required"))
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]any{
			"activeUsers": p.Count(r.Context()),
		})
	}
}
