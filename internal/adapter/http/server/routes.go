package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Temutjin2k/route-guard/internal/adapter/http/middleware"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, mode types.ServiceMode) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupMetricsRoute(mux)

	switch mode {
	case types.RouteService:
		setupRouteRoutes(mux, routes, m)
	case types.ModerationService:
		setupModerationRoutes(mux, routes, m)
	}
}

// setupRouteRoutes setups routes for route service
func setupRouteRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /routes", m.RequireRoles(routes.route.CompleteRoute, types.RoleUser, types.RoleModerator, types.RoleAdmin)) // Store a finished route
	mux.HandleFunc("GET /routes/shared", routes.route.ListShared)                                                                // Discovery feed
	mux.HandleFunc("GET /routes/{route_id}", routes.route.GetRoute)                                                              // Single route, visibility depends on the caller
	mux.HandleFunc("POST /routes/plausibility", routes.route.CheckPlausibility)                                                  // Stateless plausibility check
}

// setupModerationRoutes setups routes for moderation service
func setupModerationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /admin/routes/{route_id}/recheck", m.RequireRoles(routes.moderation.Recheck, types.RoleAdmin, types.RoleModerator)) // Run moderation again
	mux.Handle("GET /ws/moderation", m.RequireRoles(routes.moderation.HandleWS, types.RoleAdmin, types.RoleModerator))                   // Live feed of flagged routes
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
