package server

import (
	"net/http"

	"github.com/famhub/location-tracking-system/internal/adapter/http/middleware"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	// System Health
	mux.HandleFunc("/health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux)
	setupMetricsRoute(mux)

	setupLocationRoutes(mux, routes, m)
	setupSettingsRoutes(mux, routes, m)
	setupGeofenceRoutes(mux, routes, m)
	setupAlertRuleRoutes(mux, routes, m)
}

// setupLocationRoutes setups location ingest and read routes
func setupLocationRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /locations", m.RequireRoles(routes.location.Ingest, types.RoleMember, types.RoleOwner, types.RoleAdmin))            // Ingest a single location sample
	mux.Handle("POST /locations/batch", m.RequireRoles(routes.location.IngestBatch, types.RoleMember, types.RoleOwner, types.RoleAdmin)) // Ingest an ordered batch of samples
	mux.Handle("GET /locations/history", m.RequireRoles(routes.location.History, types.RoleMember, types.RoleOwner, types.RoleAdmin))    // Own location history

	mux.Handle("GET /families/{family_id}/locations", m.RequireRoles(routes.location.FamilyLocations, types.RoleMember, types.RoleOwner, types.RoleAdmin)) // Family member positions with freshness flags
	mux.Handle("GET /users/{user_id}/location", m.RequireRoles(routes.location.CurrentLocation, types.RoleMember, types.RoleOwner, types.RoleAdmin))       // Single member current position

	mux.HandleFunc("GET /ws/families/{family_id}", routes.familyWs.Watch) // WebSocket live location feed, auth inside the handler
}

// setupSettingsRoutes setups per-user tracking cadence settings routes
func setupSettingsRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("GET /tracking/settings", m.RequireRoles(routes.settings.Get, types.RoleMember, types.RoleOwner, types.RoleAdmin))
	mux.Handle("PUT /tracking/settings", m.RequireRoles(routes.settings.Update, types.RoleMember, types.RoleOwner, types.RoleAdmin))
}

// setupGeofenceRoutes setups geofence management routes
func setupGeofenceRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /families/{family_id}/geofences", m.RequireRoles(routes.geofence.Create, types.RoleOwner, types.RoleAdmin))
	mux.Handle("GET /families/{family_id}/geofences", m.RequireRoles(routes.geofence.List, types.RoleMember, types.RoleOwner, types.RoleAdmin))
	mux.Handle("DELETE /families/{family_id}/geofences/{geofence_id}", m.RequireRoles(routes.geofence.Delete, types.RoleOwner, types.RoleAdmin))
	mux.Handle("GET /families/{family_id}/geofence-events", m.RequireRoles(routes.geofence.Events, types.RoleMember, types.RoleOwner, types.RoleAdmin))
}

// setupAlertRuleRoutes setups alert rule management routes
func setupAlertRuleRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /families/{family_id}/alert-rules", m.RequireRoles(routes.alert.Create, types.RoleOwner, types.RoleAdmin))
	mux.Handle("GET /families/{family_id}/alert-rules", m.RequireRoles(routes.alert.List, types.RoleMember, types.RoleOwner, types.RoleAdmin))
	mux.Handle("DELETE /families/{family_id}/alert-rules/{rule_id}", m.RequireRoles(routes.alert.Delete, types.RoleOwner, types.RoleAdmin))
}

// setupSwaggerRoutes configures the Swagger UI endpoint
func setupSwaggerRoutes(mux *http.ServeMux) {
	swaggerURL := httpSwagger.InstanceName("tracking")
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
