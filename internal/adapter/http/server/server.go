package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/famhub/location-tracking-system/config"
	"github.com/famhub/location-tracking-system/internal/adapter/http/handler"
	"github.com/famhub/location-tracking-system/internal/adapter/http/middleware"
	familyws "github.com/famhub/location-tracking-system/internal/adapter/http/ws"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

const serviceName = "tracking-service"

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	location *handler.Location
	settings *handler.Settings
	geofence *handler.Geofence
	alert    *handler.Alert
	health   *handler.Health
	familyWs *familyws.FamilyWsHandler
}

func New(
	cfg config.Config,
	trackingService handler.TrackingService,
	settingsService handler.SettingsService,
	geofences handler.GeofenceRepo,
	geofenceEvents handler.EventReader,
	alertRules handler.AlertRuleRepo,
	familyWs *familyws.FamilyWsHandler,
	activeTier func() string,
	log logger.Logger,
) (*API, error) {
	if trackingService == nil {
		return nil, errors.New("tracking service is required")
	}

	routes := &handlers{
		location: handler.NewLocation(trackingService, log),
		settings: handler.NewSettings(settingsService, log),
		geofence: handler.NewGeofence(geofences, geofenceEvents, log),
		alert:    handler.NewAlert(alertRules, log),
		health:   handler.NewHealth(serviceName, activeTier, log),
		familyWs: familyWs,
	}

	tokens := middleware.NewTokenParser(cfg.Auth.JWTSecret)
	mid := middleware.NewMiddleware(tokens, log)

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      mid,
		addr:   fmt.Sprintf(serverIPAddress, cfg.HTTP.Host, cfg.HTTP.Port),
		cfg:    cfg,
		log:    log,
	}

	setupRoutes(api.mux, api.routes, api.m)

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(serviceName)(a.m.Logging(a.m.Auth(a.mux)))))
}
