package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/config"
	"github.com/famhub/location-tracking-system/internal/adapter/http/server"
	familyws "github.com/famhub/location-tracking-system/internal/adapter/http/ws"
	repo "github.com/famhub/location-tracking-system/internal/adapter/postgres"
	"github.com/famhub/location-tracking-system/internal/adapter/rabbit"
	"github.com/famhub/location-tracking-system/internal/cache"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/service/alerts"
	"github.com/famhub/location-tracking-system/internal/service/geofence"
	"github.com/famhub/location-tracking-system/internal/service/settings"
	"github.com/famhub/location-tracking-system/internal/service/tracking"
	"github.com/famhub/location-tracking-system/pkg/logger"
	"github.com/famhub/location-tracking-system/pkg/postgres"
	rabbitmq "github.com/famhub/location-tracking-system/pkg/rabbit"
	"github.com/famhub/location-tracking-system/pkg/trm"
	ws "github.com/famhub/location-tracking-system/pkg/wsHub"
)

// App owns every long-lived component of the tracking service and tears
// them down in reverse order on shutdown.
type App struct {
	httpServer *server.API
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbitmq.RabbitMQ
	natsKV     *cache.NatsKV
	badger     *cache.BadgerStore
	hub        *ws.ConnectionHub

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	txManager := trm.New(postgresDB.Pool)

	positionRepo := repo.NewPositionRepo(postgresDB.Pool)
	historyRepo := repo.NewHistoryRepo(postgresDB.Pool)
	settingsRepo := repo.NewSettingsRepo(postgresDB.Pool)
	geofenceRepo := repo.NewGeofenceRepo(postgresDB.Pool)
	membershipRepo := repo.NewMembershipRepo(postgresDB.Pool)
	eventRepo := repo.NewEventRepo(postgresDB.Pool)
	alertRuleRepo := repo.NewAlertRuleRepo(postgresDB.Pool)
	cacheTableRepo := repo.NewCacheTableRepo(postgresDB.Pool)

	rabbitMQ, err := rabbitmq.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to setup rabbitmq", err)
		postgresDB.Pool.Close()
		return nil, err
	}

	app := &App{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		cfg:        cfg,
		log:        log,
	}

	// Cache tiers are optional at startup. A tier that cannot be opened is
	// skipped with a warning and the chain degrades to the next one.
	backends := make([]cache.Backend, 0, 3)

	natsKV, err := cache.NewNatsKV(cfg.Nats.URL, cfg.Nats.Bucket, cfg.Cache.TTL)
	if err != nil {
		log.Warn(ctx, "NATS cache tier unavailable", "error", err.Error())
	} else {
		app.natsKV = natsKV
		backends = append(backends, natsKV)
	}

	badgerStore, err := cache.NewBadgerStore(cfg.Badger.Dir)
	if err != nil {
		log.Warn(ctx, "badger cache tier unavailable", "error", err.Error())
	} else {
		app.badger = badgerStore
		backends = append(backends, badgerStore)
	}

	backends = append(backends, cache.NewPostgresTable(cacheTableRepo))

	source := func(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
		return positionRepo.Get(ctx, userID)
	}
	locationCache := cache.NewChain(backends, source, cfg.Cache.TTL, cfg.Cache.ReprobeInterval, log)

	settingsResolver := settings.NewResolver(settingsRepo, log)
	geofenceEngine := geofence.NewEngine(geofenceRepo, membershipRepo, eventRepo, log)
	alertsEngine := alerts.NewEngine(alertRuleRepo, rabbit.NewAlertProducer(rabbitMQ), log)

	app.hub = ws.NewConnHub(log)

	trackingService := tracking.NewService(
		positionRepo,
		historyRepo,
		locationCache,
		settingsResolver,
		geofenceEngine,
		alertsEngine,
		app.hub,
		txManager,
		log,
	)

	familyWs := familyws.NewFamilyWsHandler(app.hub, log)

	activeTier := func() string {
		return string(locationCache.ActiveTier())
	}

	httpServer, err := server.New(
		cfg,
		trackingService,
		settingsResolver,
		geofenceRepo,
		eventRepo,
		alertRuleRepo,
		familyWs,
		activeTier,
		log,
	)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		app.close(ctx)
		return nil, err
	}
	app.httpServer = httpServer

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "tracking service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "tracking service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
		}
	}

	if a.natsKV != nil {
		a.natsKV.Close()
	}

	if a.badger != nil {
		if err := a.badger.Close(); err != nil {
			a.log.Warn(ctx, "Failed to close badger store", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
