package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/config"
	repo "github.com/famhub/location-tracking-system/internal/adapter/postgres"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/postgres"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

// Seeds a demo family into a development database: one circular geofence
// around "home", an enter alert for it and default tracking settings
// for two members.
func main() {
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	client, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Pool.Close()

	seedDemoFamily(ctx, client)
}

func seedDemoFamily(ctx context.Context, client *postgres.PostgreDB) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	familyID := uuid.MustParse("c1a2b9a4-93a4-4a54-8f4a-6f0edc430c9a")
	parentID := uuid.MustParse("7b06fa17-54d5-4a71-b1e3-96d72f4e2c41")
	childID := uuid.MustParse("4f9e42cf-8c3e-4ce2-a9e7-2f2ad38b5f10")

	geofences := repo.NewGeofenceRepo(client.Pool)
	rules := repo.NewAlertRuleRepo(client.Pool)
	settings := repo.NewSettingsRepo(client.Pool)

	home := models.Geofence{
		ID:           uuid.MustParse("2a8e9be6-6a39-4a9e-bb11-9cf2c53a35a5"),
		FamilyID:     familyID,
		Name:         "Home",
		Shape:        types.ShapeCircle,
		CenterLat:    -26.107500,
		CenterLng:    28.056700,
		RadiusMeters: 150,
		Active:       true,
	}
	if err := geofences.Create(ctx, &home); err != nil {
		log.Fatalf("seedDemoFamily: create geofence: %v", err)
	}

	rule := models.AlertRule{
		FamilyID:   familyID,
		EventType:  types.EventGeofenceEnter,
		GeofenceID: &home.ID,
		Targets:    []uuid.UUID{parentID},
		Active:     true,
	}
	if err := rules.Create(ctx, &rule); err != nil {
		log.Fatalf("seedDemoFamily: create alert rule: %v", err)
	}

	for _, userID := range []uuid.UUID{parentID, childID} {
		s := models.TrackingSettings{
			UserID:                 userID,
			UpdateIntervalSeconds:  30,
			IdleHeartbeatSeconds:   300,
			OfflineThresholdSecond: 660,
			StaleThresholdSeconds:  3600,
		}
		if err := settings.Upsert(ctx, &s); err != nil {
			log.Fatalf("seedDemoFamily: upsert settings for %s: %v", userID, err)
		}
	}

	log.Printf("seedDemoFamily: seeded family %s with geofence %q", familyID, home.Name)
}
