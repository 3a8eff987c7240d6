package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
)

type PositionRepo interface {
	Upsert(ctx context.Context, p *models.CurrentPosition) error
	Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.CurrentPosition, error)
}

type HistoryRepo interface {
	Append(ctx context.Context, e *models.LocationHistoryEntry) (uuid.UUID, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LocationHistoryEntry, error)
}

// Cache is the layered current-location cache. Set never fails from the
// caller's perspective.
type Cache interface {
	GetCurrentLocation(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error)
	SetCurrentLocation(ctx context.Context, userID uuid.UUID, p models.CurrentPosition)
}

type SettingsResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) models.TrackingSettings
}

type GeofenceEngine interface {
	Process(ctx context.Context, familyID, userID uuid.UUID, lat, lng float64) ([]models.GeofenceEvent, error)
}

type AlertsEngine interface {
	Dispatch(ctx context.Context, familyID uuid.UUID, events []models.GeofenceEvent) ([]models.AlertRecord, error)
}

// Broadcaster pushes accepted updates to live-map watchers.
type Broadcaster interface {
	Broadcast(familyID uuid.UUID, msg any)
}
