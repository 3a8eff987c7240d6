package geofence

import (
	"context"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
)

type GeofenceRepo interface {
	ListActiveByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Geofence, error)
}

type MembershipRepo interface {
	Get(ctx context.Context, userID, geofenceID uuid.UUID) (models.MembershipState, error)
	Set(ctx context.Context, userID, geofenceID uuid.UUID, inside bool) error
}

type EventRepo interface {
	Create(ctx context.Context, ev *models.GeofenceEvent) error
}
