package alerts

import (
	"context"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
)

type RuleRepo interface {
	ListActiveByFamily(ctx context.Context, familyID uuid.UUID) ([]models.AlertRule, error)
}

// Notifier is the notification sink. Delivery to devices happens outside
// this service.
type Notifier interface {
	Notify(ctx context.Context, alert models.AlertRecord, ev models.GeofenceEvent) error
}
