// Package geofence detects boundary crossings. Membership per
// (user, geofence) is a two-state machine whose only transitions are the
// enter and exit edges; first contact initializes state silently.
package geofence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
)

const serviceName = "tracking-service"

type Engine struct {
	geofences  GeofenceRepo
	membership MembershipRepo
	events     EventRepo
	l          logger.Logger
}

func NewEngine(geofences GeofenceRepo, membership MembershipRepo, events EventRepo, l logger.Logger) *Engine {
	return &Engine{
		geofences:  geofences,
		membership: membership,
		events:     events,
		l:          l,
	}
}

// Process evaluates every active geofence of the family against the new
// coordinate and returns the detected crossings. A failure on one geofence
// is logged and skipped so the rest still get evaluated.
func (e *Engine) Process(ctx context.Context, familyID, userID uuid.UUID, lat, lng float64) ([]models.GeofenceEvent, error) {
	ctx = wrap.WithAction(ctx, types.ActionGeofenceProcess)

	fences, err := e.geofences.ListActiveByFamily(ctx, familyID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	var out []models.GeofenceEvent
	for _, g := range fences {
		ev, err := e.processOne(ctx, g, userID, lat, lng)
		if err != nil {
			e.l.Error(wrap.WithGeofenceID(ctx, g.ID.String()), "geofence evaluation failed", err)
			continue
		}
		if ev != nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (e *Engine) processOne(ctx context.Context, g models.Geofence, userID uuid.UUID, lat, lng float64) (*models.GeofenceEvent, error) {
	inside := Contains(g, lat, lng)

	state, err := e.membership.Get(ctx, userID, g.ID)
	if errors.Is(err, types.ErrNotFound) {
		// first observation, adopt current containment without an event
		if err := e.membership.Set(ctx, userID, g.ID, inside); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if state.Inside == inside {
		return nil, nil
	}

	evType := types.EventGeofenceExit
	if inside {
		evType = types.EventGeofenceEnter
	}

	ev := models.GeofenceEvent{
		ID:           uuid.New(),
		Type:         evType,
		FamilyID:     g.FamilyID,
		UserID:       userID,
		GeofenceID:   g.ID,
		GeofenceName: g.Name,
		OccurredAt:   time.Now().UTC(),
	}

	if err := e.events.Create(ctx, &ev); err != nil {
		return nil, err
	}
	if err := e.membership.Set(ctx, userID, g.ID, inside); err != nil {
		return nil, err
	}

	metrics.GeofenceEventsTotal.WithLabelValues(serviceName, evType.String()).Inc()
	e.l.Info(wrap.WithGeofenceID(ctx, g.ID.String()), "geofence crossing detected",
		"type", evType.String(),
		"geofence_name", g.Name,
	)

	return &ev, nil
}
