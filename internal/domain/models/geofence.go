package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// LatLng is a bare coordinate pair, used for polygon vertices.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geofence is an owner-configured region. Circle fences carry center+radius,
// polygon fences carry at least three vertices.
type Geofence struct {
	ID       uuid.UUID           `json:"id"`
	FamilyID uuid.UUID           `json:"family_id"`
	Name     string              `json:"name"`
	Shape    types.GeofenceShape `json:"shape"`

	// Circle
	CenterLat    float64 `json:"center_lat,omitempty"`
	CenterLng    float64 `json:"center_lng,omitempty"`
	RadiusMeters float64 `json:"radius_meters,omitempty"`

	// Polygon
	Vertices []LatLng `json:"vertices,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// MembershipState is the last-known containment result for a (user, geofence)
// pair. It is the only state the transition engine needs to detect an edge.
type MembershipState struct {
	UserID     uuid.UUID `json:"user_id"`
	GeofenceID uuid.UUID `json:"geofence_id"`
	Inside     bool      `json:"inside"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// GeofenceEvent is one detected boundary crossing.
type GeofenceEvent struct {
	ID           uuid.UUID       `json:"id"`
	Type         types.EventType `json:"type"`
	FamilyID     uuid.UUID       `json:"family_id"`
	UserID       uuid.UUID       `json:"user_id"`
	GeofenceID   uuid.UUID       `json:"geofence_id"`
	GeofenceName string          `json:"geofence_name"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
