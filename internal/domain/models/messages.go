package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// AlertMessage is the payload published to the notification exchange for
// each dispatched alert. Delivery itself happens outside this service.
type AlertMessage struct {
	AlertID      uuid.UUID       `json:"alert_id"`
	EventType    types.EventType `json:"event_type"`
	FamilyID     uuid.UUID       `json:"family_id"`
	SubjectID    uuid.UUID       `json:"subject_id"`
	TargetID     uuid.UUID       `json:"target_id"`
	GeofenceID   uuid.UUID       `json:"geofence_id"`
	GeofenceName string          `json:"geofence_name,omitempty"`
	Message      string          `json:"message"`
	Timestamp    time.Time       `json:"timestamp"`
}

// FamilyLocationUpdate is the WebSocket message pushed to live-map watchers
// whenever a member's position is accepted.
type FamilyLocationUpdate struct {
	Type     string          `json:"type"`
	Position CurrentPosition `json:"position"`
	Events   []GeofenceEvent `json:"events,omitempty"`
}
