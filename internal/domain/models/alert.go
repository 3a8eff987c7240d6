package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// AlertRule maps an event type (optionally narrowed to one geofence) to the
// family members who should be notified.
type AlertRule struct {
	ID         uuid.UUID       `json:"id"`
	FamilyID   uuid.UUID       `json:"family_id"`
	EventType  types.EventType `json:"event_type"`
	GeofenceID *uuid.UUID      `json:"geofence_id,omitempty"` // nil matches any geofence
	Targets    []uuid.UUID     `json:"targets"`               // user ids to notify
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at,omitzero"`
}

// Matches reports whether the rule applies to the given event.
func (r AlertRule) Matches(ev GeofenceEvent) bool {
	if !r.Active || r.EventType != ev.Type {
		return false
	}
	if r.GeofenceID != nil && *r.GeofenceID != ev.GeofenceID {
		return false
	}
	return true
}

// AlertRecord is one derived notification, handed to the notification sink.
type AlertRecord struct {
	ID         uuid.UUID       `json:"id"`
	RuleID     uuid.UUID       `json:"rule_id"`
	EventID    uuid.UUID       `json:"event_id"`
	EventType  types.EventType `json:"event_type"`
	FamilyID   uuid.UUID       `json:"family_id"`
	SubjectID  uuid.UUID       `json:"subject_id"` // the user who crossed the boundary
	TargetID   uuid.UUID       `json:"target_id"`  // the user being notified
	GeofenceID uuid.UUID       `json:"geofence_id"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"created_at"`
}
