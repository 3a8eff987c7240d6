package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// RawLocation is a single GPS sample as delivered by a device, before
// classification and storage.
type RawLocation struct {
	UserID     uuid.UUID
	FamilyID   uuid.UUID
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Speed      *float64 // m/s, devices may omit
	Bearing    *float64 // degrees
	Altitude   *float64 // meters
	RecordedAt time.Time
	DeviceID   string
	Platform   types.Platform
	AppVersion string

	// EventID is the optional client-supplied idempotency key. A retrying
	// client reuses it so the history append can recognize the duplicate.
	EventID *uuid.UUID
}

// CurrentPosition is the mutable "where is this user now" row,
// one per user, overwritten on every accepted sample (last write wins).
type CurrentPosition struct {
	UserID      uuid.UUID         `json:"user_id"`
	FamilyID    uuid.UUID         `json:"family_id"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Accuracy    float64           `json:"accuracy"`
	Speed       *float64          `json:"speed,omitempty"`
	Bearing     *float64          `json:"bearing,omitempty"`
	Altitude    *float64          `json:"altitude,omitempty"`
	MotionState types.MotionState `json:"motion_state"`
	RecordedAt  time.Time         `json:"recorded_at"` // device clock
	UpdatedAt   time.Time         `json:"updated_at"`  // server clock
	DeviceID    string            `json:"device_id"`
	Platform    types.Platform    `json:"platform"`
	AppVersion  string            `json:"app_version"`
}

// LocationHistoryEntry is the append-only trail row. Immutable once written.
type LocationHistoryEntry struct {
	ID          uuid.UUID         `json:"id"`
	FamilyID    uuid.UUID         `json:"family_id"`
	UserID      uuid.UUID         `json:"user_id"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Accuracy    float64           `json:"accuracy"`
	Speed       *float64          `json:"speed,omitempty"`
	Bearing     *float64          `json:"bearing,omitempty"`
	Altitude    *float64          `json:"altitude,omitempty"`
	MotionState types.MotionState `json:"motion_state"`
	RecordedAt  time.Time         `json:"recorded_at"`
	CreatedAt   time.Time         `json:"created_at"`
	EventID     *uuid.UUID        `json:"event_id,omitempty"`
}

// MemberLocation is the read-path view of one family member, enriched with
// freshness flags derived from the member's tracking settings.
type MemberLocation struct {
	CurrentPosition

	IsStale   bool `json:"is_stale"`
	IsOffline bool `json:"is_offline"`
}

// RecordResult is what the ingestion pipeline reports back for one sample.
type RecordResult struct {
	MotionState    types.MotionState
	StoredHistory  bool
	HistoryID      uuid.UUID
	GeofenceEvents []GeofenceEvent
}
