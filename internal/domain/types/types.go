package types

// MotionState is the derived classification of a tracked user's activity.
type MotionState string

const (
	MotionMoving  MotionState = "moving"
	MotionIdle    MotionState = "idle"
	MotionUnknown MotionState = "unknown"
)

func (m MotionState) String() string {
	return string(m)
}

// EventType identifies a record in the write-once event ledger.
type EventType string

const (
	EventGeofenceEnter EventType = "geofence_enter"
	EventGeofenceExit  EventType = "geofence_exit"
)

func (e EventType) String() string {
	return string(e)
}

// GeofenceShape distinguishes circle and polygon fences.
type GeofenceShape string

const (
	ShapeCircle  GeofenceShape = "circle"
	ShapePolygon GeofenceShape = "polygon"
)

// Platform of the reporting device.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// Enum for user roles
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleMember UserRole = "MEMBER"
	RoleOwner  UserRole = "OWNER"
	RoleAdmin  UserRole = "ADMIN"
)

// TrackingMode reported by the native host bridge.
type TrackingMode string

const (
	TrackingEnabled      TrackingMode = "enabled"
	TrackingDisabled     TrackingMode = "disabled"
	TrackingNoPermission TrackingMode = "no_permission"
)

// CacheTier names one backend in the fallback chain for current-location reads.
type CacheTier string

const (
	TierNats     CacheTier = "nats_kv"
	TierBadger   CacheTier = "badger"
	TierPostgres CacheTier = "postgres"
	TierSource   CacheTier = "source"
	TierNone     CacheTier = "none"
)

func (t CacheTier) String() string {
	return string(t)
}
