package types

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrFamilyNotFound   = errors.New("family not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoSettings       = errors.New("tracking settings not found")

	ErrGeofenceNotFound  = errors.New("geofence not found")
	ErrGeofenceForbidden = errors.New("geofence belongs to another family")
	ErrInvalidShape      = errors.New("invalid geofence shape")

	ErrAlertRuleNotFound = errors.New("alert rule not found")

	ErrDuplicateSample = errors.New("duplicate location sample")
	ErrDatabase        = errors.New("database_error")

	ErrCacheMiss       = errors.New("cache miss")
	ErrTierUnavailable = errors.New("cache tier unavailable")

	ErrNotFound = errors.New("requested item not found")
)
