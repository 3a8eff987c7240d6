package dto

import (
	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type UpdateSettingsRequest struct {
	UpdateIntervalSeconds  *int `json:"update_interval_seconds"`
	IdleHeartbeatSeconds   *int `json:"idle_heartbeat_seconds"`
	OfflineThresholdSecond *int `json:"offline_threshold_seconds"`
	StaleThresholdSeconds  *int `json:"stale_threshold_seconds"`
}

// Validate only checks presence. Range enforcement lives in the resolver,
// which replaces out-of-range values with defaults instead of rejecting.
func (r *UpdateSettingsRequest) Validate(v *validator.Validator) {
	v.Check(r.UpdateIntervalSeconds != nil, "update_interval_seconds", "must be provided")
	v.Check(r.IdleHeartbeatSeconds != nil, "idle_heartbeat_seconds", "must be provided")
	v.Check(r.OfflineThresholdSecond != nil, "offline_threshold_seconds", "must be provided")
	v.Check(r.StaleThresholdSeconds != nil, "stale_threshold_seconds", "must be provided")
}

func (r *UpdateSettingsRequest) ToModel(userID uuid.UUID) models.TrackingSettings {
	return models.TrackingSettings{
		UserID:                 userID,
		UpdateIntervalSeconds:  *r.UpdateIntervalSeconds,
		IdleHeartbeatSeconds:   *r.IdleHeartbeatSeconds,
		OfflineThresholdSecond: *r.OfflineThresholdSecond,
		StaleThresholdSeconds:  *r.StaleThresholdSeconds,
	}
}

type SettingsResponse struct {
	UpdateIntervalSeconds  int `json:"update_interval_seconds"`
	IdleHeartbeatSeconds   int `json:"idle_heartbeat_seconds"`
	OfflineThresholdSecond int `json:"offline_threshold_seconds"`
	StaleThresholdSeconds  int `json:"stale_threshold_seconds"`
}

func SettingsFromModel(s models.TrackingSettings) SettingsResponse {
	return SettingsResponse{
		UpdateIntervalSeconds:  s.UpdateIntervalSeconds,
		IdleHeartbeatSeconds:   s.IdleHeartbeatSeconds,
		OfflineThresholdSecond: s.OfflineThresholdSecond,
		StaleThresholdSeconds:  s.StaleThresholdSeconds,
	}
}
