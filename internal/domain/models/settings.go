package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingSettings holds per-user cadence and freshness thresholds.
// Created lazily with defaults on first resolve.
type TrackingSettings struct {
	UserID                 uuid.UUID `json:"user_id"`
	UpdateIntervalSeconds  int       `json:"update_interval_seconds"`
	IdleHeartbeatSeconds   int       `json:"idle_heartbeat_seconds"`
	OfflineThresholdSecond int       `json:"offline_threshold_seconds"`
	StaleThresholdSeconds  int       `json:"stale_threshold_seconds"`
	UpdatedAt              time.Time `json:"updated_at,omitzero"`
}

func (s TrackingSettings) UpdateInterval() time.Duration {
	return time.Duration(s.UpdateIntervalSeconds) * time.Second
}

func (s TrackingSettings) OfflineThreshold() time.Duration {
	return time.Duration(s.OfflineThresholdSecond) * time.Second
}

func (s TrackingSettings) StaleThreshold() time.Duration {
	return time.Duration(s.StaleThresholdSeconds) * time.Second
}
