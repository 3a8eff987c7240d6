// Package settings resolves per-user tracking cadence and freshness
// thresholds. It is the single authority both the ingestion pipeline and
// client pollers consult, so server and device never disagree on cadence.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

// Hard-coded defaults, returned whenever persisted settings are missing,
// unreadable or out of range.
const (
	DefaultUpdateIntervalSeconds  = 30
	DefaultIdleHeartbeatSeconds   = 300
	DefaultOfflineThresholdSecond = 660
	DefaultStaleThresholdSeconds  = 3600
)

// Accepted ranges, inclusive on both ends.
const (
	MinUpdateIntervalSeconds = 10
	MaxUpdateIntervalSeconds = 300

	MinIdleHeartbeatSeconds = 60
	MaxIdleHeartbeatSeconds = 1800

	MinOfflineThresholdSecond = 120
	MaxOfflineThresholdSecond = 3600

	MinStaleThresholdSeconds = 300
	MaxStaleThresholdSeconds = 86400
)

// Repo is the persistence the resolver reads and writes.
type Repo interface {
	Get(ctx context.Context, userID uuid.UUID) (models.TrackingSettings, error)
	Upsert(ctx context.Context, s *models.TrackingSettings) error
}

type Resolver struct {
	repo Repo
	l    logger.Logger
}

func NewResolver(repo Repo, l logger.Logger) *Resolver {
	return &Resolver{repo: repo, l: l}
}

// Defaults returns the known-good settings for a user.
func Defaults(userID uuid.UUID) models.TrackingSettings {
	return models.TrackingSettings{
		UserID:                 userID,
		UpdateIntervalSeconds:  DefaultUpdateIntervalSeconds,
		IdleHeartbeatSeconds:   DefaultIdleHeartbeatSeconds,
		OfflineThresholdSecond: DefaultOfflineThresholdSecond,
		StaleThresholdSeconds:  DefaultStaleThresholdSeconds,
	}
}

// Validate returns v when it lies inside [min,max], the default otherwise.
// Out-of-range values are replaced wholesale, never clamped to a bound: a
// nonsense value means the row cannot be trusted, so fail to known-good.
func Validate(v, min, max, def int) int {
	if v < min || v > max {
		return def
	}
	return v
}

func sanitize(s models.TrackingSettings) models.TrackingSettings {
	s.UpdateIntervalSeconds = Validate(s.UpdateIntervalSeconds,
		MinUpdateIntervalSeconds, MaxUpdateIntervalSeconds, DefaultUpdateIntervalSeconds)
	s.IdleHeartbeatSeconds = Validate(s.IdleHeartbeatSeconds,
		MinIdleHeartbeatSeconds, MaxIdleHeartbeatSeconds, DefaultIdleHeartbeatSeconds)
	s.OfflineThresholdSecond = Validate(s.OfflineThresholdSecond,
		MinOfflineThresholdSecond, MaxOfflineThresholdSecond, DefaultOfflineThresholdSecond)
	s.StaleThresholdSeconds = Validate(s.StaleThresholdSeconds,
		MinStaleThresholdSeconds, MaxStaleThresholdSeconds, DefaultStaleThresholdSeconds)
	return s
}

// Resolve loads the user's settings, substituting defaults for a missing
// row, a failed read, or any out-of-range field. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) models.TrackingSettings {
	ctx = wrap.WithAction(ctx, types.ActionSettingsResolve)

	s, err := r.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNoSettings) {
			r.l.Warn(ctx, "settings read failed, using defaults", "error", err.Error())
		}
		return Defaults(userID)
	}
	return sanitize(s)
}

// Update persists new settings for the user. Out-of-range fields are
// replaced by their defaults before the write, and the stored result is
// returned so the caller sees what actually took effect.
func (r *Resolver) Update(ctx context.Context, s models.TrackingSettings) (models.TrackingSettings, error) {
	const op = "Resolver.Update"
	ctx = wrap.WithAction(ctx, types.ActionSettingsUpdate)

	s = sanitize(s)
	if err := r.repo.Upsert(ctx, &s); err != nil {
		return models.TrackingSettings{}, wrap.Error(ctx, err)
	}

	r.l.Info(ctx, "tracking settings updated",
		"update_interval_seconds", s.UpdateIntervalSeconds,
		"idle_heartbeat_seconds", s.IdleHeartbeatSeconds,
	)
	return s, nil
}

// Cadences derives the effective client cadences from resolved settings.
// The poller uses these directly; native platforms receive them over the
// bridge.
func Cadences(s models.TrackingSettings) (active, idle time.Duration) {
	return s.UpdateInterval(), time.Duration(s.IdleHeartbeatSeconds) * time.Second
}
