// Package tracking is the ingestion pipeline: classify a raw sample,
// persist it, refresh the cache and run the geofence/alert side effects.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
	"github.com/famhub/location-tracking-system/pkg/trm"
)

const serviceName = "tracking-service"

const defaultHistoryLimit = 100

type Service struct {
	positions PositionRepo
	history   HistoryRepo
	cache     Cache
	settings  SettingsResolver
	geofence  GeofenceEngine
	alerts    AlertsEngine
	hub       Broadcaster

	trm trm.TxManager
	l   logger.Logger
}

func NewService(
	positions PositionRepo,
	history HistoryRepo,
	cache Cache,
	settings SettingsResolver,
	geofence GeofenceEngine,
	alerts AlertsEngine,
	hub Broadcaster,
	trm trm.TxManager,
	l logger.Logger,
) *Service {
	return &Service{
		positions: positions,
		history:   history,
		cache:     cache,
		settings:  settings,
		geofence:  geofence,
		alerts:    alerts,
		hub:       hub,
		trm:       trm,
		l:         l,
	}
}

// roundCoord rounds to 7 decimal places, about 1cm of precision. More
// digits is GPS fiction and bloats the stored rows.
func roundCoord(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}

// Record runs one raw sample through the whole pipeline. Only a failure of
// the durable position write surfaces to the caller; history, cache,
// geofence and alert failures are absorbed and logged.
func (s *Service) Record(ctx context.Context, sample models.RawLocation) (models.RecordResult, error) {
	ctx = wrap.WithAction(ctx, types.ActionLocationRecord)

	sample.Latitude = roundCoord(sample.Latitude)
	sample.Longitude = roundCoord(sample.Longitude)
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}

	var prev *models.CurrentPosition
	if p, err := s.positions.Get(ctx, sample.UserID); err == nil {
		prev = &p
	} else if !errors.Is(err, types.ErrLocationNotFound) {
		// classifier degrades to reported speed, the write still proceeds
		s.l.Warn(ctx, "previous position read failed", "error", err.Error())
	}

	state := Classify(prev, sample)

	pos := models.CurrentPosition{
		UserID:      sample.UserID,
		FamilyID:    sample.FamilyID,
		Latitude:    sample.Latitude,
		Longitude:   sample.Longitude,
		Accuracy:    sample.Accuracy,
		Speed:       sample.Speed,
		Bearing:     sample.Bearing,
		Altitude:    sample.Altitude,
		MotionState: state,
		RecordedAt:  sample.RecordedAt,
		DeviceID:    sample.DeviceID,
		Platform:    sample.Platform,
		AppVersion:  sample.AppVersion,
	}

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		if err := s.positions.Upsert(ctx, &pos); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not upsert current position: %w", err))
		}
		return nil
	})
	if err != nil {
		s.l.Error(ctx, "durable location write failed", err)
		return models.RecordResult{}, wrap.Error(ctx, types.ErrDatabase)
	}

	result := models.RecordResult{MotionState: state}

	// The read path depends only on the current position, so a failed
	// history append leaves the write accepted.
	historyID, err := s.history.Append(ctx, &models.LocationHistoryEntry{
		FamilyID:    sample.FamilyID,
		UserID:      sample.UserID,
		Latitude:    sample.Latitude,
		Longitude:   sample.Longitude,
		Accuracy:    sample.Accuracy,
		Speed:       sample.Speed,
		Bearing:     sample.Bearing,
		Altitude:    sample.Altitude,
		MotionState: state,
		RecordedAt:  sample.RecordedAt,
		EventID:     sample.EventID,
	})
	switch {
	case err == nil:
		result.StoredHistory = true
		result.HistoryID = historyID
	case errors.Is(err, types.ErrDuplicateSample):
		metrics.HistoryDedupTotal.WithLabelValues(serviceName).Inc()
		s.l.Debug(ctx, "duplicate sample skipped", "event_id", eventIDString(sample.EventID))
	default:
		s.l.Error(ctx, "history append failed", err)
	}

	s.cache.SetCurrentLocation(ctx, sample.UserID, pos)

	result.GeofenceEvents = s.runSideEffects(ctx, pos)

	metrics.LocationSamplesTotal.WithLabelValues(serviceName, state.String()).Inc()
	return result, nil
}

// runSideEffects evaluates geofences, dispatches alerts and notifies live
// watchers. Nothing here may fail the already-accepted write, including a
// panic in the engines.
func (s *Service) runSideEffects(ctx context.Context, pos models.CurrentPosition) (events []models.GeofenceEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.l.Error(ctx, "side-effect processing panicked", fmt.Errorf("panic: %v", r))
			events = nil
		}
	}()

	events, err := s.geofence.Process(ctx, pos.FamilyID, pos.UserID, pos.Latitude, pos.Longitude)
	if err != nil {
		s.l.Error(ctx, "geofence processing failed", err)
		events = nil
	}

	if len(events) > 0 {
		if _, err := s.alerts.Dispatch(ctx, pos.FamilyID, events); err != nil {
			s.l.Error(ctx, "alert dispatch failed", err)
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(pos.FamilyID, models.FamilyLocationUpdate{
			Type:     "location_update",
			Position: pos,
			Events:   events,
		})
	}

	return events
}

// FamilyLocations returns every member's last known position annotated with
// freshness flags derived from that member's own thresholds.
func (s *Service) FamilyLocations(ctx context.Context, familyID uuid.UUID) ([]models.MemberLocation, error) {
	ctx = wrap.WithAction(ctx, types.ActionFamilyRead)

	positions, err := s.positions.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	now := time.Now().UTC()
	out := make([]models.MemberLocation, 0, len(positions))
	for _, p := range positions {
		cfg := s.settings.Resolve(ctx, p.UserID)
		age := now.Sub(p.UpdatedAt)

		out = append(out, models.MemberLocation{
			CurrentPosition: p,
			IsStale:         age > cfg.StaleThreshold(),
			IsOffline:       age > cfg.OfflineThreshold(),
		})
	}
	return out, nil
}

// CurrentLocation serves the hot single-user read through the cache chain.
func (s *Service) CurrentLocation(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	p, err := s.cache.GetCurrentLocation(ctx, userID)
	if err != nil {
		return models.CurrentPosition{}, wrap.Error(ctx, err)
	}
	return p, nil
}

// History returns the newest history rows for a user, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.LocationHistoryEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultHistoryLimit
	}

	entries, err := s.history.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return entries, nil
}

func eventIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
