package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type SettingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{
		db: db,
	}
}

// Get loads the persisted tracking settings row for a user.
func (r *SettingsRepo) Get(ctx context.Context, userID uuid.UUID) (models.TrackingSettings, error) {
	const op = "SettingsRepo.Get"
	query := `
		SELECT user_id, update_interval_seconds, idle_heartbeat_seconds,
		       offline_threshold_seconds, stale_threshold_seconds, updated_at
		FROM tracking_settings
		WHERE user_id = $1;`

	var s models.TrackingSettings
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.UpdateIntervalSeconds, &s.IdleHeartbeatSeconds,
		&s.OfflineThresholdSecond, &s.StaleThresholdSeconds, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TrackingSettings{}, types.ErrNoSettings
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return models.TrackingSettings{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return s, nil
}

// Upsert persists the settings row, creating it on first write.
func (r *SettingsRepo) Upsert(ctx context.Context, s *models.TrackingSettings) error {
	const op = "SettingsRepo.Upsert"
	query := `
		INSERT INTO tracking_settings(
			user_id, update_interval_seconds, idle_heartbeat_seconds,
			offline_threshold_seconds, stale_threshold_seconds, updated_at)
		VALUES($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			update_interval_seconds = EXCLUDED.update_interval_seconds,
			idle_heartbeat_seconds = EXCLUDED.idle_heartbeat_seconds,
			offline_threshold_seconds = EXCLUDED.offline_threshold_seconds,
			stale_threshold_seconds = EXCLUDED.stale_threshold_seconds,
			updated_at = now()
		RETURNING updated_at;`

	if err := TxorDB(ctx, r.db).QueryRow(ctx, query,
		s.UserID, s.UpdateIntervalSeconds, s.IdleHeartbeatSeconds,
		s.OfflineThresholdSecond, s.StaleThresholdSeconds,
	).Scan(&s.UpdatedAt); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}
