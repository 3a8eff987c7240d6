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

type PositionRepo struct {
	db *pgxpool.Pool
}

func NewPositionRepo(db *pgxpool.Pool) *PositionRepo {
	return &PositionRepo{
		db: db,
	}
}

// Upsert overwrites the user's current position row. Last write wins: there
// is no guard on recorded_at, two racing samples resolve on the store's
// row-level write ordering.
func (r *PositionRepo) Upsert(ctx context.Context, p *models.CurrentPosition) error {
	const op = "PositionRepo.Upsert"
	query := `
		INSERT INTO current_positions(
			user_id, family_id, latitude, longitude, accuracy,
			speed, bearing, altitude, motion_state, recorded_at,
			updated_at, device_id, platform, app_version)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			family_id = EXCLUDED.family_id,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			accuracy = EXCLUDED.accuracy,
			speed = EXCLUDED.speed,
			bearing = EXCLUDED.bearing,
			altitude = EXCLUDED.altitude,
			motion_state = EXCLUDED.motion_state,
			recorded_at = EXCLUDED.recorded_at,
			updated_at = now(),
			device_id = EXCLUDED.device_id,
			platform = EXCLUDED.platform,
			app_version = EXCLUDED.app_version
		RETURNING updated_at;`

	if err := TxorDB(ctx, r.db).QueryRow(ctx, query,
		p.UserID, p.FamilyID, p.Latitude, p.Longitude, p.Accuracy,
		p.Speed, p.Bearing, p.Altitude, p.MotionState, p.RecordedAt,
		p.DeviceID, p.Platform, p.AppVersion,
	).Scan(&p.UpdatedAt); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// Get returns the current position for one user.
func (r *PositionRepo) Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	const op = "PositionRepo.Get"
	query := `
		SELECT user_id, family_id, latitude, longitude, accuracy,
		       speed, bearing, altitude, motion_state, recorded_at,
		       updated_at, device_id, platform, app_version
		FROM current_positions
		WHERE user_id = $1;`

	var p models.CurrentPosition
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FamilyID, &p.Latitude, &p.Longitude, &p.Accuracy,
		&p.Speed, &p.Bearing, &p.Altitude, &p.MotionState, &p.RecordedAt,
		&p.UpdatedAt, &p.DeviceID, &p.Platform, &p.AppVersion,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CurrentPosition{}, types.ErrLocationNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return models.CurrentPosition{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return p, nil
}

// ListByFamily returns the current position of every member of the family.
func (r *PositionRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.CurrentPosition, error) {
	const op = "PositionRepo.ListByFamily"
	query := `
		SELECT user_id, family_id, latitude, longitude, accuracy,
		       speed, bearing, altitude, motion_state, recorded_at,
		       updated_at, device_id, platform, app_version
		FROM current_positions
		WHERE family_id = $1
		ORDER BY updated_at DESC;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, familyID)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var positions []models.CurrentPosition
	for rows.Next() {
		var p models.CurrentPosition
		if err := rows.Scan(
			&p.UserID, &p.FamilyID, &p.Latitude, &p.Longitude, &p.Accuracy,
			&p.Speed, &p.Bearing, &p.Altitude, &p.MotionState, &p.RecordedAt,
			&p.UpdatedAt, &p.DeviceID, &p.Platform, &p.AppVersion,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return positions, nil
}
