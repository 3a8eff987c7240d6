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

type HistoryRepo struct {
	db *pgxpool.Pool
}

func NewHistoryRepo(db *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{
		db: db,
	}
}

// Append writes one immutable history row. When the entry carries a
// client-supplied event id and that id was already stored for the user,
// the insert is skipped and ErrDuplicateSample is returned so the caller
// can report the retry as deduplicated.
func (r *HistoryRepo) Append(ctx context.Context, e *models.LocationHistoryEntry) (uuid.UUID, error) {
	const op = "HistoryRepo.Append"
	query := `
		INSERT INTO location_history(
			id, family_id, user_id, latitude, longitude, accuracy,
			speed, bearing, altitude, motion_state, recorded_at, event_id)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, event_id) WHERE event_id IS NOT NULL DO NOTHING
		RETURNING id;`

	id := uuid.New()
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query,
		id, e.FamilyID, e.UserID, e.Latitude, e.Longitude, e.Accuracy,
		e.Speed, e.Bearing, e.Altitude, e.MotionState, e.RecordedAt, e.EventID,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// conflict on the idempotency key, row already exists
			return uuid.Nil, types.ErrDuplicateSample
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return uuid.Nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	e.ID = id
	return id, nil
}

// ListRecent returns the newest history rows for a user, newest first.
func (r *HistoryRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LocationHistoryEntry, error) {
	const op = "HistoryRepo.ListRecent"
	query := `
		SELECT id, family_id, user_id, latitude, longitude, accuracy,
		       speed, bearing, altitude, motion_state, recorded_at, created_at, event_id
		FROM location_history
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, userID, limit)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var entries []models.LocationHistoryEntry
	for rows.Next() {
		var e models.LocationHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.FamilyID, &e.UserID, &e.Latitude, &e.Longitude, &e.Accuracy,
			&e.Speed, &e.Bearing, &e.Altitude, &e.MotionState, &e.RecordedAt, &e.CreatedAt, &e.EventID,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return entries, nil
}
