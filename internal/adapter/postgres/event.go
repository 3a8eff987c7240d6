package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type EventRepo struct {
	db *pgxpool.Pool
}

func NewEventRepo(db *pgxpool.Pool) *EventRepo {
	return &EventRepo{
		db: db,
	}
}

// Create appends one row to the write-once event ledger.
func (r *EventRepo) Create(ctx context.Context, ev *models.GeofenceEvent) error {
	const op = "EventRepo.Create"
	query := `
		INSERT INTO events(id, type, family_id, user_id, geofence_id, occurred_at)
		VALUES($1, $2, $3, $4, $5, $6);`

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		ev.ID, ev.Type, ev.FamilyID, ev.UserID, ev.GeofenceID, ev.OccurredAt,
	); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// ListRecentByFamily returns the newest ledger rows for a family.
func (r *EventRepo) ListRecentByFamily(ctx context.Context, familyID uuid.UUID, limit int) ([]models.GeofenceEvent, error) {
	const op = "EventRepo.ListRecentByFamily"
	query := `
		SELECT e.id, e.type, e.family_id, e.user_id, e.geofence_id, g.name, e.occurred_at
		FROM events e
		JOIN geofences g ON g.id = e.geofence_id
		WHERE e.family_id = $1
		ORDER BY e.occurred_at DESC
		LIMIT $2;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, familyID, limit)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var events []models.GeofenceEvent
	for rows.Next() {
		var ev models.GeofenceEvent
		if err := rows.Scan(
			&ev.ID, &ev.Type, &ev.FamilyID, &ev.UserID, &ev.GeofenceID,
			&ev.GeofenceName, &ev.OccurredAt,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return events, nil
}
