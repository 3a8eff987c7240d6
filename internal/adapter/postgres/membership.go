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

type MembershipRepo struct {
	db *pgxpool.Pool
}

func NewMembershipRepo(db *pgxpool.Pool) *MembershipRepo {
	return &MembershipRepo{
		db: db,
	}
}

// Get returns the stored containment state for a (user, geofence) pair.
// types.ErrNotFound means the pair has never been evaluated.
func (r *MembershipRepo) Get(ctx context.Context, userID, geofenceID uuid.UUID) (models.MembershipState, error) {
	const op = "MembershipRepo.Get"
	query := `
		SELECT user_id, geofence_id, inside, updated_at
		FROM geofence_membership
		WHERE user_id = $1 AND geofence_id = $2;`

	var m models.MembershipState
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, userID, geofenceID).Scan(
		&m.UserID, &m.GeofenceID, &m.Inside, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MembershipState{}, types.ErrNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return models.MembershipState{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return m, nil
}

// Set stores the containment state, flipping it on a detected edge or
// initializing it on first evaluation.
func (r *MembershipRepo) Set(ctx context.Context, userID, geofenceID uuid.UUID, inside bool) error {
	const op = "MembershipRepo.Set"
	query := `
		INSERT INTO geofence_membership(user_id, geofence_id, inside, updated_at)
		VALUES($1, $2, $3, now())
		ON CONFLICT (user_id, geofence_id) DO UPDATE SET
			inside = EXCLUDED.inside,
			updated_at = now();`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, userID, geofenceID, inside); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}
