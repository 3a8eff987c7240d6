package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type GeofenceRepo struct {
	db *pgxpool.Pool
}

func NewGeofenceRepo(db *pgxpool.Pool) *GeofenceRepo {
	return &GeofenceRepo{
		db: db,
	}
}

func (r *GeofenceRepo) Create(ctx context.Context, g *models.Geofence) error {
	const op = "GeofenceRepo.Create"
	query := `
		INSERT INTO geofences(
			id, family_id, name, shape, center_lat, center_lng,
			radius_meters, vertices, active)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at;`

	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}

	vertices, err := json.Marshal(g.Vertices)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: marshal vertices: %w", op, err))
	}

	if err := TxorDB(ctx, r.db).QueryRow(ctx, query,
		g.ID, g.FamilyID, g.Name, g.Shape, g.CenterLat, g.CenterLng,
		g.RadiusMeters, vertices, g.Active,
	).Scan(&g.CreatedAt); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

func (r *GeofenceRepo) Get(ctx context.Context, id uuid.UUID) (models.Geofence, error) {
	const op = "GeofenceRepo.Get"
	query := `
		SELECT id, family_id, name, shape, center_lat, center_lng,
		       radius_meters, vertices, active, created_at
		FROM geofences
		WHERE id = $1;`

	g, err := scanGeofence(TxorDB(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Geofence{}, types.ErrGeofenceNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return models.Geofence{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return g, nil
}

// ListActiveByFamily returns every active geofence configured for a family.
func (r *GeofenceRepo) ListActiveByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Geofence, error) {
	const op = "GeofenceRepo.ListActiveByFamily"
	query := `
		SELECT id, family_id, name, shape, center_lat, center_lng,
		       radius_meters, vertices, active, created_at
		FROM geofences
		WHERE family_id = $1 AND active
		ORDER BY created_at;`

	return r.list(ctx, op, query, familyID)
}

// ListByFamily returns every geofence of a family, active or not.
func (r *GeofenceRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Geofence, error) {
	const op = "GeofenceRepo.ListByFamily"
	query := `
		SELECT id, family_id, name, shape, center_lat, center_lng,
		       radius_meters, vertices, active, created_at
		FROM geofences
		WHERE family_id = $1
		ORDER BY created_at;`

	return r.list(ctx, op, query, familyID)
}

func (r *GeofenceRepo) list(ctx context.Context, op, query string, familyID uuid.UUID) ([]models.Geofence, error) {
	rows, err := TxorDB(ctx, r.db).Query(ctx, query, familyID)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var fences []models.Geofence
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		fences = append(fences, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return fences, nil
}

func (r *GeofenceRepo) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	const op = "GeofenceRepo.Delete"
	query := `DELETE FROM geofences WHERE id = $1 AND family_id = $2;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id, familyID)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrGeofenceNotFound
	}

	return nil
}

func scanGeofence(row pgx.Row) (models.Geofence, error) {
	var (
		g        models.Geofence
		vertices []byte
	)
	if err := row.Scan(
		&g.ID, &g.FamilyID, &g.Name, &g.Shape, &g.CenterLat, &g.CenterLng,
		&g.RadiusMeters, &vertices, &g.Active, &g.CreatedAt,
	); err != nil {
		return models.Geofence{}, err
	}

	if len(vertices) > 0 {
		if err := json.Unmarshal(vertices, &g.Vertices); err != nil {
			return models.Geofence{}, fmt.Errorf("unmarshal vertices: %w", err)
		}
	}

	return g, nil
}
