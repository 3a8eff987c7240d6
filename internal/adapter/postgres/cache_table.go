package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// CacheTableRepo backs the relational cache tier: a small unlogged table
// holding the serialized current position with an expiry column. Slower
// than the KV tiers, but always available when the primary store is.
type CacheTableRepo struct {
	db *pgxpool.Pool
}

func NewCacheTableRepo(db *pgxpool.Pool) *CacheTableRepo {
	return &CacheTableRepo{
		db: db,
	}
}

func (r *CacheTableRepo) Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	const op = "CacheTableRepo.Get"
	query := `
		SELECT payload
		FROM location_cache
		WHERE user_id = $1 AND expires_at > now();`

	var payload []byte
	if err := r.db.QueryRow(ctx, query, userID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CurrentPosition{}, types.ErrCacheMiss
		}
		return models.CurrentPosition{}, fmt.Errorf("%s: %w", op, err)
	}

	var p models.CurrentPosition
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.CurrentPosition{}, fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	return p, nil
}

func (r *CacheTableRepo) Set(ctx context.Context, userID uuid.UUID, p models.CurrentPosition, ttl time.Duration) error {
	const op = "CacheTableRepo.Set"
	query := `
		INSERT INTO location_cache(user_id, payload, expires_at)
		VALUES($1, $2, now() + $3)
		ON CONFLICT (user_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at;`

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, userID, payload, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *CacheTableRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	const op = "CacheTableRepo.Delete"

	if _, err := r.db.Exec(ctx, `DELETE FROM location_cache WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *CacheTableRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
