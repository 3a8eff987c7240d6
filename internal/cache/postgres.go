package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	repo "github.com/famhub/location-tracking-system/internal/adapter/postgres"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
)

// PostgresTable is the slowest cache tier: a dedicated table in the primary
// database. It only helps by keeping hot reads off the source table.
type PostgresTable struct {
	repo *repo.CacheTableRepo
}

func NewPostgresTable(r *repo.CacheTableRepo) *PostgresTable {
	return &PostgresTable{repo: r}
}

func (p *PostgresTable) Name() types.CacheTier { return types.TierPostgres }

func (p *PostgresTable) Get(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error) {
	return p.repo.Get(ctx, userID)
}

func (p *PostgresTable) Set(ctx context.Context, userID uuid.UUID, pos models.CurrentPosition, ttl time.Duration) error {
	return p.repo.Set(ctx, userID, pos, ttl)
}

func (p *PostgresTable) Delete(ctx context.Context, userID uuid.UUID) error {
	return p.repo.Delete(ctx, userID)
}

func (p *PostgresTable) Ping(ctx context.Context) error {
	return p.repo.Ping(ctx)
}
