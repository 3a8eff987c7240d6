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

type AlertRuleRepo struct {
	db *pgxpool.Pool
}

func NewAlertRuleRepo(db *pgxpool.Pool) *AlertRuleRepo {
	return &AlertRuleRepo{
		db: db,
	}
}

func (r *AlertRuleRepo) Create(ctx context.Context, rule *models.AlertRule) error {
	const op = "AlertRuleRepo.Create"
	query := `
		INSERT INTO alert_rules(id, family_id, event_type, geofence_id, targets, active)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING created_at;`

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	if err := TxorDB(ctx, r.db).QueryRow(ctx, query,
		rule.ID, rule.FamilyID, rule.EventType, rule.GeofenceID, rule.Targets, rule.Active,
	).Scan(&rule.CreatedAt); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// ListActiveByFamily returns every active rule for the family.
func (r *AlertRuleRepo) ListActiveByFamily(ctx context.Context, familyID uuid.UUID) ([]models.AlertRule, error) {
	const op = "AlertRuleRepo.ListActiveByFamily"
	query := `
		SELECT id, family_id, event_type, geofence_id, targets, active, created_at
		FROM alert_rules
		WHERE family_id = $1 AND active
		ORDER BY created_at;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, familyID)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var rules []models.AlertRule
	for rows.Next() {
		var rule models.AlertRule
		if err := rows.Scan(
			&rule.ID, &rule.FamilyID, &rule.EventType, &rule.GeofenceID,
			&rule.Targets, &rule.Active, &rule.CreatedAt,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return rules, nil
}

func (r *AlertRuleRepo) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	const op = "AlertRuleRepo.Delete"
	query := `DELETE FROM alert_rules WHERE id = $1 AND family_id = $2;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id, familyID)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAlertRuleNotFound
	}

	return nil
}
