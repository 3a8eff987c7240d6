// Package alerts maps geofence events onto the family's alert rules. The
// engine is a pure event-to-alert mapping: no deduplication window, rule
// authors own rule hygiene.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/metrics"
)

const serviceName = "tracking-service"

type Engine struct {
	rules    RuleRepo
	notifier Notifier
	l        logger.Logger
}

func NewEngine(rules RuleRepo, notifier Notifier, l logger.Logger) *Engine {
	return &Engine{rules: rules, notifier: notifier, l: l}
}

// Dispatch derives alert records from the events and hands each to the
// notification sink. A sink failure on one alert is logged and does not
// stop the rest.
func (e *Engine) Dispatch(ctx context.Context, familyID uuid.UUID, events []models.GeofenceEvent) ([]models.AlertRecord, error) {
	ctx = wrap.WithAction(ctx, types.ActionAlertDispatch)

	if len(events) == 0 {
		return nil, nil
	}

	rules, err := e.rules.ListActiveByFamily(ctx, familyID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	var out []models.AlertRecord
	for _, ev := range events {
		for _, rule := range rules {
			if !rule.Matches(ev) {
				continue
			}
			for _, target := range rule.Targets {
				alert := buildRecord(rule, ev, target)
				if err := e.notifier.Notify(ctx, alert, ev); err != nil {
					metrics.AlertsDispatchedTotal.WithLabelValues(serviceName, "failed").Inc()
					e.l.Error(ctx, "alert notification failed", err,
						"rule_id", rule.ID.String(),
						"target_id", target.String(),
					)
					continue
				}
				metrics.AlertsDispatchedTotal.WithLabelValues(serviceName, "sent").Inc()
				out = append(out, alert)
			}
		}
	}
	return out, nil
}

func buildRecord(rule models.AlertRule, ev models.GeofenceEvent, target uuid.UUID) models.AlertRecord {
	verb := "left"
	if ev.Type == types.EventGeofenceEnter {
		verb = "arrived at"
	}

	return models.AlertRecord{
		ID:         uuid.New(),
		RuleID:     rule.ID,
		EventID:    ev.ID,
		EventType:  ev.Type,
		FamilyID:   ev.FamilyID,
		SubjectID:  ev.UserID,
		TargetID:   target,
		GeofenceID: ev.GeofenceID,
		Message:    fmt.Sprintf("Family member %s %s", verb, ev.GeofenceName),
		CreatedAt:  time.Now().UTC(),
	}
}
