package dto

import (
	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type CreateAlertRuleRequest struct {
	EventType  string   `json:"event_type"`
	GeofenceID string   `json:"geofence_id"`
	Targets    []string `json:"targets"`
}

func (r *CreateAlertRuleRequest) Validate(v *validator.Validator) {
	v.Check(r.EventType != "", "event_type", "must be provided")
	if r.EventType != "" {
		v.Check(validator.In(r.EventType, "geofence_enter", "geofence_exit"), "event_type", "must be one of geofence_enter or geofence_exit")
	}

	if r.GeofenceID != "" {
		_, err := uuid.Parse(r.GeofenceID)
		v.Check(err == nil, "geofence_id", "must be a valid UUID")
	}

	v.Check(len(r.Targets) > 0, "targets", "must contain at least one user")
	v.Check(len(r.Targets) <= 50, "targets", "must not contain more than 50 users")
	for _, t := range r.Targets {
		_, err := uuid.Parse(t)
		v.Check(err == nil, "targets", "must be valid UUIDs")
	}
}

func (r *CreateAlertRuleRequest) ToModel(familyID uuid.UUID) (*models.AlertRule, error) {
	rule := &models.AlertRule{
		FamilyID:  familyID,
		EventType: types.EventType(r.EventType),
		Active:    true,
	}

	if r.GeofenceID != "" {
		id, err := uuid.Parse(r.GeofenceID)
		if err != nil {
			return nil, err
		}
		rule.GeofenceID = &id
	}

	rule.Targets = make([]uuid.UUID, 0, len(r.Targets))
	for _, t := range r.Targets {
		id, err := uuid.Parse(t)
		if err != nil {
			return nil, err
		}
		rule.Targets = append(rule.Targets, id)
	}

	return rule, nil
}
