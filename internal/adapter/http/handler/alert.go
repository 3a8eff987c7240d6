package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/adapter/http/handler/dto"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type Alert struct {
	rules AlertRuleRepo
	l     logger.Logger
}

type AlertRuleRepo interface {
	Create(ctx context.Context, rule *models.AlertRule) error
	ListActiveByFamily(ctx context.Context, familyID uuid.UUID) ([]models.AlertRule, error)
	Delete(ctx context.Context, familyID, id uuid.UUID) error
}

func NewAlert(rules AlertRuleRepo, l logger.Logger) *Alert {
	return &Alert{
		rules: rules,
		l:     l,
	}
}

// Create godoc
// @Summary      Create alert rule
// @Description  Subscribes family members to geofence enter/exit notifications
// @Tags         Alerts
// @Accept       json
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Param        request body dto.CreateAlertRuleRequest true "Alert rule"
// @Success      201  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/alert-rules [post]
func (h *Alert) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_alert_rule")
	user := models.UserFromContext(ctx)

	familyID, err := uuid.Parse(r.PathValue("family_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid family uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid family uuid format")
		return
	}

	if !canAccessFamily(user, familyID) {
		errorResponse(w, http.StatusForbidden, "forbidden: not a member of this family")
		return
	}

	var req dto.CreateAlertRuleRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	rule, err := req.ToModel(familyID)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.rules.Create(ctx, rule); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create alert rule", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"alert_rule": rule}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "alert rule created", "rule_id", rule.ID, "event_type", rule.EventType)
}

// List godoc
// @Summary      List alert rules
// @Tags         Alerts
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/alert-rules [get]
func (h *Alert) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_alert_rules")
	user := models.UserFromContext(ctx)

	familyID, err := uuid.Parse(r.PathValue("family_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid family uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid family uuid format")
		return
	}

	if !canAccessFamily(user, familyID) {
		errorResponse(w, http.StatusForbidden, "forbidden: not a member of this family")
		return
	}

	rules, err := h.rules.ListActiveByFamily(ctx, familyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list alert rules", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"family_id":   familyID,
		"alert_rules": rules,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Delete godoc
// @Summary      Delete alert rule
// @Tags         Alerts
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Param        rule_id path string true "Alert rule ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/alert-rules/{rule_id} [delete]
func (h *Alert) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "delete_alert_rule")
	user := models.UserFromContext(ctx)

	familyID, err := uuid.Parse(r.PathValue("family_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid family uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid family uuid format")
		return
	}
	ruleID, err := uuid.Parse(r.PathValue("rule_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid rule uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid rule uuid format")
		return
	}

	if !canAccessFamily(user, familyID) {
		errorResponse(w, http.StatusForbidden, "forbidden: not a member of this family")
		return
	}

	if err := h.rules.Delete(ctx, familyID, ruleID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to delete alert rule", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"deleted": ruleID}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
