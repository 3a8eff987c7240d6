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

type Settings struct {
	resolver SettingsService
	l        logger.Logger
}

type SettingsService interface {
	Resolve(ctx context.Context, userID uuid.UUID) models.TrackingSettings
	Update(ctx context.Context, s models.TrackingSettings) (models.TrackingSettings, error)
}

func NewSettings(resolver SettingsService, l logger.Logger) *Settings {
	return &Settings{
		resolver: resolver,
		l:        l,
	}
}

// Get godoc
// @Summary      Tracking settings
// @Description  Returns the effective tracking cadence for the authenticated user
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  dto.SettingsResponse
// @Security     BearerAuth
// @Router       /tracking/settings [get]
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_tracking_settings")
	user := models.UserFromContext(ctx)

	settings := h.resolver.Resolve(ctx, user.ID)

	response := envelope{"settings": dto.SettingsFromModel(settings)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Update godoc
// @Summary      Update tracking settings
// @Description  Stores new cadence settings; out-of-range fields revert to defaults
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateSettingsRequest true "New settings"
// @Success      200  {object}  dto.SettingsResponse
// @Failure      422  {object}  map[string]any
// @Security     BearerAuth
// @Router       /tracking/settings [put]
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_tracking_settings")
	user := models.UserFromContext(ctx)

	var req dto.UpdateSettingsRequest
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

	stored, err := h.resolver.Update(ctx, req.ToModel(user.ID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update tracking settings", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"settings": dto.SettingsFromModel(stored)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "tracking settings updated")
}
