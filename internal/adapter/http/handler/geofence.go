package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/adapter/http/handler/dto"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type Geofence struct {
	geofences GeofenceRepo
	events    EventReader
	l         logger.Logger
}

type GeofenceRepo interface {
	Create(ctx context.Context, g *models.Geofence) error
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]models.Geofence, error)
	Delete(ctx context.Context, familyID, id uuid.UUID) error
}

type EventReader interface {
	ListRecentByFamily(ctx context.Context, familyID uuid.UUID, limit int) ([]models.GeofenceEvent, error)
}

func NewGeofence(geofences GeofenceRepo, events EventReader, l logger.Logger) *Geofence {
	return &Geofence{
		geofences: geofences,
		events:    events,
		l:         l,
	}
}

// Create godoc
// @Summary      Create geofence
// @Description  Creates a circle or polygon fence for the family
// @Tags         Geofences
// @Accept       json
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Param        request body dto.CreateGeofenceRequest true "Geofence definition"
// @Success      201  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/geofences [post]
func (h *Geofence) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_geofence")
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

	var req dto.CreateGeofenceRequest
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

	geofence := req.ToModel(familyID)
	if err := h.geofences.Create(ctx, geofence); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create geofence", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"geofence": geofence}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithGeofenceID(ctx, geofence.ID.String()), "geofence created", "name", geofence.Name)
}

// List godoc
// @Summary      List geofences
// @Tags         Geofences
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/geofences [get]
func (h *Geofence) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_geofences")
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

	geofences, err := h.geofences.ListByFamily(ctx, familyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list geofences", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"family_id": familyID,
		"geofences": geofences,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Delete godoc
// @Summary      Delete geofence
// @Tags         Geofences
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Param        geofence_id path string true "Geofence ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/geofences/{geofence_id} [delete]
func (h *Geofence) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "delete_geofence")
	user := models.UserFromContext(ctx)

	familyID, err := uuid.Parse(r.PathValue("family_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid family uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid family uuid format")
		return
	}
	geofenceID, err := uuid.Parse(r.PathValue("geofence_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid geofence uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid geofence uuid format")
		return
	}

	if !canAccessFamily(user, familyID) {
		errorResponse(w, http.StatusForbidden, "forbidden: not a member of this family")
		return
	}

	if err := h.geofences.Delete(ctx, familyID, geofenceID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to delete geofence", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"deleted": geofenceID}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithGeofenceID(ctx, geofenceID.String()), "geofence deleted")
}

// Events godoc
// @Summary      Recent geofence events
// @Tags         Geofences
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Param        limit query int false "Maximum rows (default 50)"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/geofence-events [get]
func (h *Geofence) Events(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_geofence_events")
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

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			errorResponse(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.events.ListRecentByFamily(ctx, familyID, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list geofence events", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"family_id": familyID,
		"events":    events,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
