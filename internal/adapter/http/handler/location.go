package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/adapter/http/handler/dto"
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type Location struct {
	service TrackingService
	l       logger.Logger
}

type TrackingService interface {
	Record(ctx context.Context, sample models.RawLocation) (models.RecordResult, error)
	FamilyLocations(ctx context.Context, familyID uuid.UUID) ([]models.MemberLocation, error)
	CurrentLocation(ctx context.Context, userID uuid.UUID) (models.CurrentPosition, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.LocationHistoryEntry, error)
}

func NewLocation(service TrackingService, l logger.Logger) *Location {
	return &Location{
		service: service,
		l:       l,
	}
}

// Ingest godoc
// @Summary      Ingest a location sample
// @Description  Accepts one raw location sample from the authenticated user's device
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        request body dto.IngestLocationRequest true "Location sample"
// @Success      200  {object}  map[string]any
// @Failure      422  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Security     BearerAuth
// @Router       /locations [post]
func (h *Location) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ingest_location")
	user := models.UserFromContext(ctx)

	var req dto.IngestLocationRequest
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

	result, err := h.service.Record(ctx, req.ToModel(user))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to record location sample", err)
		if errors.Is(err, types.ErrDatabase) {
			databaseErrorResponse(w)
			return
		}
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"accepted":        true,
		"motion_state":    result.MotionState,
		"stored_history":  result.StoredHistory,
		"history_id":      result.HistoryID,
		"geofence_events": eventList(result.GeofenceEvents),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// IngestBatch godoc
// @Summary      Ingest a batch of location samples
// @Description  Accepts buffered samples from the browser client, in arrival order
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        request body dto.IngestBatchRequest true "Buffered samples"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /locations/batch [post]
func (h *Location) IngestBatch(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ingest_location_batch")
	user := models.UserFromContext(ctx)

	var req dto.IngestBatchRequest
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

	// Samples are processed in order. The first storage failure aborts the
	// batch so the client can re-send the remainder without reordering.
	accepted := 0
	for i := range req.Samples {
		if _, err := h.service.Record(ctx, req.Samples[i].ToModel(user)); err != nil {
			h.l.Error(wrap.ErrorCtx(ctx, err), "batch aborted on failed sample", err, "accepted", accepted)
			if errors.Is(err, types.ErrDatabase) {
				databaseErrorResponse(w)
				return
			}
			errorResponse(w, GetCode(err), err.Error())
			return
		}
		accepted++
	}

	response := envelope{
		"accepted": true,
		"stored":   accepted,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// FamilyLocations godoc
// @Summary      Family member locations
// @Description  Returns the last known position of each family member with freshness flags
// @Tags         Locations
// @Produce      json
// @Param        family_id path string true "Family ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /families/{family_id}/locations [get]
func (h *Location) FamilyLocations(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "family_locations")
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

	members, err := h.service.FamilyLocations(ctx, familyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list family locations", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"family_id": familyID,
		"members":   members,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// CurrentLocation godoc
// @Summary      Current location of one member
// @Description  Returns the last known position of a single user, served through the cache chain
// @Tags         Locations
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /users/{user_id}/location [get]
func (h *Location) CurrentLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "current_location")
	user := models.UserFromContext(ctx)

	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid user uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid user uuid format")
		return
	}

	position, err := h.service.CurrentLocation(ctx, userID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read current location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if !canAccessFamily(user, position.FamilyID) {
		errorResponse(w, http.StatusForbidden, "forbidden: not a member of this family")
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"position": position}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// History godoc
// @Summary      Location history
// @Description  Returns recent history rows for the authenticated user, newest first
// @Tags         Locations
// @Produce      json
// @Param        limit query int false "Maximum rows (default 100)"
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /locations/history [get]
func (h *Location) History(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "location_history")
	user := models.UserFromContext(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := h.service.History(ctx, user.ID, limit)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read location history", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"user_id": user.ID,
		"entries": entries,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// eventList keeps geofence_events an empty array rather than null when no
// crossings were detected.
func eventList(events []models.GeofenceEvent) []models.GeofenceEvent {
	if events == nil {
		return []models.GeofenceEvent{}
	}
	return events
}

func canAccessFamily(user *models.User, familyID uuid.UUID) bool {
	if user == nil {
		return false
	}
	return user.FamilyID == familyID || user.Role == types.RoleAdmin
}
