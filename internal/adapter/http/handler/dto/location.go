package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type IngestLocationRequest struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Accuracy   float64  `json:"accuracy"`
	Speed      *float64 `json:"speed"`
	Bearing    *float64 `json:"bearing"`
	Altitude   *float64 `json:"altitude"`
	RecordedAt string   `json:"recorded_at"`
	DeviceID   string   `json:"device_id"`
	Platform   string   `json:"platform"`
	AppVersion string   `json:"app_version"`
	EventID    string   `json:"event_id"`
}

func (r *IngestLocationRequest) Validate(v *validator.Validator) {
	v.Check(r.Latitude != nil, "latitude", "must be provided")
	if r.Latitude != nil {
		v.Check(*r.Latitude >= -90 && *r.Latitude <= 90, "latitude", "must be between -90 and 90")
	}

	v.Check(r.Longitude != nil, "longitude", "must be provided")
	if r.Longitude != nil {
		v.Check(*r.Longitude >= -180 && *r.Longitude <= 180, "longitude", "must be between -180 and 180")
	}

	v.Check(r.Accuracy >= 0, "accuracy", "must not be negative")
	if r.Speed != nil {
		v.Check(*r.Speed >= 0, "speed", "must not be negative")
	}
	if r.Bearing != nil {
		v.Check(*r.Bearing >= 0 && *r.Bearing < 360, "bearing", "must be between 0 and 360")
	}

	if r.RecordedAt != "" {
		_, err := time.Parse(time.RFC3339, r.RecordedAt)
		v.Check(err == nil, "recorded_at", "must be a valid RFC3339 timestamp")
	}

	v.Check(r.DeviceID != "", "device_id", "must be provided")
	v.Check(len(r.DeviceID) <= 255, "device_id", "must not be more than 255 characters long")

	v.Check(r.Platform != "", "platform", "must be provided")
	if r.Platform != "" {
		v.Check(validator.In(r.Platform, "android", "ios", "web"), "platform", "must be one of android, ios, or web")
	}

	if r.EventID != "" {
		_, err := uuid.Parse(r.EventID)
		v.Check(err == nil, "event_id", "must be a valid UUID")
	}
}

func (r *IngestLocationRequest) ToModel(user *models.User) models.RawLocation {
	sample := models.RawLocation{
		UserID:     user.ID,
		FamilyID:   user.FamilyID,
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
		Accuracy:   r.Accuracy,
		Speed:      r.Speed,
		Bearing:    r.Bearing,
		Altitude:   r.Altitude,
		DeviceID:   r.DeviceID,
		Platform:   types.Platform(r.Platform),
		AppVersion: r.AppVersion,
	}

	if r.RecordedAt != "" {
		if ts, err := time.Parse(time.RFC3339, r.RecordedAt); err == nil {
			sample.RecordedAt = ts.UTC()
		}
	}
	if r.EventID != "" {
		if id, err := uuid.Parse(r.EventID); err == nil {
			sample.EventID = &id
		}
	}

	return sample
}

// IngestBatchRequest is what the browser client's watch-and-batch uploader
// sends on each flush. Samples are in arrival order.
type IngestBatchRequest struct {
	Samples []IngestLocationRequest `json:"samples"`
}

func (r *IngestBatchRequest) Validate(v *validator.Validator) {
	v.Check(len(r.Samples) > 0, "samples", "must contain at least one sample")
	v.Check(len(r.Samples) <= 100, "samples", "must not contain more than 100 samples")

	for _, s := range r.Samples {
		s.Validate(v)
		if !v.Valid() {
			return
		}
	}
}
