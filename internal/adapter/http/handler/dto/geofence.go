package dto

import (
	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/pkg/validator"
)

type VertexDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreateGeofenceRequest struct {
	Name  string `json:"name"`
	Shape string `json:"shape"`

	CenterLat    *float64 `json:"center_lat"`
	CenterLng    *float64 `json:"center_lng"`
	RadiusMeters *float64 `json:"radius_meters"`

	Vertices []VertexDTO `json:"vertices"`
}

func (r *CreateGeofenceRequest) Validate(v *validator.Validator) {
	v.Check(r.Name != "", "name", "must be provided")
	v.Check(len(r.Name) <= 100, "name", "must not be more than 100 characters long")

	v.Check(r.Shape != "", "shape", "must be provided")
	if r.Shape != "" {
		v.Check(validator.In(r.Shape, "circle", "polygon"), "shape", "must be one of circle or polygon")
	}

	switch r.Shape {
	case "circle":
		v.Check(r.CenterLat != nil, "center_lat", "must be provided for circle fences")
		if r.CenterLat != nil {
			v.Check(*r.CenterLat >= -90 && *r.CenterLat <= 90, "center_lat", "must be between -90 and 90")
		}
		v.Check(r.CenterLng != nil, "center_lng", "must be provided for circle fences")
		if r.CenterLng != nil {
			v.Check(*r.CenterLng >= -180 && *r.CenterLng <= 180, "center_lng", "must be between -180 and 180")
		}
		v.Check(r.RadiusMeters != nil, "radius_meters", "must be provided for circle fences")
		if r.RadiusMeters != nil {
			v.Check(*r.RadiusMeters > 0, "radius_meters", "must be greater than zero")
			v.Check(*r.RadiusMeters <= 100_000, "radius_meters", "must not be more than 100km")
		}
	case "polygon":
		v.Check(len(r.Vertices) >= 3, "vertices", "must contain at least 3 vertices")
		v.Check(len(r.Vertices) <= 100, "vertices", "must not contain more than 100 vertices")
		for _, vert := range r.Vertices {
			v.Check(vert.Latitude >= -90 && vert.Latitude <= 90, "vertices", "latitudes must be between -90 and 90")
			v.Check(vert.Longitude >= -180 && vert.Longitude <= 180, "vertices", "longitudes must be between -180 and 180")
		}
	}
}

func (r *CreateGeofenceRequest) ToModel(familyID uuid.UUID) *models.Geofence {
	g := &models.Geofence{
		FamilyID: familyID,
		Name:     r.Name,
		Shape:    types.GeofenceShape(r.Shape),
		Active:   true,
	}

	switch g.Shape {
	case types.ShapeCircle:
		g.CenterLat = *r.CenterLat
		g.CenterLng = *r.CenterLng
		g.RadiusMeters = *r.RadiusMeters
	case types.ShapePolygon:
		g.Vertices = make([]models.LatLng, 0, len(r.Vertices))
		for _, vert := range r.Vertices {
			g.Vertices = append(g.Vertices, models.LatLng{Latitude: vert.Latitude, Longitude: vert.Longitude})
		}
	}

	return g
}
