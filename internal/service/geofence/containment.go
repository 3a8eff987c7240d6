package geofence

import (
	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/internal/domain/types"
	"github.com/famhub/location-tracking-system/internal/spatial"
)

// Contains reports whether a coordinate lies inside the geofence. An
// unrecognized shape contains nothing.
func Contains(g models.Geofence, lat, lng float64) bool {
	switch g.Shape {
	case types.ShapeCircle:
		return spatial.Distance(g.CenterLat, g.CenterLng, lat, lng) <= g.RadiusMeters
	case types.ShapePolygon:
		return spatial.PointInPolygon(lat, lng, g.Vertices)
	default:
		return false
	}
}
